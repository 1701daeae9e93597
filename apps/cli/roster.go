package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/rollbook/core/roster"
	"github.com/trezcool/rollbook/storage/csvfile"
)

func (cli *commandLine) newRosterCmd() *cobra.Command {
	var path string
	openRoster := func(cmd *cobra.Command) (*roster.Roster, error) {
		if path == "" {
			path = cli.conf.RosterPath
		}
		r, err := roster.New(csvfile.New(path, cli.logger), cli.logger)
		if err != nil {
			return nil, err
		}
		if err := r.Load(cmd.Context()); err != nil {
			return nil, err
		}
		return r, nil
	}

	rosterCmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the student records table (CSV)",
	}
	rosterCmd.PersistentFlags().StringVar(&path, "file", "", "CSV file, overrides roster.path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the records by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), r.List())
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find records by id, name or class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), r.Search(args[0]))
		},
	}

	var nr roster.NewRecord
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			rec, err := r.Add(cmd.Context(), nr)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", rec.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&nr.ID, "id", "", "record id")
	addCmd.Flags().StringVar(&nr.Name, "name", "", "student name")
	addCmd.Flags().StringVar(&nr.DOB, "dob", "", "date of birth, YYYY-MM-DD")
	addCmd.Flags().StringVar(&nr.Class, "class", "", "class")
	addCmd.Flags().StringVar(&nr.GPA, "gpa", "", "GPA, written with two decimals")

	var ur roster.UpdateRecord
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a record; omitted fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			rec, err := r.Update(cmd.Context(), args[0], ur)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", rec.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&ur.Name, "name", "", "student name")
	updateCmd.Flags().StringVar(&ur.DOB, "dob", "", "date of birth, YYYY-MM-DD")
	updateCmd.Flags().StringVar(&ur.Class, "class", "", "class")
	updateCmd.Flags().StringVar(&ur.GPA, "gpa", "", "GPA, written with two decimals")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			if err := r.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge the records of another CSV file, overwriting records with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			recs, err := csvfile.New(args[0], cli.logger).Load(cmd.Context())
			if err != nil {
				return err
			}
			merged, skipped, err := r.Merge(cmd.Context(), recs)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d records, skipped %d\n", merged, skipped)
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the records to another CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRoster(cmd)
			if err != nil {
				return err
			}
			recs := r.List()
			if err := csvfile.New(args[0], cli.logger).Save(cmd.Context(), recs); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d records\n", len(recs))
			return nil
		},
	}

	rosterCmd.AddCommand(listCmd, searchCmd, addCmd, updateCmd, deleteCmd, importCmd, exportCmd)
	return rosterCmd
}

func printRecords(out io.Writer, recs []roster.Record) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDOB\tCLASS\tGPA")
	for _, rec := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.Name, rec.DOB, rec.Class, rec.GPAString())
	}
	return w.Flush()
}
