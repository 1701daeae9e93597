package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/rollbook/core/workflow"
)

func (cli *commandLine) newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(cmd.Context())
			if err != nil {
				return err
			}
			lines, err := svc.ListUsers(cmd.Context(), workflow.System)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "USERNAME\tROLE\tNAME\tSTUDENT ID")
			for _, l := range lines {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Username, l.Role, l.Name, l.StudentID)
			}
			return w.Flush()
		},
	}
}
