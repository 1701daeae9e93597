package cli

import (
	"github.com/spf13/cobra"
	"github.com/trezcool/goose"

	"github.com/trezcool/rollbook/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS]",
		Short: "Run a goose command (up, down, status, ..) against the postgres database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(args)
		},
	}
}

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], db.DB, appfs.FS, "migrations", arguments...)
}
