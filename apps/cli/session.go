package cli

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/rollbook/apps/shell"
	"github.com/trezcool/rollbook/core/records"
)

// consoleQuieter is implemented by loggers that can keep info entries off the terminal.
type consoleQuieter interface {
	QuietConsole() (restore func())
}

func (cli *commandLine) runSession(cmd *cobra.Command) error {
	ctx := cmd.Context()
	svc, err := cli.service(ctx)
	if err != nil {
		cli.logger.Error("opening records", err)
		return err
	}

	if q, ok := cli.logger.(consoleQuieter); ok {
		defer q.QuietConsole()()
	}

	in := cmd.InOrStdin()
	sh := shell.New(svc, cli.logger, in, cmd.OutOrStdout())
	if fd, ok := terminalFd(in); ok {
		sh.WithTerminal(fd)
	}
	if err := sh.Run(ctx); err != nil {
		if records.IsPersist(err) {
			cli.logger.Error("saving records", err)
		}
		return err
	}
	return nil
}
