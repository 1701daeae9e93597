package cli

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/rollbook/core/workflow"
)

func (cli *commandLine) newResetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password; the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := readPassword(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter password:")
			if err != nil {
				return err
			}
			if pwd == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.resetPassword(cmd, uname, pwd)
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "the user's username")
	return cmd
}

func (cli *commandLine) resetPassword(cmd *cobra.Command, uname, pwd string) error {
	svc, err := cli.service(cmd.Context())
	if err != nil {
		return err
	}
	return svc.ResetPassword(cmd.Context(), workflow.System, uname, pwd)
}
