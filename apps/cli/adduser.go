package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/rollbook/core/user"
	"github.com/trezcool/rollbook/core/workflow"
)

func (cli *commandLine) newAddUserCmd() *cobra.Command {
	var uname, role, name, email string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create an account; the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" || role == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := readPassword(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter password:")
			if err != nil {
				return err
			}
			return cli.addUser(cmd, user.NewUser{
				Username: uname,
				Role:     user.Role(role),
				Password: pwd,
				Name:     name,
				Email:    email,
			})
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "username of the new account")
	cmd.Flags().StringVarP(&role, "role", "r", "", "student, instructor or admin")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address, a welcome message is sent to it")
	return cmd
}

func (cli *commandLine) addUser(cmd *cobra.Command, nu user.NewUser) error {
	svc, err := cli.service(cmd.Context())
	if err != nil {
		return err
	}
	usr, err := svc.CreateAccount(cmd.Context(), workflow.System, nu)
	if err != nil {
		return err
	}
	if usr.StudentID != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s, %s)\n", usr.Username, usr.Role, usr.StudentID)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", usr.Username, usr.Role)
	}
	return nil
}
