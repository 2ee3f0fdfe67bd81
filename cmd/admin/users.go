package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/db"
)

const passwordEnv = "YATUBE_ADMIN_PASSWORD"

func init() {
	RootCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringP("password", "p", "", "password for the new user (default $"+passwordEnv+")")
}

var createUserCmd = &cobra.Command{
	Use:   "create-user <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  createUser,
}

func createUser(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv(passwordEnv)
	}

	accounts := auth.NewAccountService(db.NewRepository(database.DB))
	user, err := accounts.Register(cmd.Context(), args[0], password, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}
