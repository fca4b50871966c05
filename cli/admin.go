package cli

import (
	"context"
	"fmt"

	"makazi/jobs"
	"makazi/services"

	"github.com/spf13/cobra"
)

// CreateAdminCmd seeds an admin; admins cannot sign up through the API.
func CreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			db, err := openDB(cfg, log)
			if err != nil {
				return err
			}

			auth := services.NewAuthService(services.AuthServiceOptions{DB: db, Logger: log})
			user, err := auth.CreateAdmin(cmd.Context(), name, username, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %s (id %d).\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "Administrator", "Display name")
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("email", "", "Email")
	cmd.Flags().String("password", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// RemindCmd sends today's tour reminders once, outside the scheduler.
func RemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for tours scheduled today",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := Build(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			jobs.RunTourReminders(cmd.Context(), app.Tours, app.Logger)
			return nil
		},
	}
}
