package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"makazi/jobs"
	"makazi/models"

	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if migrate {
				if err := models.AutoMigrate(app.DB); err != nil {
					return err
				}
				app.Logger.Info("Schema migrated")
			}

			if err := jobs.InitCronJobs(app.Cron, app.Tours, cfg.ReminderSchedule, app.Logger); err != nil {
				return err
			}
			defer app.Cron.Stop()

			server := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           app.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("Server starting on port %s...", cfg.Port)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.Logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			app.Logger.Info("Server gracefully stopped")
			return nil
		},
	}
	cmd.Flags().Bool("migrate", true, "Run schema migration before serving")
	cmd.Flags().String("port", "", "Override PORT")
	return cmd
}
