// Command campusctl drives grading and admissions chores against a campus API
// deployment or its database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/logging"
	"github.com/noah-isme/campus-go-api/pkg/client"
)

type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	baseURL  string
	token    string
	logLevel string
}

func (a *app) client() *client.Client {
	return client.New(a.baseURL, client.WithToken(a.token), client.WithLogger(a.logger))
}

func newRootCommand(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "campusctl",
		Short:         "Campus administration command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{
				Level:   a.logLevel,
				Format:  "console",
				File:    cfg.LogFile,
				Service: "campusctl",
				Output:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.baseURL, "api-url", cfg.APIBaseURL, "campus API base URL")
	root.PersistentFlags().StringVar(&a.token, "token", cfg.APIToken, "bearer token for the API")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newGradesCommand(a), newAdmissionsCommand(a), newStudentsCommand(a))
	return root
}

func main() {
	boot := zerolog.New(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(cfg).ExecuteContext(ctx); err != nil {
		boot.Error().Err(err).Msg("campusctl failed")
		stop()
		os.Exit(1)
	}
}
