package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mlpipe/config"
	"mlpipe/core/repository"
	"mlpipe/providers/aws"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "mlpipe",
	Short:         "Train, deploy, probe and clean up SageMaker models.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg != nil {
			return nil
		}
		c, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Logger.Level = logLevel
		}
		config.InitLogger(c.Logger)
		cfg = c
		return nil
	},
}

// Execute runs the command tree. ctx is cancelled on SIGINT/SIGTERM by the caller.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

func newPlatform(ctx context.Context) (*aws.Client, error) {
	client, err := aws.NewClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS client: %w", err)
	}
	return client, nil
}

// openHistory opens the run history, degrading to a no-op store when the database is unreachable
func openHistory() (repository.EventStore, func() error) {
	store, closeFn, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Warn("Run history unavailable, continuing without it")
		return repository.NopStore{}, func() error { return nil }
	}
	return store, closeFn
}

// requireSourceDir fails fast when the container code directory is missing; the
// containers cannot find their entry point without it.
func requireSourceDir(dir string) error {
	if dir == "" {
		return errors.New("--source-dir is required: the container needs the entry point script")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("source dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source dir %s is not a directory", dir)
	}
	return nil
}
