package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/studytime/app"
	"github.com/kilianp07/studytime/config"
	"github.com/kilianp07/studytime/infra/logger"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:               "studytime",
	Short:             "Study-duration suggestion service",
	PersistentPreRunE: loadEnv,
	RunE:              run,
	SilenceUsage:      true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction API (default)",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment at startup")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadEnv populates the process environment from the dotenv file once, before
// any command reads configuration.
func loadEnv(cmd *cobra.Command, args []string) error {
	keys, err := config.LoadDotEnv(envFile)
	if err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	if len(keys) > 0 {
		logger.New("main").Debugf("loaded %d variable(s) from %s", len(keys), envFile)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
