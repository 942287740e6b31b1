package main

import (
	"fmt"
	"os"

	"github.com/meowdada/doclocker/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "doclocker",
	Short: "Wallet authenticated document locker backed by IPFS pinning",
	Long: `doclocker uploads documents and their NFT metadata to an IPFS pinning
service and keeps a local index of everything pinned.

Configuration is read from the file given by --config and from
DOCLOCKER_* environment variables. The pinning token is also read from
WEB3_STORAGE_API_KEY.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: finalizeApp,
}

// Execute runs the root command and exits non zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(usersCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := newLogger(c.Log)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func finalizeApp(cmd *cobra.Command, args []string) error {
	if logger != nil {
		_ = logger.Sync()
	}
	return nil
}

func newLogger(c config.Log) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
