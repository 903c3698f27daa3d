package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/westmarch-io/westmarch/internal/api"
	"github.com/westmarch-io/westmarch/internal/common"
	"github.com/westmarch-io/westmarch/internal/config"
	"github.com/westmarch-io/westmarch/internal/sessions"
	"github.com/westmarch-io/westmarch/internal/storage"
	"github.com/westmarch-io/westmarch/internal/token"
)

// Composed once per invocation in preRunClientConfigE.
var (
	cfg            *config.Config
	sessionManager *sessions.Manager
	apiClient      *api.Client
	closeStorage   func() error
)

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunClientConfigE(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	apiURL, err := cmd.Flags().GetString("api-url")
	if err == nil && len(apiURL) > 0 {
		if err := cfg.SetAPIBaseURL(apiURL); err != nil {
			return fmt.Errorf("failed to set api url: %w", err)
		}
	}

	backend, err := cmd.Flags().GetString("storage")
	if err == nil && len(backend) > 0 {
		cfg.Storage.Backend = backend
	}

	store, cleanup, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		// The session still works for this run, it just is not kept.
		logrus.WithError(err).WithFields(logrus.Fields{
			"backend": cfg.StorageOptions().Backend,
		}).Warnln("Session storage unavailable, falling back to memory")
		store, cleanup = storage.NewMemory(), nil
	}
	closeStorage = cleanup

	sessionManager = sessions.NewManager(store, token.NewJWTDecoder())

	nav := newNavigator(cmd.OutOrStdout())
	sessionManager.Subscribe(nav.Handle)

	sessionManager.Init(baseContext(cmd))

	apiClient = api.NewClient(
		cfg.GetAPIBaseURL(),
		sessionManager,
		api.WithTimeout(cfg.GetTimeout()),
	)

	logrus.WithFields(logrus.Fields{
		"api":     cfg.GetAPIBaseURL(),
		"storage": cfg.StorageOptions().Backend,
		"state":   sessionManager.State().String(),
	}).Debugln("Client ready")

	return nil
}

func postRunClientE(_ *cobra.Command, _ []string) error {
	if closeStorage == nil {
		return nil
	}
	err := closeStorage()
	closeStorage = nil
	if err != nil {
		logrus.WithError(err).Warnln("Failed to close session storage")
	}
	return nil
}

func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// commandContext returns the command context, cancelled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, func()) {
	return common.WithInterrupt(baseContext(cmd))
}

var rootCmd = &cobra.Command{
	Use:   "westmarch",
	Short: "West March campaign client",
	Long: `westmarch is a command line client for the West March campaign API.

It keeps you logged in between runs and lets you browse your characters and,
for staff, the class catalogue.

Configuration is read from ./config.yaml, ./config/config.yaml or
~/.config/westmarch/config.yaml, a .env file and WESTMARCH_* variables.`,
	SilenceUsage:       true,
	PersistentPreRunE:  preRunClientConfigE,
	PersistentPostRunE: postRunClientE,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.config/westmarch/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "Override the API URL (e.g., http://localhost:8000)")
	rootCmd.PersistentFlags().String("storage", "", "Session storage backend: file, bolt, redis or memory")
}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}

// Execute runs the root command. Storage is released even when the
// command fails, since cobra skips post-run hooks on error.
func Execute() error {
	defer postRunClientE(nil, nil)
	return rootCmd.Execute()
}
