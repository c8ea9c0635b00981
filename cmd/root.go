package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rail44/roster/internal/config"
	"github.com/rail44/roster/internal/gateway"
	"github.com/rail44/roster/internal/log"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Terminal client for a REST users service",
	Long: `Roster fetches user records from a REST users service, shows them in a
grouped-header table and sends create, update and delete requests.

By default it talks to the public mock at https://jsonplaceholder.typicode.com.
Run "roster mock" to serve a local in-memory copy instead.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is roster.toml found from the working directory upward)")
	rootCmd.PersistentFlags().String("endpoint", "", "base URL of the users service")
	rootCmd.PersistentFlags().String("resource", "", "collection path segment (default \"users\")")
	rootCmd.PersistentFlags().String("log-level", "", "log level: error, warn, info, debug")

	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("resource", rootCmd.PersistentFlags().Lookup("resource"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	viper.SetEnvPrefix("roster")
	viper.AutomaticEnv()
}

// loadConfig reads roster.toml and applies flag and ROSTER_* overrides
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v := viper.GetString("resource"); v != "" {
		cfg.Resource = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := setupLogging(cfg); err != nil {
		return nil, err
	}
	if path := cfg.Path(); path != "" {
		log.Debug("using config file", slog.String("path", path))
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	logLevel := cfg.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	return log.SetLevel(level)
}

func newClient(cfg *config.Config, opts ...gateway.Option) (*gateway.Client, error) {
	opts = append([]gateway.Option{gateway.WithResource(cfg.Resource)}, opts...)
	return gateway.New(cfg.Endpoint, opts...)
}

// fatal logs err the way every command reports failures and exits
func fatal(msg string, err error) {
	log.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
