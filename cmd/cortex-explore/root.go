package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nova-bci/cortex-go/config"
	"github.com/nova-bci/cortex-go/logger"
	"github.com/nova-bci/cortex-go/resilient"
)

var rootCmd = &cobra.Command{
	Use:   "cortex-explore",
	Short: "Explore a Cortex v2 service from the terminal",
	Long: `cortex-explore drives a resilient.ResilientClient: list connected
headsets, watch a live stream, or start and stop a recording, without
writing Go.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("verbose") {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger.SetVerbose(verbose)
		}
		return connectClient(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if activeClient == nil {
			return nil
		}
		return activeClient.Disconnect()
	},
}

// activeClient is the single ResilientClient shared by every subcommand's
// RunE. cobra runs PersistentPreRunE/RunE/PersistentPostRunE for one
// invocation of one process, so a package-level handle is as far as its
// lifetime needs to reach.
var activeClient *resilient.ResilientClient

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a cortex.toml config file (default: discovered)")
	rootCmd.PersistentFlags().String("endpoint", "", "Cortex WebSocket endpoint (wss://...)")
	rootCmd.PersistentFlags().String("client-id", "", "Cortex client id")
	rootCmd.PersistentFlags().String("client-secret", "", "Cortex client secret")
	rootCmd.PersistentFlags().Bool("insecure", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout (default: library default)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client-id"))
	_ = viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client-secret"))
	_ = viper.BindPFlag("insecure_skip_verify", rootCmd.PersistentFlags().Lookup("insecure"))
}

// loadConfig resolves a config.Config from, in priority order: an explicit
// --config file, discovery (cwd then the OS user config dir), and finally
// the library defaults, with any bound flag overriding whatever it found.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	explicit, _ := cmd.Flags().GetString("config")
	switch {
	case explicit != "":
		loaded, err := config.Load(explicit)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	default:
		if discovered, found, err := config.Discover(); err != nil {
			return config.Config{}, err
		} else if found {
			cfg = discovered
		}
	}

	if v := viper.GetString("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v := viper.GetString("client_id"); v != "" {
		cfg.ClientID = v
	}
	if v := viper.GetString("client_secret"); v != "" {
		cfg.ClientSecret = v
	}
	if viper.IsSet("insecure_skip_verify") {
		cfg.InsecureSkipVerify = viper.GetBool("insecure_skip_verify")
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.RequestTimeout = timeout
	}

	return cfg, nil
}

// connectClient builds the resilient client used by every subcommand.
func connectClient(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rc, err := resilient.Connect(ctx, cfg.ToResilientConfig())
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Endpoint, err)
	}
	activeClient = rc
	return nil
}
