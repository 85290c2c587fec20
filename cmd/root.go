package cmd

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/config"
	"github.com/jsphweid/fingerbot/constants"
	"github.com/spf13/cobra"
)

var log = logging.Logger("fingerbot")

var (
	configPath string
	logLevel   string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fingerbot",
	Short: "Plays received scores on a motor-driven instrument",
	Long: `fingerbot receives MIDI and MusicXML files over BLE, stores them, and
plays them back by driving one motor per note.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
			cfg.LogLevel = logLevel
		}
		if err := logging.SetLogLevel("*", cfg.LogLevel); err != nil {
			return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", constants.GetConfigPath(), "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
