package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gamewrap/internal/config"
	"gamewrap/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "gamewrap",
		Short: "gamewrap - launch games with focus-aware supervision",
		Long: `gamewrap launches a game and supervises it: it finds the game window
with multi-criteria queries, tracks whether it holds input focus, and runs
side-effect hooks (pausing helper tools, playtime logging, notifications)
as focus changes and when the game exits.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(viper.GetString("log_level"), viper.GetBool("pretty"))
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gamewrap/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", true, "human-readable console logging")
	rootCmd.PersistentFlags().String("settings-dir", config.DefaultSettingsDir(), "per-game settings directory")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty"))
	viper.BindPFlag("settings_dir", rootCmd.PersistentFlags().Lookup("settings-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.config/gamewrap")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("GAMEWRAP")
	viper.AutomaticEnv()

	// a missing config file is fine; flags and defaults apply
	_ = viper.ReadInConfig()
}

// ExitError carries a distinct process exit code for scripts.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	return e.Msg
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
