package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// searched for config.yaml on linux, after the working directory
	defCfgPath = "/etc/dose-stream/"
	// DOSE_TRANSCODING_DIR overrides transcoding.dir
	envPrefix = "DOSE"
)

var rootCmd = &cobra.Command{
	Use:     "dose-stream",
	Short:   "Dose streaming server CLI.",
	Long:    `Dose adaptive streaming server: direct play and on-demand HLS transcoding.`,
	Version: "1.0.0",
}

// onConfigLoad callbacks run after startup and after every config file change.
var onConfigLoad []func()

type Config interface {
	Init(cmd *cobra.Command) error
	Set()
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	var cfgFile string
	var logs logConfig

	cobra.OnInitialize(func() {
		// variables already present in the environment win over .env
		envErr := godotenv.Load()

		if err := loadConfiguration(cfgFile); err != nil {
			panic(err)
		}

		logs.Set()
		initLogging(logs)

		if envErr != nil && !os.IsNotExist(envErr) {
			log.Warn().Err(envErr).Msg("unable to load .env file")
		}

		if file := viper.ConfigFileUsed(); file != "" {
			viper.OnConfigChange(func(e fsnotify.Event) {
				log.Info().Str("config", e.Name).Str("op", e.Op.String()).Msg("config file changed")
				runConfigLoad()
			})
			viper.WatchConfig()

			log.Info().Str("config", file).Msg("preflight complete with config file")
		} else {
			log.Warn().Msg("preflight complete without config file")
		}

		runConfigLoad()
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml, searched in ./ and "+defCfgPath+" when empty")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	_ = logs.Init(rootCmd)
}

func runConfigLoad() {
	for _, load := range onConfigLoad {
		load()
	}
}

// loadConfiguration reads the config file and enables DOSE_ prefixed env
// overrides. A missing file is only an error when it was given explicitly.
func loadConfiguration(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		if runtime.GOOS == "linux" {
			viper.AddConfigPath(defCfgPath)
		}
	}

	// transcoding.ffmpeg-binary is read from DOSE_TRANSCODING_FFMPEG_BINARY
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		return fmt.Errorf("unable to read config file %s: %w", cfgFile, err)
	}

	return nil
}
