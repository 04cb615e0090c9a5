package cmd

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logConfig struct {
	Level   string
	Console bool
	// JSON writes machine readable lines to stderr instead of the console format
	JSON bool

	// rotated by lumberjack, and on SIGHUP
	File       string
	MaxAge     int
	MaxSize    int
	MaxBackups int
}

func (logConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("log.level", "info", "log level: trace, debug, info, warn or error")
	if err := viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log.level")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("log.console", true, "log to stderr")
	if err := viper.BindPFlag("log.console", cmd.PersistentFlags().Lookup("log.console")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("log.json", false, "log to stderr as JSON, for log collectors")
	if err := viper.BindPFlag("log.json", cmd.PersistentFlags().Lookup("log.json")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("log.file", "", "also log to this file, encoder stderr included")
	if err := viper.BindPFlag("log.file", cmd.PersistentFlags().Lookup("log.file")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("log.maxage", 0, "days to keep rotated log files, 0 keeps them all")
	if err := viper.BindPFlag("log.maxage", cmd.PersistentFlags().Lookup("log.maxage")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("log.maxsize", 100, "size in MB at which the log file is rotated")
	if err := viper.BindPFlag("log.maxsize", cmd.PersistentFlags().Lookup("log.maxsize")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("log.maxbackups", 0, "rotated log files to keep, 0 keeps them all")
	if err := viper.BindPFlag("log.maxbackups", cmd.PersistentFlags().Lookup("log.maxbackups")); err != nil {
		return err
	}

	return nil
}

func (c *logConfig) Set() {
	c.Level = viper.GetString("log.level")
	c.Console = viper.GetBool("log.console")
	c.JSON = viper.GetBool("log.json")
	c.File = viper.GetString("log.file")
	c.MaxAge = viper.GetInt("log.maxage")
	c.MaxSize = viper.GetInt("log.maxsize")
	c.MaxBackups = viper.GetInt("log.maxbackups")
}

// level falls back to info for an empty or unknown level.
func (c logConfig) level() (zerolog.Level, bool) {
	if c.Level == "" {
		return zerolog.InfoLevel, true
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return level, true
}

func (c logConfig) writers() []io.Writer {
	var writers []io.Writer

	switch {
	case c.JSON:
		writers = append(writers, os.Stderr)
	case c.Console:
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if c.File != "" {
		file := &lumberjack.Logger{
			Filename:   c.File,
			MaxAge:     c.MaxAge,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
		}
		rotateOnHangup(file)

		writers = append(writers, file)
	}

	return writers
}

func rotateOnHangup(file *lumberjack.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	go func() {
		for range hup {
			if err := file.Rotate(); err != nil {
				log.Warn().Err(err).Str("file", file.Filename).Msg("unable to rotate log file")
			}
		}
	}()
}

func initLogging(config logConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(io.MultiWriter(config.writers()...))

	level, ok := config.level()
	zerolog.SetGlobalLevel(level)
	if !ok {
		log.Warn().Str("log-level", config.Level).Msg("unknown log level, using info")
	}

	log.Info().
		Str("level", level.String()).
		Bool("json", config.JSON).
		Str("file", config.File).
		Msg("logging configured")
}
