package serve

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dose-media/dose-stream/pkg/transcode"
)

type TranscodingConfig struct {
	Dir           string
	FFmpegBinary  string
	FFprobeBinary string
	Codec         transcode.VideoCodec
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	PollInterval  time.Duration
	SeekTolerance int
	Settings      map[transcode.VideoCodec]transcode.Settings
}

func (TranscodingConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("transcoding.dir", filepath.Join(os.TempDir(), "dose", "transcodings"), "directory holding the output of running encoders")
	if err := viper.BindPFlag("transcoding.dir", cmd.PersistentFlags().Lookup("transcoding.dir")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("transcoding.ffmpeg-binary", "ffmpeg", "path to the ffmpeg binary")
	if err := viper.BindPFlag("transcoding.ffmpeg-binary", cmd.PersistentFlags().Lookup("transcoding.ffmpeg-binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("transcoding.ffprobe-binary", "ffprobe", "path to the ffprobe binary")
	if err := viper.BindPFlag("transcoding.ffprobe-binary", cmd.PersistentFlags().Lookup("transcoding.ffprobe-binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("transcoding.codec", string(transcode.H264), "video codec used when the client does not request one")
	if err := viper.BindPFlag("transcoding.codec", cmd.PersistentFlags().Lookup("transcoding.codec")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("transcoding.idle-timeout", transcode.DefaultIdleTimeout, "remove sessions without requests for this long")
	if err := viper.BindPFlag("transcoding.idle-timeout", cmd.PersistentFlags().Lookup("transcoding.idle-timeout")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("transcoding.sweep-interval", transcode.DefaultSweepInterval, "how often idle sessions are looked for")
	if err := viper.BindPFlag("transcoding.sweep-interval", cmd.PersistentFlags().Lookup("transcoding.sweep-interval")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("transcoding.poll-interval", transcode.DefaultPollInterval, "how often a pending segment is checked for")
	if err := viper.BindPFlag("transcoding.poll-interval", cmd.PersistentFlags().Lookup("transcoding.poll-interval")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("transcoding.seek-tolerance", transcode.DefaultSeekTolerance, "segments a client may skip ahead before the encoder restarts")
	if err := viper.BindPFlag("transcoding.seek-tolerance", cmd.PersistentFlags().Lookup("transcoding.seek-tolerance")); err != nil {
		return err
	}

	// per codec settings are only read from the config file or env
	for codec, settings := range transcode.DefaultSettingsMap() {
		key := "transcoding.settings." + string(codec)
		viper.SetDefault(key+".crf", settings.CRF)
		viper.SetDefault(key+".preset", string(settings.Preset))
		viper.SetDefault(key+".threads", settings.Threads)
	}

	return nil
}

// Load reads the transcoding configuration from viper. On error c is left
// unchanged.
func (c *TranscodingConfig) Load() error {
	next := TranscodingConfig{
		Dir:           viper.GetString("transcoding.dir"),
		FFmpegBinary:  viper.GetString("transcoding.ffmpeg-binary"),
		FFprobeBinary: viper.GetString("transcoding.ffprobe-binary"),
		IdleTimeout:   viper.GetDuration("transcoding.idle-timeout"),
		SweepInterval: viper.GetDuration("transcoding.sweep-interval"),
		PollInterval:  viper.GetDuration("transcoding.poll-interval"),
		SeekTolerance: viper.GetInt("transcoding.seek-tolerance"),
		Settings:      map[transcode.VideoCodec]transcode.Settings{},
	}

	codec, err := transcode.ParseVideoCodec(viper.GetString("transcoding.codec"))
	if err != nil {
		return fmt.Errorf("transcoding.codec: %w", err)
	}
	next.Codec = codec

	for codec := range transcode.DefaultSettingsMap() {
		key := "transcoding.settings." + string(codec)

		preset, err := transcode.ParsePreset(viper.GetString(key + ".preset"))
		if err != nil {
			return fmt.Errorf("%s.preset: %w", key, err)
		}

		next.Settings[codec] = transcode.Settings{
			CRF:     viper.GetInt(key + ".crf"),
			Preset:  preset,
			Threads: viper.GetInt(key + ".threads"),
		}
	}

	*c = next
	return nil
}

func (c *TranscodingConfig) Set() {
	if err := c.Load(); err != nil {
		log.Panic().Err(err).Msg("invalid transcoding config")
	}
}

type ProbeConfig struct {
	CacheDir string
}

func (ProbeConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("probe.cache-dir", "", "directory caching probe results, empty disables the cache")
	if err := viper.BindPFlag("probe.cache-dir", cmd.PersistentFlags().Lookup("probe.cache-dir")); err != nil {
		return err
	}

	return nil
}

func (c *ProbeConfig) Set() {
	c.CacheDir = viper.GetString("probe.cache-dir")
}

type CatalogConfig struct {
	Driver string
	DSN    string
}

func (CatalogConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("catalog.driver", "postgres", "catalog database driver: postgres, mysql or sqlite")
	if err := viper.BindPFlag("catalog.driver", cmd.PersistentFlags().Lookup("catalog.driver")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("catalog.dsn", "", "catalog database connection string")
	if err := viper.BindPFlag("catalog.dsn", cmd.PersistentFlags().Lookup("catalog.dsn")); err != nil {
		return err
	}

	return nil
}

func (c *CatalogConfig) Set() {
	c.Driver = viper.GetString("catalog.driver")
	c.DSN = viper.GetString("catalog.dsn")
}

type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

func (AuthConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("auth.secret", "", "secret signing access tokens")
	if err := viper.BindPFlag("auth.secret", cmd.PersistentFlags().Lookup("auth.secret")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("auth.ttl", 24*time.Hour, "validity of minted access tokens")
	if err := viper.BindPFlag("auth.ttl", cmd.PersistentFlags().Lookup("auth.ttl")); err != nil {
		return err
	}

	return nil
}

func (c *AuthConfig) Set() {
	c.Secret = viper.GetString("auth.secret")
	c.TTL = viper.GetDuration("auth.ttl")
}
