package serve

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dose-media/dose-stream/pkg/transcode"
)

func TestTranscodingConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "serve"}

	config := &TranscodingConfig{}
	require.NoError(t, config.Init(cmd))
	require.NoError(t, cmd.PersistentFlags().Set("transcoding.seek-tolerance", "15"))
	viper.Set("transcoding.settings.h265.crf", 28)
	viper.Set("transcoding.settings.h265.preset", "Medium")

	config.Set()

	assert.Equal(t, transcode.H264, config.Codec)
	assert.Equal(t, "ffmpeg", config.FFmpegBinary)
	assert.Equal(t, 20*time.Second, config.IdleTimeout)
	assert.Equal(t, time.Second, config.PollInterval)
	assert.Equal(t, 15, config.SeekTolerance)

	assert.Equal(t, transcode.DefaultSettings(), config.Settings[transcode.H264])
	assert.Equal(t, transcode.Settings{
		CRF:     28,
		Preset:  transcode.PresetMedium,
		Threads: 8,
	}, config.Settings[transcode.H265])
}

func TestAuthConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "serve"}

	config := &AuthConfig{}
	require.NoError(t, config.Init(cmd))
	viper.Set("auth.secret", "s3cret")

	config.Set()

	assert.Equal(t, "s3cret", config.Secret)
	assert.Equal(t, 24*time.Hour, config.TTL)
}

func TestTranscodingConfig_InvalidPreset(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "serve"}

	config := &TranscodingConfig{}
	require.NoError(t, config.Init(cmd))
	require.NoError(t, config.Load())
	previous := config.Settings

	viper.Set("transcoding.settings.h264.preset", "ultrafst")

	err := config.Load()
	assert.ErrorIs(t, err, transcode.ErrUnsupportedPreset)
	assert.Equal(t, previous, config.Settings)
	assert.Panics(t, config.Set)
}

func TestConfigReload_KeepsPreviousSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "serve"}

	main := NewCommand()
	main.Preflight()
	require.NoError(t, main.TranscodingConfig.Init(cmd))
	main.TranscodingConfig.Set()

	viper.Set("transcoding.settings.h264.crf", 30)
	main.ConfigReload()
	assert.Equal(t, 30, main.TranscodingConfig.Settings[transcode.H264].CRF)

	viper.Set("transcoding.settings.h264.crf", 18)
	viper.Set("transcoding.codec", "vp9")
	assert.NotPanics(t, main.ConfigReload)
	assert.Equal(t, 30, main.TranscodingConfig.Settings[transcode.H264].CRF)
	assert.Equal(t, transcode.H264, main.TranscodingConfig.Codec)
}
