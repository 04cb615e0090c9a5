package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dose-media/dose-stream/internal/serve"
)

func init() {
	service := serve.NewCommand()

	command := &cobra.Command{
		Use:   "serve",
		Short: "serve streaming server",
		Long:  `serve streaming server`,
		Run:   service.Run,
	}

	configs := []Config{
		service.ServerConfig,
		service.TranscodingConfig,
		service.ProbeConfig,
		service.CatalogConfig,
		service.AuthConfig,
	}

	cobra.OnInitialize(func() {
		for _, cfg := range configs {
			cfg.Set()
		}
		service.Preflight()
	})

	onConfigLoad = append(onConfigLoad, service.ConfigReload)

	for _, cfg := range configs {
		if err := cfg.Init(command); err != nil {
			log.Panic().Err(err).Msg("unable to run serve command")
		}
	}

	rootCmd.AddCommand(command)
}
