package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dose-media/dose-stream/internal/auth"
)

func init() {
	var username string
	var userID int

	command := &cobra.Command{
		Use:   "token",
		Short: "mint an access token",
		Long:  `mint an access token signed with auth.secret`,
		Run: func(cmd *cobra.Command, args []string) {
			secret := viper.GetString("auth.secret")
			if secret == "" {
				log.Fatal().Msg("auth.secret must be set")
			}

			token, err := auth.NewJWT(secret, viper.GetDuration("auth.ttl")).Sign(username, userID)
			if err != nil {
				log.Fatal().Err(err).Msg("unable to sign token")
			}

			fmt.Println(token)
		},
	}

	command.Flags().StringVar(&username, "username", "", "user the token is issued to")
	command.Flags().IntVar(&userID, "user-id", 0, "id of the user the token is issued to")
	_ = command.MarkFlagRequired("username")

	rootCmd.AddCommand(command)
}
