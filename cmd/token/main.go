package main

import (
	"flag"
	"fmt"
	"os"

	"pms/config"
	"pms/infras/jwt"
	"pms/shared/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	userID := flag.String("user", uuid.NewString(), "operator ID placed in the token")
	email := flag.String("email", "operator@localhost", "operator email")
	role := flag.String("role", "admin", "operator role (admin, front-office, reservations)")

	flag.Parse()

	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg, "token")

	token, err := jwt.New(cfg).GenerateAccessToken(*userID, *email, *role)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate token")
		os.Exit(1)
	}

	log.Info().Str("user", *userID).Str("role", *role).Time("expires_at", token.ExpiresAt).Msg("Token generated")

	fmt.Println(token.AccessToken) //nolint:forbidigo
}
