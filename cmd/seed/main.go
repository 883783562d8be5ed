package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/seed"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	opts, err := seed.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	opts.DatabaseDSN = cfg.DatabaseDSN
	if err := opts.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	repos, err := server.OpenRepositories(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer repos.Close()

	hasher, err := server.NewHasher(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.SigningAlgorithm, cfg.AccessTokenValidityDuration)
	if err != nil {
		log.Fatalf("%v", err)
	}

	authn, err := services.NewAuthenticator(repos, hasher, tokens)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := seed.Run(ctx, authn, opts, os.Stdout); err != nil {
		log.Printf("%v", err)
		return
	}

}
