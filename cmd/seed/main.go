// Command seed loads the demo account and the sample prompt catalog.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/promptchan/internal/api"
	"github.com/JaimeStill/promptchan/internal/config"
	"github.com/JaimeStill/promptchan/internal/infrastructure"
	"github.com/JaimeStill/promptchan/internal/prompts"
)

//go:embed prompts.json
var catalog []byte

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("env file load failed: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}
	defer infra.Database.Connection().Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := infra.Database.Ping(ctx); err != nil {
		log.Fatal("database unreachable: ", err)
	}

	var samples []prompts.CreateCommand
	if err := json.Unmarshal(catalog, &samples); err != nil {
		log.Fatal("prompt catalog decode failed: ", err)
	}

	domain := api.NewDomain(api.NewRuntime(cfg, infra))
	logger := infra.Logger.With("command", "seed")

	s := &seeder{
		users:   domain.Users,
		prompts: domain.Prompts,
		logger:  logger,
	}

	created, err := s.Run(ctx, demoAccount, samples)
	if err != nil {
		log.Fatal("seed failed: ", err)
	}

	logger.Info(
		"seed complete",
		"email", demoAccount.Email,
		"username", demoAccount.Username,
		"created", created,
		"catalog", len(samples),
	)
}
