package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/internal/prompts"
	"github.com/JaimeStill/promptchan/internal/users"
	"github.com/JaimeStill/promptchan/pkg/pagination"
)

var demoAccount = users.RegisterCommand{
	Email:    "demo@promptchan.com",
	Username: "demo_user",
	Password: "password123",
}

type seeder struct {
	users   users.System
	prompts prompts.System
	logger  *slog.Logger
}

// Run ensures the demo account exists and creates every sample prompt it
// does not already own, matched by title. It returns the number created.
func (s *seeder) Run(ctx context.Context, account users.RegisterCommand, samples []prompts.CreateCommand) (int, error) {
	owner, err := s.account(ctx, account)
	if err != nil {
		return 0, err
	}

	existing, err := s.ownedTitles(ctx, owner)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, sample := range samples {
		if existing[sample.Title] {
			s.logger.Debug("prompt exists, skipping", "title", sample.Title)
			continue
		}

		if _, err := s.prompts.Create(ctx, owner, sample); err != nil {
			return created, fmt.Errorf("create %q: %w", sample.Title, err)
		}
		created++
	}

	return created, nil
}

func (s *seeder) account(ctx context.Context, account users.RegisterCommand) (uuid.UUID, error) {
	session, err := s.users.Register(ctx, account)
	if err == nil {
		s.logger.Info("demo user created", "email", session.User.Email)
		return session.User.ID, nil
	}

	if !errors.Is(err, users.ErrDuplicate) {
		return uuid.Nil, fmt.Errorf("register demo user: %w", err)
	}

	session, err = s.users.Login(ctx, users.LoginCommand{
		Email:    account.Email,
		Password: account.Password,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("login demo user: %w", err)
	}

	s.logger.Info("demo user exists, reusing", "email", session.User.Email)
	return session.User.ID, nil
}

func (s *seeder) ownedTitles(ctx context.Context, owner uuid.UUID) (map[string]bool, error) {
	titles := make(map[string]bool)
	spec := prompts.ListSpec{Requester: owner, CreatorID: &owner}
	page := pagination.PageRequest{Skip: 0, Limit: 100}

	for {
		result, err := s.prompts.List(ctx, page, spec)
		if err != nil {
			return nil, fmt.Errorf("list demo prompts: %w", err)
		}

		for _, p := range result.Items {
			titles[p.Title] = true
		}

		if len(result.Items) == 0 || result.Skip+len(result.Items) >= result.Total {
			return titles, nil
		}
		page.Skip = result.Skip + len(result.Items)
	}
}
