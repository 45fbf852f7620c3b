package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/persistence"
	"github.com/khoahotran/devfolio/internal/application/store"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/logger"
)

var ErrAlreadySeeded = errors.New("storage already holds a portfolio")

var seedTimeout time.Duration

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample portfolio to the configured storage",
	Long: `Persist the built-in sample profile, projects and blog posts through the
configured storage strategy. Refuses to run when a portfolio is already stored.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", 30*time.Second, "give up after this long")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
	defer cancel()

	backend, err := persistence.OpenBackend(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	n, err := seedRepository(ctx, backend.Repository, portfolio.Seed(time.Now()), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records into %s storage\n", n, cfg.Storage.Strategy)
	return nil
}

// seedRepository writes data record by record through a store so every strategy receives the
// same mutations the API would send. The repository is closed on return.
func seedRepository(ctx context.Context, repo portfolio.Repository, data portfolio.Data, log logger.Logger) (int, error) {
	_, found, err := repo.Load(ctx)
	if err != nil {
		_ = repo.Close()
		return 0, fmt.Errorf("check existing portfolio: %w", err)
	}
	if found {
		_ = repo.Close()
		return 0, ErrAlreadySeeded
	}

	s := store.New(repo, store.WithLogger(log))
	s.Init(ctx)
	select {
	case <-s.Ready():
	case <-ctx.Done():
		_ = s.Close()
		return 0, ctx.Err()
	}

	pending := []*store.Pending{s.UpdateProfile(data.Profile)}
	// oldest first so the stored order matches the sample
	for i := len(data.Posts) - 1; i >= 0; i-- {
		_, p := s.AddPost(data.Posts[i])
		pending = append(pending, p)
	}
	for i := len(data.BlogPosts) - 1; i >= 0; i-- {
		_, p := s.AddBlogPost(data.BlogPosts[i])
		pending = append(pending, p)
	}

	var errs []error
	for _, p := range pending {
		if err := p.Wait(ctx); err != nil {
			log.Error("Seed write failed", err, zap.String("id", p.ID()))
			errs = append(errs, err)
		}
	}
	if err := s.Close(); err != nil {
		errs = append(errs, err)
	}
	return len(pending), errors.Join(errs...)
}
