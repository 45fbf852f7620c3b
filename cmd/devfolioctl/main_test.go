package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devfolio/internal/application/store/storetest"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/auth"
	"github.com/khoahotran/devfolio/pkg/logger"
)

func TestHashPasswordFromArgument(t *testing.T) {
	var out bytes.Buffer
	hashPasswordCmd.SetOut(&out)
	require.NoError(t, runHashPassword(hashPasswordCmd, []string{"s3cret"}))

	assert.True(t, auth.CheckPasswordHash("s3cret", strings.TrimSpace(out.String())))
}

func TestHashPasswordFromStdin(t *testing.T) {
	var out bytes.Buffer
	hashPasswordCmd.SetOut(&out)
	hashPasswordCmd.SetIn(strings.NewReader("from-stdin\n"))
	require.NoError(t, runHashPassword(hashPasswordCmd, nil))

	assert.True(t, auth.CheckPasswordHash("from-stdin", strings.TrimSpace(out.String())))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	hashPasswordCmd.SetIn(strings.NewReader("\n"))
	assert.Error(t, runHashPassword(hashPasswordCmd, nil))
}

func TestSeedRepositoryWritesEveryRecord(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seed := portfolio.Seed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := storetest.NewMemoryRepository()

	n, err := seedRepository(ctx, repo, seed, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1+len(seed.Posts)+len(seed.BlogPosts), n)
	assert.Len(t, repo.Applied(), n)

	stored := repo.Stored()
	assert.Equal(t, seed.Profile.Name, stored.Profile.Name)
	require.Len(t, stored.Posts, len(seed.Posts))
	assert.Equal(t, seed.Posts[0].ID, stored.Posts[0].ID)
	assert.Len(t, stored.BlogPosts, len(seed.BlogPosts))
}

func TestSeedRepositoryRefusesExistingPortfolio(t *testing.T) {
	repo := storetest.NewMemoryRepositoryWith(portfolio.Seed(time.Now()))

	_, err := seedRepository(context.Background(), repo, portfolio.Seed(time.Now()), logger.NewNop())
	assert.ErrorIs(t, err, ErrAlreadySeeded)
	assert.Empty(t, repo.Applied())
}

func TestSeedRepositoryReportsWriteFailures(t *testing.T) {
	repo := storetest.NewMemoryRepository()
	repo.ApplyErr = errors.New("disk full")

	_, err := seedRepository(context.Background(), repo, portfolio.Seed(time.Now()), logger.NewNop())
	assert.Error(t, err)
}
