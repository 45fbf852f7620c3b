package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// LocalRepository keeps the whole portfolio as one JSON document under a fixed key. Every write
// replaces the document with the mutation's snapshot.
type LocalRepository struct {
	blobs  BlobStore
	key    string
	logger logger.Logger
}

func NewLocalRepository(blobs BlobStore, key string, logger logger.Logger) *LocalRepository {
	return &LocalRepository{blobs: blobs, key: key, logger: logger}
}

func (r *LocalRepository) Load(ctx context.Context) (portfolio.Data, bool, error) {
	raw, err := r.blobs.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return portfolio.Data{}, false, nil
		}
		return portfolio.Data{}, false, apperror.NewIO("failed to read local portfolio", err)
	}

	var data portfolio.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		// a corrupt document behaves like an empty store; the next write replaces it
		r.logger.Warn("discarding unreadable local portfolio", zap.String("key", r.key), zap.Error(err))
		return portfolio.Data{}, false, nil
	}
	portfolio.SortNewestFirst(&data)
	return data, true, nil
}

func (r *LocalRepository) Apply(ctx context.Context, m portfolio.Mutation) (string, error) {
	raw, err := json.Marshal(m.Snapshot)
	if err != nil {
		return "", apperror.NewInternal("failed to encode portfolio", err)
	}
	if err := r.blobs.Put(ctx, r.key, raw); err != nil {
		return "", apperror.NewIO("failed to write local portfolio", err)
	}
	return m.ID, nil
}

// Subscribe returns immediately: nothing but this process writes the local document.
func (r *LocalRepository) Subscribe(ctx context.Context, fn func(portfolio.Snapshot)) error {
	return nil
}

func (r *LocalRepository) Close() error {
	return r.blobs.Close()
}
