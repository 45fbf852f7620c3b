package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrBlobNotFound is returned by BlobStore.Get for a key that was never written.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a flat key/value store holding one serialized document per key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// redisCmdable is the part of the go-redis client the blob and denylist stores use.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisBlobStore struct {
	rdb    redisCmdable
	closer func() error
}

// NewRedisBlobStore stores blobs as plain string keys without expiry.
func NewRedisBlobStore(rdb *redis.Client) BlobStore {
	return &redisBlobStore{rdb: rdb, closer: rdb.Close}
}

func (s *redisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *redisBlobStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisBlobStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// blobRecord is the single table behind the sqlite driver.
type blobRecord struct {
	Key       string `gorm:"primaryKey;size:200"`
	Value     []byte
	UpdatedAt time.Time
}

func (blobRecord) TableName() string {
	return "blobs"
}

type gormBlobStore struct {
	db *gorm.DB
}

// OpenSQLiteBlobStore opens (creating if needed) the sqlite file at path.
func OpenSQLiteBlobStore(path string) (BlobStore, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return NewGormBlobStore(gdb)
}

func NewGormBlobStore(gdb *gorm.DB) (BlobStore, error) {
	if err := gdb.AutoMigrate(&blobRecord{}); err != nil {
		return nil, fmt.Errorf("migrate blobs table: %w", err)
	}
	return &gormBlobStore{db: gdb}, nil
}

func (s *gormBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec blobRecord
	err := s.db.WithContext(ctx).Where(&blobRecord{Key: key}).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return rec.Value, nil
}

func (s *gormBlobStore) Put(ctx context.Context, key string, value []byte) error {
	rec := blobRecord{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (s *gormBlobStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
