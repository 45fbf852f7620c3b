package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// Notifier receives persistence failures. Nothing is rolled back; the notifier is the only
// place a failed background write surfaces unless the caller waits on its Pending.
type Notifier interface {
	Notify(err error)
}

type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }

type logNotifier struct {
	log logger.Logger
}

func (n logNotifier) Notify(err error) {
	n.log.Error("portfolio persistence failed", err)
}

type Option func(*PortfolioStore)

// WithSeed sets the content shown until (and unless) the backend returns stored data.
func WithSeed(d portfolio.Data) Option {
	return func(s *PortfolioStore) {
		s.seed = d.Clone()
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *PortfolioStore) { s.log = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *PortfolioStore) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *PortfolioStore) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *PortfolioStore) { s.newID = newID }
}

// WithWriteTimeout bounds a single backend write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *PortfolioStore) { s.writeTimeout = d }
}

// WithLoadRetry sets the first delay between failed initial loads and the cap it doubles up to.
func WithLoadRetry(initial, maxDelay time.Duration) Option {
	return func(s *PortfolioStore) {
		s.retryBase = initial
		s.retryMax = maxDelay
	}
}

func defaultIDGenerator() string {
	return uuid.NewString()
}
