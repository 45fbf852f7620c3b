package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

type scriptedReader struct {
	msgs []kafka.Message
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) Close() error { return nil }

func TestPublishChangeKeysByOwner(t *testing.T) {
	w := &recordingWriter{}
	c := &KafkaProducerClient{ChangesWriter: w, logger: logger.NewNop()}

	ev := portfolio.ChangeEvent{
		Collection: portfolio.CollectionProjects,
		Op:         portfolio.OpAdd,
		ID:         "p1",
		OwnerID:    "main-dev",
		At:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.PublishChange(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "main-dev", string(w.msgs[0].Key))
	var got portfolio.ChangeEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)
}

func TestPublishChangeWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	c := &KafkaProducerClient{ChangesWriter: &recordingWriter{err: boom}, logger: logger.NewNop()}

	err := c.PublishChange(context.Background(), portfolio.ChangeEvent{OwnerID: "main-dev"})
	assert.ErrorIs(t, err, boom)
}

func TestChangesSkipsBadMessagesAndStopsOnCancel(t *testing.T) {
	good, _ := json.Marshal(portfolio.ChangeEvent{Collection: portfolio.CollectionBlogPosts, Op: portfolio.OpDelete, ID: "b1"})
	r := &scriptedReader{msgs: []kafka.Message{{Value: []byte("{not json")}, {Value: good}}}
	c := &KafkaChangeConsumer{reader: r, logger: logger.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	var got []portfolio.ChangeEvent
	err := c.Changes(ctx, func(ev portfolio.ChangeEvent) {
		got = append(got, ev)
		cancel()
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)
}

func TestConstructorsRequireBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNop())
	assert.Error(t, err)
	_, err = NewKafkaChangeConsumer(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}
