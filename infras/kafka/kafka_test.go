package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pms/config"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkaGo.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkaGo.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()

	return kafkaGo.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}

	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int64(nil), r.committed...)
}

func testClient(reader *fakeReader) *kafkaClientImpl {
	return &kafkaClientImpl{
		config:        &config.Config{},
		newReader:     func(string, string) messageReader { return reader },
		retryDelay:    time.Millisecond,
		maxRetryDelay: 4 * time.Millisecond,
	}
}

func TestConsume_RetriesFailedMessageBeforeMovingOn(t *testing.T) {
	reader := &fakeReader{queue: []kafkaGo.Message{
		{Offset: 10, Key: []byte("grp-1")},
		{Offset: 11, Key: []byte("grp-2")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		attempts = map[int64]int{}
		handled  []int64
	)

	handler := func(_ context.Context, msg kafkaGo.Message) error {
		mu.Lock()
		defer mu.Unlock()

		attempts[msg.Offset]++
		if msg.Offset == 10 && attempts[msg.Offset] < 3 {
			return errors.New("s3 unavailable")
		}

		handled = append(handled, msg.Offset)
		if len(handled) == 2 {
			cancel()
		}

		return nil
	}

	require.NoError(t, testClient(reader).Consume(ctx, "", "group-booking-events", handler))

	assert.Equal(t, 3, attempts[10])
	assert.Equal(t, 1, attempts[11])
	assert.Equal(t, []int64{10, 11}, handled)
	assert.Equal(t, []int64{10, 11}, reader.commits())
	assert.True(t, reader.closed)
}

func TestConsume_StopsWithoutCommittingOnCancel(t *testing.T) {
	reader := &fakeReader{queue: []kafkaGo.Message{{Offset: 7}}}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	handler := func(context.Context, kafkaGo.Message) error {
		calls++
		if calls == 2 {
			cancel()
		}

		return errors.New("database down")
	}

	require.NoError(t, testClient(reader).Consume(ctx, "", "group-booking-events", handler))

	assert.GreaterOrEqual(t, calls, 2)
	assert.Empty(t, reader.commits())
}

func TestConsume_RequiresTopic(t *testing.T) {
	err := testClient(&fakeReader{}).Consume(context.Background(), "", "", func(context.Context, kafkaGo.Message) error {
		return nil
	})

	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	msg, err := (&Message{Key: "grp-1", Value: map[string]int{"rooms": 3}}).ToKafkaMessage("group-booking-events")
	require.NoError(t, err)

	assert.Equal(t, "group-booking-events", msg.Topic)

	value, err := Decode[map[string]int](msg)
	require.NoError(t, err)
	assert.Equal(t, 3, value["rooms"])

	_, err = Decode[map[string]int](kafkaGo.Message{Value: []byte("{")})
	assert.Error(t, err)
}
