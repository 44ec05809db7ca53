package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type memDedup struct {
	claimed  map[string]bool
	released []string
	err      error
}

func newMemDedup() *memDedup { return &memDedup{claimed: map[string]bool{}} }

func (d *memDedup) Claim(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.claimed[id] {
		return false, nil
	}
	d.claimed[id] = true
	return true, nil
}

func (d *memDedup) Release(_ context.Context, id string) error {
	delete(d.claimed, id)
	d.released = append(d.released, id)
	return nil
}

func encodeJob(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestMailWorker_DeliversOnce(t *testing.T) {
	sender := &recordingSender{}
	w := NewMailWorker(sender, newMemDedup(), zerolog.Nop())
	body := encodeJob(t, NewEmailJob("neo@matrix.io", "code", "123"))

	for i := 0; i < 2; i++ {
		requeue, err := w.Handle(context.Background(), body)
		require.NoError(t, err)
		assert.False(t, requeue)
	}
	assert.Equal(t, []string{"neo@matrix.io"}, sender.sent)
}

func TestMailWorker_FailedSendReleasesClaim(t *testing.T) {
	sender := &recordingSender{err: errors.New("mailgun 503")}
	dedup := newMemDedup()
	w := NewMailWorker(sender, dedup, zerolog.Nop())
	job := NewEmailJob("neo@matrix.io", "code", "123")

	requeue, err := w.Handle(context.Background(), encodeJob(t, job))
	require.Error(t, err)
	assert.True(t, requeue)
	assert.Equal(t, []string{job.ID}, dedup.released)

	sender.err = nil
	_, err = w.Handle(context.Background(), encodeJob(t, job))
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestMailWorker_BadPayloadIsDropped(t *testing.T) {
	w := NewMailWorker(&recordingSender{}, nil, zerolog.Nop())

	requeue, err := w.Handle(context.Background(), []byte("{not json"))
	assert.Error(t, err)
	assert.False(t, requeue)

	requeue, err = w.Handle(context.Background(), encodeJob(t, EmailJob{ID: "x"}))
	assert.Error(t, err)
	assert.False(t, requeue)
}

func TestMailWorker_DedupOutageStillSends(t *testing.T) {
	sender := &recordingSender{}
	dedup := newMemDedup()
	dedup.err = errors.New("redis down")
	w := NewMailWorker(sender, dedup, zerolog.Nop())

	_, err := w.Handle(context.Background(), encodeJob(t, NewEmailJob("a@b.io", "s", "t")))
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}
