package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestDispatcherDeliversQueuedMessages(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, watermill.NopLogger{})
	require.NoError(t, d.Start(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	d.Notify(ctx, Message{To: "a@example.com", Subject: "one"})
	d.Notify(ctx, Message{To: "b@example.com", Subject: "two"})

	assert.Eventually(t, func() bool { return mailer.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, d.Close())

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, "one", mailer.sent[0].Subject)
	assert.Equal(t, "b@example.com", mailer.sent[1].To)
}

func TestDispatcherKeepsGoingAfterSendFailure(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	d := NewDispatcher(mailer, watermill.NopLogger{})
	require.NoError(t, d.Start(context.Background()))

	d.Notify(context.Background(), Message{To: "a@example.com"})
	d.Notify(context.Background(), Message{To: "b@example.com"})

	assert.Eventually(t, func() bool { return mailer.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, d.Close())
}

func TestDispatcherStartTwice(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, watermill.NopLogger{})
	require.NoError(t, d.Start(context.Background()))
	assert.Error(t, d.Start(context.Background()))
	require.NoError(t, d.Close())
}

func TestDispatcherCloseWithoutStart(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, watermill.NopLogger{})
	done := make(chan struct{})
	go func() {
		_ = d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked without Start")
	}
}

func TestDefaultFallsBackToLogging(t *testing.T) {
	SetDefault(nil)
	assert.NotNil(t, Default())
	Default().Notify(context.Background(), Message{To: "x@example.com"})
}
