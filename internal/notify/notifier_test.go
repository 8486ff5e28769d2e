package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// stubService records every message it receives; when fail is set it returns
// that error instead. An optional shared calls slice captures cross-service
// invocation order.
type stubService struct {
	name  string
	fail  error
	sent  []string
	calls *[]string
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Send(_ context.Context, message string) error {
	if s.calls != nil {
		*s.calls = append(*s.calls, s.name)
	}
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, message)
	return nil
}

func TestNotifierServicesInsertionOrder(t *testing.T) {
	n := NewNotifier(testLogger())

	n.AddService(&stubService{name: "discord"})
	n.AddService(&stubService{name: "slack"})
	n.AddService(&stubService{name: "email"})

	require.Equal(t, []string{"discord", "slack", "email"}, n.Services())
}

func TestNotifierAddDuplicateService(t *testing.T) {
	n := NewNotifier(testLogger())
	s := &stubService{name: "discord"}

	n.AddService(s)
	n.AddService(s)

	require.Equal(t, []string{"discord", "discord"}, n.Services())
}

func TestRemoveServiceFirstMatch(t *testing.T) {
	n := NewNotifier(testLogger())
	s := &stubService{name: "discord"}

	n.AddService(s)
	n.AddService(s)
	n.RemoveService(s)

	require.Equal(t, []string{"discord"}, n.Services())
}

func TestRemoveServiceAbsentIsNoop(t *testing.T) {
	n := NewNotifier(testLogger())
	n.AddService(&stubService{name: "slack"})

	n.RemoveService(&stubService{name: "discord"})

	require.Equal(t, []string{"slack"}, n.Services())
}

func TestAddThenRemoveRoundTrip(t *testing.T) {
	n := NewNotifier(testLogger())
	s := &stubService{name: "discord"}

	n.AddService(s)
	n.RemoveService(s)

	require.Empty(t, n.Services())
}

func TestClearServices(t *testing.T) {
	n := NewNotifier(testLogger())
	n.AddService(&stubService{name: "discord"})
	n.AddService(&stubService{name: "slack"})

	n.ClearServices()

	require.Empty(t, n.Services())
}

func TestNotifyWithNoServicesIsNoop(t *testing.T) {
	n := NewNotifier(testLogger())

	results := n.Notify(context.Background(), "hello")

	require.Nil(t, results)
}

func TestNotifyContinuesAfterFailure(t *testing.T) {
	n := NewNotifier(testLogger())
	var calls []string

	first := &stubService{name: "first", calls: &calls}
	failing := &stubService{name: "failing", calls: &calls, fail: &DeliveryError{Service: "failing", Err: errors.New("boom")}}
	last := &stubService{name: "last", calls: &calls}

	n.AddService(first)
	n.AddService(failing)
	n.AddService(last)

	results := n.Notify(context.Background(), "msg")

	require.Equal(t, []string{"first", "failing", "last"}, calls)
	require.Len(t, results, 3)
	assert.True(t, results[0].Ok())
	assert.False(t, results[1].Ok())
	assert.True(t, results[2].Ok())

	var dErr *DeliveryError
	require.ErrorAs(t, results[1].Err, &dErr)
	assert.Equal(t, []string{"msg"}, first.sent)
	assert.Equal(t, []string{"msg"}, last.sent)
}

func TestNotifyDeliversExactlyOnceInOrder(t *testing.T) {
	n := NewNotifier(testLogger())
	var calls []string

	discordLike := &stubService{name: "discord", calls: &calls}
	emailLike := &stubService{name: "email", calls: &calls}

	n.AddService(discordLike)
	n.AddService(emailLike)

	n.Notify(context.Background(), "done")

	require.Equal(t, []string{"discord", "email"}, calls)
	assert.Equal(t, []string{"done"}, discordLike.sent)
	assert.Equal(t, []string{"done"}, emailLike.sent)
}

func TestNotifyMessageImmutableAcrossFanOut(t *testing.T) {
	n := NewNotifier(testLogger())
	a := &stubService{name: "a"}
	b := &stubService{name: "b"}
	n.AddService(a)
	n.AddService(b)

	n.Notify(context.Background(), "exact message")

	assert.Equal(t, a.sent, b.sent)
}

// countingService is safe for concurrent Send calls.
type countingService struct {
	name  string
	calls atomic.Int64
}

func (c *countingService) Name() string { return c.name }

func (c *countingService) Send(context.Context, string) error {
	c.calls.Add(1)
	return nil
}

// The service list must tolerate registration, fan-out and inspection from
// concurrent goroutines.
func TestNotifierConcurrentAddAndNotify(t *testing.T) {
	n := NewNotifier(testLogger())
	seed := &countingService{name: "seed"}
	n.AddService(seed)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			n.AddService(&countingService{name: "extra"})
		}()
		go func() {
			defer wg.Done()
			n.Notify(context.Background(), "msg")
		}()
		go func() {
			defer wg.Done()
			_ = n.Services()
		}()
	}
	wg.Wait()

	assert.Len(t, n.Services(), workers+1)
	assert.EqualValues(t, workers, seed.calls.Load())
}
