package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegramAPI answers getMe and sendMessage with a result shape both
// decode from, recording the text of every sent message.
func fakeTelegramAPI(t *testing.T, sent *[]string, mu *sync.Mutex) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			require.NoError(t, r.ParseForm())
			mu.Lock()
			*sent = append(*sent, r.PostFormValue("text"))
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"smle","message_id":1,"date":1,"chat":{"id":42},"text":"ok"}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTelegramSendDeliversMessage(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := fakeTelegramAPI(t, &sent, &mu)

	tg := NewTelegram("token", 42, testLogger())
	tg.newBot = func(token string) (*tgbotapi.BotAPI, error) {
		return tgbotapi.NewBotAPIWithClient(token, srv.URL+"/bot%s/%s", srv.Client())
	}

	require.NoError(t, tg.Send(context.Background(), "Training run finished"))
	assert.Equal(t, []string{"Training run finished"}, sent)
}

// Concurrent sends must share one lazily created bot client.
func TestTelegramConcurrentSendsInitBotOnce(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := fakeTelegramAPI(t, &sent, &mu)

	tg := NewTelegram("token", 42, testLogger())
	var created atomic.Int32
	tg.newBot = func(token string) (*tgbotapi.BotAPI, error) {
		created.Add(1)
		return tgbotapi.NewBotAPIWithClient(token, srv.URL+"/bot%s/%s", srv.Client())
	}

	const senders = 8
	errs := make(chan error, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tg.Send(context.Background(), "msg")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, created.Load())
	assert.Len(t, sent, senders)
}
