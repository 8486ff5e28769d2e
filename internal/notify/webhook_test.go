package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordSendPostsContent(t *testing.T) {
	var (
		gotBody        []byte
		gotContentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, testLogger())
	require.NoError(t, d.Send(context.Background(), "Training completed successfully!"))

	assert.Equal(t, "application/json", gotContentType)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "Training completed successfully!", payload["content"])
	assert.Equal(t, "smle", payload["username"])
}

func TestDiscordNon2xxIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, testLogger())
	err := d.Send(context.Background(), "msg")

	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "discord", dErr.Service)
}

func TestDiscordUnconfiguredFailsAtSendTime(t *testing.T) {
	t.Setenv(EnvDiscordWebhook, "")

	// Construction must not fail with no URL anywhere.
	d := NewDiscord("", testLogger())

	err := d.Send(context.Background(), "msg")
	var cErr *ConfigError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "discord", cErr.Service)
}

func TestDiscordResolvesURLFromEnv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	t.Setenv(EnvDiscordWebhook, srv.URL)

	d := NewDiscord("", testLogger())
	require.NoError(t, d.Send(context.Background(), "msg"))
}

func TestSlackSendPostsText(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, testLogger())
	require.NoError(t, s.Send(context.Background(), "Training completed successfully!"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "Training completed successfully!", payload["text"])
	assert.Equal(t, "smle", payload["username"])
}

func TestSlackNon2xxIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, testLogger())
	err := s.Send(context.Background(), "msg")

	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
}

func TestSlackUnconfiguredFailsAtSendTime(t *testing.T) {
	t.Setenv(EnvSlackWebhook, "")

	s := NewSlack("", testLogger())

	var cErr *ConfigError
	require.ErrorAs(t, s.Send(context.Background(), "msg"), &cErr)
}

func TestTelegramUnconfiguredFailsAtSendTime(t *testing.T) {
	t.Setenv(EnvTelegramToken, "")
	t.Setenv(EnvTelegramChatID, "")

	tg := NewTelegram("", 0, testLogger())

	var cErr *ConfigError
	require.ErrorAs(t, tg.Send(context.Background(), "msg"), &cErr)
	assert.Equal(t, "telegram", cErr.Service)
}

// A webhook returning 500 produces a logged failure for that service while
// the remaining services still deliver.
func TestNotifyCompletesDespiteWebhook500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(testLogger())
	healthy := &stubService{name: "healthy"}
	n.AddService(NewDiscord(srv.URL, testLogger()))
	n.AddService(healthy)

	results := n.Notify(context.Background(), "done")

	require.Len(t, results, 2)
	var dErr *DeliveryError
	require.ErrorAs(t, results[0].Err, &dErr)
	assert.True(t, results[1].Ok())
	assert.Equal(t, []string{"done"}, healthy.sent)
}
