package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

type adminMessenger struct {
	ready bool

	mu   sync.Mutex
	sent map[string]string
}

func (m *adminMessenger) State(context.Context) string { return "CONNECTED" }
func (m *adminMessenger) IsReady() bool                { return m.ready }

func (m *adminMessenger) ResolveNumber(_ context.Context, number string) (string, error) {
	return number + "@s.whatsapp.net", nil
}

func (m *adminMessenger) SendText(_ context.Context, jid string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[jid] = text
	return nil
}

func (m *adminMessenger) SendMedia(context.Context, string, *domainCampaign.Media, string) error {
	return nil
}

func TestNotifier_Notify(t *testing.T) {
	var (
		mu       sync.Mutex
		received slackPayload
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	messenger := &adminMessenger{ready: true, sent: map[string]string{}}
	notifier := NewNotifier(server.URL, "+1 (555) 000-0001", messenger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	notifier.Notify(ctx, "Bulk campaign completed", "Report 1: 2 sent")

	mu.Lock()
	assert.Equal(t, "*Bulk campaign completed*\nReport 1: 2 sent", received.Text)
	mu.Unlock()

	require.Contains(t, messenger.sent, "15550000001@s.whatsapp.net")
	assert.Equal(t, "*Bulk campaign completed*\nReport 1: 2 sent", messenger.sent["15550000001@s.whatsapp.net"])
}

func TestNotifier_SkipsUnconfiguredChannels(t *testing.T) {
	messenger := &adminMessenger{ready: false, sent: map[string]string{}}

	NewNotifier("", "15550000001", messenger).Notify(context.Background(), "t", "m")
	assert.Empty(t, messenger.sent)

	messenger.ready = true
	NewNotifier("", "", messenger).Notify(context.Background(), "t", "m")
	assert.Empty(t, messenger.sent)
}

func TestNotifier_SlackFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	assert.NotPanics(t, func() {
		NewNotifier(server.URL, "", nil).Notify(context.Background(), "t", "m")
	})
}
