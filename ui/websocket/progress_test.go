package websocket

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

type subscribeOnly struct {
	domainCampaign.ICampaignUsecase
	updates chan domainCampaign.Progress
}

func (s *subscribeOnly) Subscribe() (<-chan domainCampaign.Progress, func()) {
	return s.updates, func() {}
}

func TestRegisterRoutes_RequiresUpgrade(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, &subscribeOnly{updates: make(chan domainCampaign.Progress)})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/bulk/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func dialFrames(t *testing.T, updates chan domainCampaign.Progress) []domainCampaign.Progress {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(app, &subscribeOnly{updates: updates})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	conn, _, err := fastws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/bulk/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frames []domainCampaign.Progress
	for {
		var p domainCampaign.Progress
		if err := conn.ReadJSON(&p); err != nil {
			break
		}
		frames = append(frames, p)
	}
	return frames
}

func TestStreamProgress_FinishedRunOnConnect(t *testing.T) {
	updates := make(chan domainCampaign.Progress, 3)
	updates <- domainCampaign.Progress{Total: 1, Sent: 1, Done: true, ReportID: "1"}
	updates <- domainCampaign.Progress{Total: 1, ReportID: "2"}
	updates <- domainCampaign.Progress{Total: 1, Sent: 1, Done: true, ReportID: "2"}

	frames := dialFrames(t, updates)

	require.Len(t, frames, 3)
	assert.Equal(t, "1", frames[0].ReportID)
	assert.Equal(t, "2", frames[2].ReportID)
	assert.True(t, frames[2].Done)
}

func TestStreamProgress(t *testing.T) {
	updates := make(chan domainCampaign.Progress, 3)
	updates <- domainCampaign.Progress{Total: 2, ReportID: "1"}
	updates <- domainCampaign.Progress{Total: 2, Sent: 1, ReportID: "1"}
	updates <- domainCampaign.Progress{Total: 2, Sent: 1, Failed: 1, Done: true, ReportID: "1"}

	frames := dialFrames(t, updates)

	require.Len(t, frames, 3)
	assert.Equal(t, 1, frames[1].Sent)
	assert.True(t, frames[2].Done)
}
