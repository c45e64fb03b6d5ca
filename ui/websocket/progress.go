package websocket

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

const writeTimeout = 10 * time.Second

// RegisterRoutes mounts the progress stream at /bulk/ws
func RegisterRoutes(app fiber.Router, service domainCampaign.ICampaignUsecase) {
	app.Use("/bulk/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/bulk/ws", websocket.New(func(conn *websocket.Conn) {
		streamProgress(conn, service)
	}))
}

// streamProgress pushes progress snapshots until a run is done or the client goes away
func streamProgress(conn *websocket.Conn, service domainCampaign.ICampaignUsecase) {
	updates, unsubscribe := service.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// a finished run seen on connect must not end the stream before the next run starts
	first := true
	staleReport := ""
	for {
		select {
		case <-closed:
			return
		case progress, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(progress); err != nil {
				logrus.Debugf("Campaign: Progress stream closed: %v", err)
				return
			}
			if first {
				first = false
				if progress.Done {
					staleReport = progress.ReportID
					continue
				}
			}
			if progress.Done && progress.ReportID != staleReport {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
				return
			}
		}
	}
}
