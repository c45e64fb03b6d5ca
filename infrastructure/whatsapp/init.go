package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"

	"github.com/rakibhoossain/whatsapp-bulk-sender/config"
	pkgError "github.com/rakibhoossain/whatsapp-bulk-sender/pkg/error"
)

// DriverFor returns the database/sql driver name for a store URI
func DriverFor(uri string) string {
	if strings.HasPrefix(uri, "postgres:") || strings.HasPrefix(uri, "postgresql:") {
		return "postgres"
	}
	return "sqlite3"
}

// InitWaDB opens the whatsmeow session store
func InitWaDB(ctx context.Context, dbURI string) (*sqlstore.Container, error) {
	applyDeviceProps()

	dbLog := waLog.Stdout("Database", config.WhatsappLogLevel, true)
	container, err := sqlstore.New(ctx, DriverFor(dbURI), dbURI, dbLog)
	if err != nil {
		return nil, pkgError.InternalServerError(fmt.Sprintf("Database initialization error: %v", err))
	}
	return container, nil
}

// applyDeviceProps sets the name the paired phone shows under linked devices
func applyDeviceProps() {
	store.DeviceProps.Os = proto.String(config.AppOs)
}

// InitWaCLI builds a client for the first stored device, creating a new one when none is paired
func InitWaCLI(ctx context.Context, container *sqlstore.Container) (*Client, error) {
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	wa := whatsmeow.NewClient(device, waLog.Stdout("Client", config.WhatsappLogLevel, true))
	wa.EnableAutoReconnect = true

	var limiter *rate.Limiter
	if config.WhatsappLookupPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.WhatsappLookupPerSecond), 1)
	}

	client := newClient(wa, limiter)
	wa.AddEventHandler(client.handleEvent)
	return client, nil
}

func (c *Client) handleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Connected:
		c.clearQR()
		logrus.Info("WhatsApp: Connected")
	case *events.PairSuccess:
		logrus.WithField("jid", evt.ID.String()).Info("WhatsApp: Paired")
	case *events.Disconnected:
		logrus.Warn("WhatsApp: Disconnected")
	case *events.LoggedOut:
		logrus.WithField("reason", evt.Reason.String()).Warn("WhatsApp: Logged out")
	}
}
