package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

const (
	StateConnected    = "CONNECTED"
	StateConnecting   = "CONNECTING"
	StateDisconnected = "DISCONNECTED"
	StateUnpaired     = "UNPAIRED"
)

// waAPI is the part of *whatsmeow.Client the messenger sends through
type waAPI interface {
	IsConnected() bool
	IsLoggedIn() bool
	IsOnWhatsApp(ctx context.Context, phones []string) ([]types.IsOnWhatsAppResponse, error)
	Upload(ctx context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error)
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
}

// Client wraps one WhatsApp Web session and implements IMessenger
type Client struct {
	wa      *whatsmeow.Client
	api     waAPI
	limiter *rate.Limiter

	qrMu sync.RWMutex
	qr   string
}

var _ domainCampaign.IMessenger = (*Client)(nil)

func newClient(wa *whatsmeow.Client, limiter *rate.Limiter) *Client {
	return &Client{wa: wa, api: wa, limiter: limiter}
}

// Connect opens the session. An unpaired device starts QR pairing; codes are exposed through LatestQR.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID != nil {
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return nil
	}

	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("qr channel: %w", err)
	}
	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	go func() {
		for evt := range qrChan {
			switch evt.Event {
			case "code":
				c.setQR(evt.Code)
				logrus.WithField("timeout", evt.Timeout).Info("WhatsApp: New pairing QR available at /app/qr")
			case "success":
				c.clearQR()
				logrus.Info("WhatsApp: Pairing succeeded")
			default:
				c.clearQR()
				logrus.WithField("event", evt.Event).Warn("WhatsApp: Pairing ended")
			}
		}
	}()
	return nil
}

func (c *Client) Disconnect() {
	if c.wa != nil {
		c.wa.Disconnect()
	}
}

// LatestQR returns the current pairing code, if pairing is in progress
func (c *Client) LatestQR() (string, bool) {
	c.qrMu.RLock()
	defer c.qrMu.RUnlock()
	return c.qr, c.qr != ""
}

func (c *Client) setQR(code string) {
	c.qrMu.Lock()
	c.qr = code
	c.qrMu.Unlock()
}

func (c *Client) clearQR() {
	c.setQR("")
}

func (c *Client) State(_ context.Context) string {
	if c.api == nil {
		return StateDisconnected
	}
	if c.wa != nil && c.wa.Store.ID == nil {
		return StateUnpaired
	}
	switch {
	case c.api.IsConnected() && c.api.IsLoggedIn():
		return StateConnected
	case c.api.IsConnected():
		return StateConnecting
	default:
		return StateDisconnected
	}
}

func (c *Client) IsReady() bool {
	return c.api != nil && c.api.IsConnected() && c.api.IsLoggedIn()
}

// ResolveNumber looks a digits-only number up on WhatsApp and returns its JID, or "" without an account
func (c *Client) ResolveNumber(ctx context.Context, number string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	infos, err := c.api.IsOnWhatsApp(ctx, []string{"+" + strings.TrimPrefix(number, "+")})
	if err != nil {
		return "", fmt.Errorf("is on whatsapp %s: %w", number, err)
	}
	for _, info := range infos {
		if info.IsIn {
			return info.JID.String(), nil
		}
	}
	return "", nil
}

func (c *Client) SendText(ctx context.Context, jid string, text string) error {
	target, err := types.ParseJID(jid)
	if err != nil {
		return fmt.Errorf("parse jid %s: %w", jid, err)
	}

	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := c.api.SendMessage(ctx, target, msg); err != nil {
		return fmt.Errorf("send text to %s: %w", jid, err)
	}
	return nil
}

func (c *Client) SendMedia(ctx context.Context, jid string, media *domainCampaign.Media, caption string) error {
	target, err := types.ParseJID(jid)
	if err != nil {
		return fmt.Errorf("parse jid %s: %w", jid, err)
	}

	mediaType := MediaTypeFor(media.MimeType)
	uploaded, err := c.api.Upload(ctx, media.Data, mediaType)
	if err != nil {
		return fmt.Errorf("upload %s: %w", media.FileName, err)
	}

	var thumbnail []byte
	if mediaType == whatsmeow.MediaImage {
		if thumbnail, err = Thumbnail(media.Data); err != nil {
			logrus.WithField("file", media.FileName).Debugf("WhatsApp: Thumbnail skipped: %v", err)
		}
	}

	msg := BuildMediaMessage(media, caption, uploaded, thumbnail)
	if _, err := c.api.SendMessage(ctx, target, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", media.FileName, jid, err)
	}
	return nil
}
