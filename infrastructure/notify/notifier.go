package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/recipients"
)

const defaultTimeout = 10 * time.Second

type slackPayload struct {
	Text string `json:"text"`
}

// Notifier fans operator notifications out to a Slack webhook and an admin WhatsApp number.
// Delivery is best effort: failures are logged and dropped.
type Notifier struct {
	slackWebhookURL string
	adminNumber     string
	messenger       domainCampaign.IMessenger
}

var _ domainCampaign.INotifier = (*Notifier)(nil)

func NewNotifier(slackWebhookURL, adminNumber string, messenger domainCampaign.IMessenger) *Notifier {
	return &Notifier{
		slackWebhookURL: strings.TrimSpace(slackWebhookURL),
		adminNumber:     recipients.NormalizeNumber(adminNumber),
		messenger:       messenger,
	}
}

func (n *Notifier) Notify(ctx context.Context, title, message string) {
	text := fmt.Sprintf("*%s*\n%s", title, message)

	var wg sync.WaitGroup
	wg.Go(func() { n.sendSlack(ctx, text) })
	wg.Go(func() { n.sendWhatsApp(ctx, text) })
	wg.Wait()
}

func (n *Notifier) sendSlack(ctx context.Context, text string) {
	if n.slackWebhookURL == "" {
		return
	}

	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	agent := fiber.Post(n.slackWebhookURL).JSON(slackPayload{Text: text}).Timeout(timeout)
	code, body, errs := agent.String()
	if len(errs) > 0 {
		logrus.Warnf("Notify: Slack webhook failed: %v", errs[0])
		return
	}
	if code >= fiber.StatusBadRequest {
		logrus.WithField("status", code).Warnf("Notify: Slack webhook rejected message: %s", body)
	}
}

func (n *Notifier) sendWhatsApp(ctx context.Context, text string) {
	if n.adminNumber == "" || n.messenger == nil || !n.messenger.IsReady() {
		return
	}

	jid, err := n.messenger.ResolveNumber(ctx, n.adminNumber)
	if err != nil || jid == "" {
		logrus.WithField("number", n.adminNumber).Warnf("Notify: Admin number not reachable on WhatsApp: %v", err)
		return
	}
	if err := n.messenger.SendText(ctx, jid, text); err != nil {
		logrus.WithField("number", n.adminNumber).Warnf("Notify: WhatsApp notify failed: %v", err)
	}
}
