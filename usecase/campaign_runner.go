package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/templating"
)

const notifyTimeout = 15 * time.Second

// campaignJob is the immutable input of one run
type campaignJob struct {
	recipients []domainCampaign.Recipient
	template   string
	caption    string
	media      *domainCampaign.Media
	minDelay   time.Duration
	maxDelay   time.Duration
}

// ============================================================================
// Run Loop
// ============================================================================

func (s *CampaignService) runCampaign(ctx context.Context, sess *campaignSession, job campaignJob) {
	defer s.runWg.Done()

	started := time.Now()
	s.metrics.CampaignRunning.Set(1)
	defer s.metrics.CampaignRunning.Set(0)

	// service shutdown behaves like a stop request
	stopOnShutdown := context.AfterFunc(ctx, func() {
		sess.signal(domainCampaign.ControlStop)
	})
	defer stopOnShutdown()

	resolved := s.precheckRecipients(ctx, job.recipients)
	sess.begin(len(resolved))
	s.publish(sess.snapshot())

	logrus.WithFields(logrus.Fields{
		"report_id":  sess.snapshot().ReportID,
		"recipients": len(resolved),
		"min_delay":  job.minDelay,
		"max_delay":  job.maxDelay,
		"has_media":  job.media != nil,
	}).Info("Campaign: Run started")

	stopped := false
	for _, recipient := range resolved {
		if sess.awaitRunnable() {
			stopped = true
			break
		}

		sendStarted := time.Now()
		outcome := s.deliver(ctx, job, recipient)
		s.metrics.SendDuration.Observe(time.Since(sendStarted).Seconds())
		s.metrics.RecipientsTotal.WithLabelValues(outcome.String()).Inc()

		sess.record(recipient.Number, outcome)
		s.publish(sess.snapshot())

		logrus.WithFields(logrus.Fields{
			"row":    recipient.RowIndex,
			"number": recipient.Number,
			"status": outcome.String(),
		}).Debug("Campaign: Recipient processed")

		delay := s.randomDelay(job.minDelay, job.maxDelay)
		select {
		case <-sess.stopped():
		case <-time.After(delay):
		}
	}

	sess.finish(stopped)
	final := sess.snapshot()
	s.publish(final)

	result := "completed"
	if stopped {
		result = "stopped"
	}
	s.metrics.CampaignsTotal.WithLabelValues(result).Inc()
	s.metrics.CampaignDuration.Observe(time.Since(started).Seconds())

	logrus.WithFields(logrus.Fields{
		"report_id": final.ReportID,
		"total":     final.Total,
		"sent":      final.Sent,
		"failed":    final.Failed,
		"result":    result,
		"duration":  time.Since(started).Round(time.Second),
	}).Info("Campaign: Run finished")

	s.notifyFinished(final, result)
}

// deliver sends the attachment (if any) and then the text body to one recipient
func (s *CampaignService) deliver(ctx context.Context, job campaignJob, recipient domainCampaign.ResolvedRecipient) domainCampaign.Outcome {
	if recipient.JID == "" {
		return domainCampaign.OutcomeNoIdentity
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	text := templating.Fill(job.template, recipient.Vars)

	if job.media != nil {
		caption := templating.Fill(job.caption, recipient.Vars)
		if err := s.messenger.SendMedia(sendCtx, recipient.JID, job.media, caption); err != nil {
			logrus.WithFields(logrus.Fields{
				"number": recipient.Number,
				"file":   job.media.FileName,
			}).Warnf("Campaign: Failed to send attachment: %v", err)
			return domainCampaign.OutcomeFailed
		}
	}

	if text != "" {
		if err := s.messenger.SendText(sendCtx, recipient.JID, text); err != nil {
			logrus.WithField("number", recipient.Number).Warnf("Campaign: Failed to send message: %v", err)
			return domainCampaign.OutcomeFailed
		}
	}

	return domainCampaign.OutcomeSent
}

func (s *CampaignService) notifyFinished(final domainCampaign.Progress, result string) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	s.notifier.Notify(ctx,
		fmt.Sprintf("Bulk campaign %s", result),
		fmt.Sprintf("Report %s: %d sent, %d failed, %d total", final.ReportID, final.Sent, final.Failed, final.Total),
	)
}

// randomDelay picks a pause in [min, max) at millisecond resolution
func (s *CampaignService) randomDelay(minDelay, maxDelay time.Duration) time.Duration {
	if minDelay >= maxDelay {
		return minDelay
	}
	diff := (maxDelay - minDelay).Milliseconds()
	if diff <= 0 {
		return minDelay
	}
	n, err := rand.Int(rand.Reader, big.NewInt(diff))
	if err != nil {
		return minDelay
	}
	return minDelay + time.Duration(n.Int64())*time.Millisecond
}
