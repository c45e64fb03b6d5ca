package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

// precheckRecipients resolves every recipient's JID before the first send.
// A number without an account keeps an empty JID; a failed batch leaves every JID empty.
func (s *CampaignService) precheckRecipients(ctx context.Context, recipients []domainCampaign.Recipient) []domainCampaign.ResolvedRecipient {
	resolved := make([]domainCampaign.ResolvedRecipient, len(recipients))
	for i, r := range recipients {
		resolved[i] = domainCampaign.ResolvedRecipient{Recipient: r}
	}
	if len(recipients) == 0 {
		return resolved
	}

	numbers := uniqueNumbers(recipients)
	jids, err := s.resolveNumbers(ctx, numbers)
	if err != nil {
		logrus.WithField("numbers", len(numbers)).Errorf("Campaign: Precheck failed, every recipient left unresolved: %v", err)
		return resolved
	}

	for i := range resolved {
		resolved[i].JID = jids[resolved[i].Number]
	}
	return resolved
}

// resolveNumbers looks numbers up with a bounded number of lookups in flight
func (s *CampaignService) resolveNumbers(ctx context.Context, numbers []string) (map[string]string, error) {
	jids := make([]string, len(numbers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupWorkers(s.precheckConcurrency, len(numbers)))

	for i, number := range numbers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("lookup of %s panicked: %v", number, r)
				}
			}()

			jid, lookupErr := s.messenger.ResolveNumber(gctx, number)
			switch {
			case lookupErr != nil:
				s.metrics.LookupsTotal.WithLabelValues("error").Inc()
				logrus.WithField("number", number).Debugf("Campaign: Lookup failed: %v", lookupErr)
			case jid == "":
				s.metrics.LookupsTotal.WithLabelValues("not_found").Inc()
			default:
				s.metrics.LookupsTotal.WithLabelValues("found").Inc()
				jids[i] = jid
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(numbers))
	for i, number := range numbers {
		out[number] = jids[i]
	}
	return out, nil
}

// maxLookupWorkers caps concurrent lookups no matter what the config asks for
const maxLookupWorkers = 8

func lookupWorkers(limit, n int) int {
	if limit < 1 {
		limit = 1
	}
	return max(1, min(limit, maxLookupWorkers, n))
}

func uniqueNumbers(recipients []domainCampaign.Recipient) []string {
	seen := make(map[string]struct{}, len(recipients))
	numbers := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if _, ok := seen[r.Number]; ok {
			continue
		}
		seen[r.Number] = struct{}{}
		numbers = append(numbers, r.Number)
	}
	return numbers
}
