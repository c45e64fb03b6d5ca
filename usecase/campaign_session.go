package usecase

import (
	"slices"
	"sync"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

// campaignSession is the state of one campaign run: control flags, counters and report rows.
// Only the runner goroutine records outcomes; other callers read snapshots or send signals.
type campaignSession struct {
	mu       sync.Mutex
	resume   *sync.Cond
	control  domainCampaign.ControlState
	progress domainCampaign.Progress
	rows     []domainCampaign.ReportRow

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newCampaignSession(reportID string) *campaignSession {
	s := &campaignSession{
		progress: domainCampaign.Progress{ReportID: reportID},
		rows:     []domainCampaign.ReportRow{},
		stopCh:   make(chan struct{}),
	}
	s.resume = sync.NewCond(&s.mu)
	return s
}

func (s *campaignSession) signal(action domainCampaign.ControlAction) domainCampaign.ControlState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case domainCampaign.ControlPause:
		s.control.Paused = true
	case domainCampaign.ControlResume:
		s.control.Paused = false
	case domainCampaign.ControlStop:
		s.control.Stopped = true
		s.stopOnce.Do(func() { close(s.stopCh) })
	}
	s.resume.Broadcast()
	return s.control
}

// awaitRunnable blocks while the session is paused and reports whether it was stopped
func (s *campaignSession) awaitRunnable() (stopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.control.Paused && !s.control.Stopped {
		s.resume.Wait()
	}
	return s.control.Stopped
}

func (s *campaignSession) stopped() <-chan struct{} {
	return s.stopCh
}

func (s *campaignSession) begin(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Total = total
}

func (s *campaignSession) record(number string, outcome domainCampaign.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if outcome == domainCampaign.OutcomeSent {
		s.progress.Sent++
	} else {
		s.progress.Failed++
	}
	s.rows = append(s.rows, domainCampaign.ReportRow{
		ID:     len(s.rows) + 1,
		Number: number,
		Status: outcome.Status(),
	})
}

func (s *campaignSession) finish(stopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Done = true
	s.progress.Stopped = stopped
}

func (s *campaignSession) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Done
}

func (s *campaignSession) snapshot() domainCampaign.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *campaignSession) controlState() domainCampaign.ControlState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.control
}

func (s *campaignSession) report() domainCampaign.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainCampaign.Report{
		ID:   s.progress.ReportID,
		Rows: slices.Clone(s.rows),
	}
}
