package usecase

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rakibhoossain/whatsapp-bulk-sender/config"
	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	pkgError "github.com/rakibhoossain/whatsapp-bulk-sender/pkg/error"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/metrics"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/recipients"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/templating"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/utils"
	"github.com/rakibhoossain/whatsapp-bulk-sender/validations"
)

// CampaignService implements ICampaignUsecase
type CampaignService struct {
	repo      domainCampaign.ICampaignRepository
	messenger domainCampaign.IMessenger
	notifier  domainCampaign.INotifier
	metrics   *metrics.Metrics

	precheckConcurrency int
	sendTimeout         time.Duration
	now                 func() time.Time

	// Run control
	runCtx       context.Context
	runCancel    context.CancelFunc
	runWg        sync.WaitGroup
	runMu        sync.Mutex
	session      *campaignSession
	lastReportID int64

	// Progress subscribers
	watchMu     sync.Mutex
	watchers    map[int]chan domainCampaign.Progress
	nextWatcher int
}

// NewCampaignService creates a new campaign service. notifier may be nil.
func NewCampaignService(repo domainCampaign.ICampaignRepository, messenger domainCampaign.IMessenger, notifier domainCampaign.INotifier, m *metrics.Metrics) *CampaignService {
	if m == nil {
		m = metrics.Global()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CampaignService{
		repo:                repo,
		messenger:           messenger,
		notifier:            notifier,
		metrics:             m,
		precheckConcurrency: config.CampaignPrecheckConcurrency,
		sendTimeout:         config.CampaignSendTimeout,
		now:                 time.Now,
		runCtx:              ctx,
		runCancel:           cancel,
		watchers:            make(map[int]chan domainCampaign.Progress),
	}
}

// ============================================================================
// Recipients
// ============================================================================

func (s *CampaignService) PrepareRecipients(ctx context.Context, req domainCampaign.PrepareRequest) (*domainCampaign.PrepareResult, error) {
	result, err := recipients.Parse(recipients.Input{
		Text:     req.Numbers,
		FileName: req.FileName,
		File:     req.File,
		Headers:  req.Headers,
	}, s.now())
	if err != nil {
		return nil, pkgError.ParseError(err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"file":       req.FileName,
		"total_rows": result.TotalRows,
		"valid":      result.ValidRecipients,
	}).Info("Campaign: Recipients prepared")

	return result, nil
}

func (s *CampaignService) PreviewMessage(_ context.Context, req domainCampaign.PreviewRequest) domainCampaign.PreviewResult {
	vars := req.Recipient.Vars

	missing := templating.Missing(req.Template, vars)
	for _, name := range templating.Missing(req.Caption, vars) {
		if !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}

	return domainCampaign.PreviewResult{
		Text:    templating.Fill(req.Template, vars),
		Caption: templating.Fill(req.Caption, vars),
		Missing: missing,
	}
}

func (s *CampaignService) CheckNumbers(ctx context.Context, list []domainCampaign.Recipient) ([]domainCampaign.CheckResult, error) {
	if s.messenger == nil || !s.messenger.IsReady() {
		return nil, pkgError.ServiceUnavailableError("Client not connected")
	}

	numbers := uniqueNumbers(list)
	jids, err := s.resolveNumbers(ctx, numbers)
	if err != nil {
		return nil, pkgError.InternalServerError("number lookup failed: " + err.Error())
	}

	results := make([]domainCampaign.CheckResult, 0, len(numbers))
	for _, number := range numbers {
		results = append(results, domainCampaign.CheckResult{
			Number:      number,
			JID:         jids[number],
			HasWhatsApp: jids[number] != "",
		})
	}
	return results, nil
}

// ============================================================================
// Run Control
// ============================================================================

func (s *CampaignService) StartCampaign(ctx context.Context, req domainCampaign.StartCampaignRequest) error {
	if s.messenger == nil || !s.messenger.IsReady() {
		return pkgError.ServiceUnavailableError("Client not connected")
	}
	if err := validations.ValidateStartCampaign(ctx, req); err != nil {
		return err
	}

	job := campaignJob{
		recipients: slices.Clone(req.Recipients),
		template:   req.Template,
		caption:    req.Caption,
		minDelay:   secondsToDuration(req.MinDelaySec),
		maxDelay:   secondsToDuration(req.MaxDelaySec),
	}
	if req.AssetPath != "" {
		media, err := utils.LoadMediaFromPath(req.AssetPath)
		if err != nil {
			return pkgError.InternalServerError(err.Error())
		}
		job.media = media
	}
	if req.RandomOrder {
		rand.Shuffle(len(job.recipients), func(i, j int) {
			job.recipients[i], job.recipients[j] = job.recipients[j], job.recipients[i]
		})
	}

	s.runMu.Lock()
	if s.runCtx.Err() != nil {
		s.runMu.Unlock()
		return pkgError.ServiceUnavailableError("campaign service is shutting down")
	}
	if s.session != nil && !s.session.done() {
		s.runMu.Unlock()
		return pkgError.ConflictError("a campaign is already running")
	}
	sess := newCampaignSession(s.nextReportID())
	s.session = sess
	s.runWg.Add(1)
	s.runMu.Unlock()

	s.publish(sess.snapshot())
	go s.runCampaign(s.runCtx, sess, job)

	logrus.WithFields(logrus.Fields{
		"report_id":    sess.snapshot().ReportID,
		"recipients":   len(job.recipients),
		"random_order": req.RandomOrder,
	}).Info("Campaign: Start accepted")

	return nil
}

func (s *CampaignService) Control(ctx context.Context, action domainCampaign.ControlAction) (domainCampaign.ControlState, error) {
	normalized := strings.ToLower(strings.TrimSpace(string(action)))
	if err := validations.ValidateControl(ctx, domainCampaign.ControlRequest{Action: normalized}); err != nil {
		return domainCampaign.ControlState{}, err
	}

	sess := s.currentSession()
	if sess == nil {
		return domainCampaign.ControlState{}, nil
	}

	state := sess.signal(domainCampaign.ControlAction(normalized))
	logrus.WithFields(logrus.Fields{
		"action":  normalized,
		"paused":  state.Paused,
		"stopped": state.Stopped,
	}).Info("Campaign: Control applied")

	return state, nil
}

func (s *CampaignService) Progress() domainCampaign.Progress {
	sess := s.currentSession()
	if sess == nil {
		return domainCampaign.Progress{}
	}
	return sess.snapshot()
}

func (s *CampaignService) Report() domainCampaign.Report {
	sess := s.currentSession()
	if sess == nil {
		return domainCampaign.Report{Rows: []domainCampaign.ReportRow{}}
	}
	return sess.report()
}

// ControlState returns the flags of the current run
func (s *CampaignService) ControlState() domainCampaign.ControlState {
	sess := s.currentSession()
	if sess == nil {
		return domainCampaign.ControlState{}
	}
	return sess.controlState()
}

// Subscribe returns a channel that always holds the latest progress snapshot.
// The returned func unsubscribes and closes the channel.
func (s *CampaignService) Subscribe() (<-chan domainCampaign.Progress, func()) {
	ch := make(chan domainCampaign.Progress, 1)
	ch <- s.Progress()

	s.watchMu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	s.watchMu.Unlock()

	return ch, func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if c, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(c)
		}
	}
}

// Shutdown stops any running campaign and waits for the runner to exit
func (s *CampaignService) Shutdown() {
	s.runMu.Lock()
	s.runCancel()
	s.runMu.Unlock()

	s.runWg.Wait()
	logrus.Info("Campaign: Service stopped")
}

func (s *CampaignService) publish(p domainCampaign.Progress) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, ch := range s.watchers {
		// keep only the newest snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p:
		default:
		}
	}
}

func (s *CampaignService) currentSession() *campaignSession {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.session
}

// nextReportID returns the start time in unix millis, bumped to stay strictly increasing.
// Caller holds runMu.
func (s *CampaignService) nextReportID() string {
	id := s.now().UnixMilli()
	if id <= s.lastReportID {
		id = s.lastReportID + 1
	}
	s.lastReportID = id
	return strconv.FormatInt(id, 10)
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// ============================================================================
// Saved Templates
// ============================================================================

func (s *CampaignService) SaveTemplate(ctx context.Context, req domainCampaign.SaveTemplateRequest) (*domainCampaign.SavedTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validations.ValidateSaveTemplate(ctx, req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetTemplateByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	template := &domainCampaign.SavedTemplate{
		ID:        uuid.New(),
		Name:      req.Name,
		Template:  req.Template,
		Caption:   req.Caption,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		template.ID = existing.ID
		template.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.SaveTemplate(ctx, template); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"name":    template.Name,
		"id":      template.ID,
		"updated": existing != nil,
	}).Info("Campaign: Template saved")

	return template, nil
}

func (s *CampaignService) ListTemplates(ctx context.Context) ([]*domainCampaign.SavedTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

func (s *CampaignService) DeleteTemplate(ctx context.Context, name string) error {
	existing, err := s.repo.GetTemplateByName(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		return pkgError.NotFoundError("template not found: " + name)
	}
	return s.repo.DeleteTemplate(ctx, name)
}
