package campaign

import (
	"context"
)

// IMessenger is the WhatsApp transport the campaign engine sends through
type IMessenger interface {
	// State reports the session state, e.g. CONNECTED, DISCONNECTED, UNPAIRED
	State(ctx context.Context) string
	IsReady() bool
	// ResolveNumber returns the JID registered for a digits-only number, or "" if none
	ResolveNumber(ctx context.Context, number string) (string, error)
	SendText(ctx context.Context, jid string, text string) error
	SendMedia(ctx context.Context, jid string, media *Media, caption string) error
}

// INotifier delivers best-effort operator notifications
type INotifier interface {
	Notify(ctx context.Context, title, message string)
}

// ICampaignRepository persists saved bulk templates
type ICampaignRepository interface {
	SaveTemplate(ctx context.Context, template *SavedTemplate) error
	GetTemplateByName(ctx context.Context, name string) (*SavedTemplate, error)
	ListTemplates(ctx context.Context) ([]*SavedTemplate, error)
	DeleteTemplate(ctx context.Context, name string) error

	InitializeSchema() error
}

// ICampaignUsecase defines the bulk campaign operations
type ICampaignUsecase interface {
	// Recipients
	PrepareRecipients(ctx context.Context, req PrepareRequest) (*PrepareResult, error)
	PreviewMessage(ctx context.Context, req PreviewRequest) PreviewResult
	CheckNumbers(ctx context.Context, recipients []Recipient) ([]CheckResult, error)

	// Run control
	StartCampaign(ctx context.Context, req StartCampaignRequest) error
	Control(ctx context.Context, action ControlAction) (ControlState, error)
	Progress() Progress
	Report() Report
	Subscribe() (<-chan Progress, func())
	Shutdown()

	// Saved templates
	SaveTemplate(ctx context.Context, req SaveTemplateRequest) (*SavedTemplate, error)
	ListTemplates(ctx context.Context) ([]*SavedTemplate, error)
	DeleteTemplate(ctx context.Context, name string) error
}
