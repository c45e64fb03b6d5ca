package validations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	pkgError "github.com/rakibhoossain/whatsapp-bulk-sender/pkg/error"
)

func TestValidateStartCampaign(t *testing.T) {
	ctx := context.Background()
	recipients := []domainCampaign.Recipient{{Number: "15550000001", RowIndex: 1}}

	tests := []struct {
		name    string
		request domainCampaign.StartCampaignRequest
		wantErr bool
	}{
		{"Valid", domainCampaign.StartCampaignRequest{Recipients: recipients, Template: "Hi", MinDelaySec: 2, MaxDelaySec: 5}, false},
		{"MediaWithoutTemplate", domainCampaign.StartCampaignRequest{Recipients: recipients, AssetPath: "/tmp/a.png"}, false},
		{"NoRecipients", domainCampaign.StartCampaignRequest{Template: "Hi"}, true},
		{"NoTemplateNoMedia", domainCampaign.StartCampaignRequest{Recipients: recipients}, true},
		{"NegativeDelay", domainCampaign.StartCampaignRequest{Recipients: recipients, Template: "Hi", MinDelaySec: -1}, true},
		{"NonDigitNumber", domainCampaign.StartCampaignRequest{
			Recipients: []domainCampaign.Recipient{{Number: "+1555", RowIndex: 4}},
			Template:   "Hi",
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStartCampaign(ctx, tt.request)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.IsType(t, pkgError.ValidationError(""), err)
		})
	}
}

func TestValidateControl(t *testing.T) {
	ctx := context.Background()

	for _, action := range []string{"pause", "resume", "stop"} {
		assert.NoError(t, ValidateControl(ctx, domainCampaign.ControlRequest{Action: action}), action)
	}
	assert.Error(t, ValidateControl(ctx, domainCampaign.ControlRequest{Action: "restart"}))
	assert.Error(t, ValidateControl(ctx, domainCampaign.ControlRequest{}))
}

func TestValidateSaveTemplate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateSaveTemplate(ctx, domainCampaign.SaveTemplateRequest{Name: "Welcome"}))
	assert.Error(t, ValidateSaveTemplate(ctx, domainCampaign.SaveTemplateRequest{Template: "Hi"}))
}
