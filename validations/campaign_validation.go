package validations

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	pkgError "github.com/rakibhoossain/whatsapp-bulk-sender/pkg/error"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

func ValidateStartCampaign(ctx context.Context, request domainCampaign.StartCampaignRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Recipients, validation.Required.Error("no recipients, prepare the list first")),
		validation.Field(&request.MinDelaySec, validation.Min(0.0)),
		validation.Field(&request.MaxDelaySec, validation.Min(0.0)),
		validation.Field(&request.Template, validation.When(request.AssetPath == "",
			validation.Required.Error("template is required when no attachment is sent"))),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	for _, r := range request.Recipients {
		if err := validation.Validate(r.Number, validation.Required, validation.Match(digitsOnly)); err != nil {
			return pkgError.ValidationError(fmt.Sprintf("recipient row %d: number %v", r.RowIndex, err))
		}
	}
	return nil
}

func ValidateControl(ctx context.Context, request domainCampaign.ControlRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Action, validation.Required, validation.In(
			string(domainCampaign.ControlPause),
			string(domainCampaign.ControlResume),
			string(domainCampaign.ControlStop),
		).Error("must be one of pause, resume, stop")),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateSaveTemplate(ctx context.Context, request domainCampaign.SaveTemplateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required, validation.Length(1, 100)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
