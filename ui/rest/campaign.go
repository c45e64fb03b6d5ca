package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rakibhoossain/whatsapp-bulk-sender/config"
	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	pkgError "github.com/rakibhoossain/whatsapp-bulk-sender/pkg/error"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/utils"
)

// Campaign handles the bulk campaign REST endpoints
type Campaign struct {
	Service   domainCampaign.ICampaignUsecase
	Messenger domainCampaign.IMessenger
}

// InitRestCampaign registers all bulk routes
func InitRestCampaign(app fiber.Router, service domainCampaign.ICampaignUsecase, messenger domainCampaign.IMessenger) Campaign {
	rest := Campaign{Service: service, Messenger: messenger}

	bulk := app.Group("/bulk")

	// Recipients
	bulk.Post("/prepare", rest.Prepare)
	bulk.Post("/preview", rest.Preview)

	// Run
	bulk.Post("/start", rest.Start)
	bulk.Get("/progress", rest.Progress)
	bulk.Post("/control", rest.Control)

	// Report
	bulk.Get("/report", rest.Report)
	bulk.Get("/report/download", rest.DownloadReport)

	// Saved templates
	bulk.Post("/templates/save", rest.SaveTemplate)
	bulk.Get("/templates/list", rest.ListTemplates)
	bulk.Delete("/templates/:name", rest.DeleteTemplate)

	return rest
}

// bulkError writes err as the {error} body the bulk UI expects
func bulkError(c *fiber.Ctx, err error) error {
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return c.Status(generic.StatusCode()).JSON(utils.ErrorResponse{Error: generic.Error(), Code: generic.ErrCode()})
	}
	logrus.WithField("path", c.Path()).Errorf("Campaign: Unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{Error: err.Error(), Code: "INTERNAL_SERVER_ERROR"})
}

func (h *Campaign) isConnected() bool {
	return h.Messenger != nil && h.Messenger.IsReady()
}

// ============================================================================
// Recipients
// ============================================================================

func (h *Campaign) Prepare(c *fiber.Ctx) error {
	req := domainCampaign.PrepareRequest{
		Numbers: c.FormValue("numbers"),
		Headers: c.FormValue("headers"),
	}

	if file, err := c.FormFile("file"); err == nil {
		if file.Size > int64(config.CampaignMaxUploadSize) {
			return bulkError(c, pkgError.ParseError(fmt.Sprintf("file larger than %s", humanize.Bytes(uint64(config.CampaignMaxUploadSize)))))
		}
		f, err := file.Open()
		if err != nil {
			return bulkError(c, pkgError.ParseError(err.Error()))
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return bulkError(c, pkgError.ParseError(err.Error()))
		}
		req.FileName = file.Filename
		req.File = data
	}

	result, err := h.Service.PrepareRecipients(c.UserContext(), req)
	if err != nil {
		return bulkError(c, err)
	}
	return c.JSON(result)
}

func (h *Campaign) Preview(c *fiber.Ctx) error {
	var req domainCampaign.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return bulkError(c, pkgError.ValidationError("Invalid payload"))
	}
	return c.JSON(h.Service.PreviewMessage(c.UserContext(), req))
}

// ============================================================================
// Run
// ============================================================================

func (h *Campaign) Start(c *fiber.Ctx) error {
	if !h.isConnected() {
		return bulkError(c, pkgError.ServiceUnavailableError("Client not connected"))
	}

	req := domainCampaign.StartCampaignRequest{
		MinDelaySec: config.CampaignMinDelaySec,
		MaxDelaySec: config.CampaignMaxDelaySec,
	}

	payload := []byte(c.FormValue("payload"))
	if c.Is("json") {
		payload = c.Body()
	}
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return bulkError(c, pkgError.ValidationError("Invalid payload"))
	}

	if asset, err := c.FormFile("asset"); err == nil {
		if asset.Size > int64(config.CampaignMaxUploadSize) {
			return bulkError(c, pkgError.ValidationError(fmt.Sprintf("attachment larger than %s", humanize.Bytes(uint64(config.CampaignMaxUploadSize)))))
		}
		if err := utils.CreateFolder(config.PathSendItems); err != nil {
			return bulkError(c, pkgError.InternalServerError(err.Error()))
		}
		path := filepath.Join(config.PathSendItems, utils.UploadFileName(asset.Filename, time.Now()))
		if err := c.SaveFile(asset, path); err != nil {
			return bulkError(c, pkgError.InternalServerError(fmt.Sprintf("store attachment: %v", err)))
		}
		req.AssetPath = path
	}

	if err := h.Service.StartCampaign(c.UserContext(), req); err != nil {
		if req.AssetPath != "" {
			if rmErr := os.Remove(req.AssetPath); rmErr != nil {
				logrus.Warnf("Campaign: Failed to remove rejected upload %s: %v", req.AssetPath, rmErr)
			}
		}
		return bulkError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Campaign) Progress(c *fiber.Ctx) error {
	return c.JSON(h.Service.Progress())
}

func (h *Campaign) Control(c *fiber.Ctx) error {
	var req domainCampaign.ControlRequest
	if err := c.BodyParser(&req); err != nil {
		req.Action = c.FormValue("action")
	}
	if req.Action == "" {
		req.Action = c.Query("action")
	}

	state, err := h.Service.Control(c.UserContext(), domainCampaign.ControlAction(req.Action))
	if err != nil {
		return bulkError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "state": state})
}

// ============================================================================
// Report
// ============================================================================

func (h *Campaign) Report(c *fiber.Ctx) error {
	report := h.Service.Report()
	if c.Query("view") != "1" {
		return c.JSON(report)
	}

	sent, failed := 0, 0
	for _, row := range report.Rows {
		if row.Status == domainCampaign.ReportStatusSent {
			sent++
		} else {
			failed++
		}
	}

	started := ""
	if millis, err := strconv.ParseInt(report.ID, 10, 64); err == nil {
		started = humanize.Time(time.UnixMilli(millis))
	}

	return c.Render("report", fiber.Map{
		"ReportID": report.ID,
		"Started":  started,
		"Rows":     report.Rows,
		"Sent":     sent,
		"Failed":   failed,
	})
}

func (h *Campaign) DownloadReport(c *fiber.Ctx) error {
	report := h.Service.Report()

	id := report.ID
	if id == "" {
		id = "latest"
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return bulkError(c, pkgError.InternalServerError(err.Error()))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="campaign-%s.json"`, id))
	return c.Send(body)
}

// ============================================================================
// Saved Templates
// ============================================================================

func (h *Campaign) SaveTemplate(c *fiber.Ctx) error {
	var req domainCampaign.SaveTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return bulkError(c, pkgError.ValidationError("Invalid payload"))
	}

	template, err := h.Service.SaveTemplate(c.UserContext(), req)
	if err != nil {
		return bulkError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "template": template})
}

func (h *Campaign) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.Service.ListTemplates(c.UserContext())
	if err != nil {
		return bulkError(c, err)
	}
	return c.JSON(fiber.Map{"templates": templates})
}

func (h *Campaign) DeleteTemplate(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return bulkError(c, pkgError.ValidationError("invalid template name"))
	}

	if err := h.Service.DeleteTemplate(c.UserContext(), name); err != nil {
		return bulkError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
