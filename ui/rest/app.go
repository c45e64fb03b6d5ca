package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skip2/go-qrcode"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
	pkgError "github.com/rakibhoossain/whatsapp-bulk-sender/pkg/error"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/utils"
)

const qrSize = 256

// QRSource exposes the pairing code of an unpaired session
type QRSource interface {
	LatestQR() (string, bool)
}

// App serves session state, the pairing QR and metrics
type App struct {
	Messenger domainCampaign.IMessenger
	QR        QRSource
}

func InitRestApp(app fiber.Router, messenger domainCampaign.IMessenger, qr QRSource, registry *prometheus.Registry) App {
	rest := App{Messenger: messenger, QR: qr}

	app.Get("/app/status", rest.Status)
	app.Get("/app/qr", rest.QRCode)

	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})

	return rest
}

func (h *App) Status(c *fiber.Ctx) error {
	state, ready := "DISCONNECTED", false
	if h.Messenger != nil {
		state = h.Messenger.State(c.UserContext())
		ready = h.Messenger.IsReady()
	}

	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Session state",
		Results: fiber.Map{"state": state, "ready": ready},
	})
}

func (h *App) QRCode(c *fiber.Ctx) error {
	if h.QR == nil {
		return pkgError.NotFoundError("no pairing in progress")
	}
	code, ok := h.QR.LatestQR()
	if !ok {
		return pkgError.NotFoundError("no pairing in progress")
	}

	png, err := qrcode.Encode(code, qrcode.Medium, qrSize)
	if err != nil {
		return pkgError.InternalServerError(err.Error())
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("png")
	return c.Send(png)
}

// ErrorHandler maps typed errors to the ResponseData envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return c.Status(generic.StatusCode()).JSON(utils.ResponseData{
			Status:  generic.StatusCode(),
			Code:    generic.ErrCode(),
			Message: generic.Error(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(utils.ResponseData{
			Status:  fiberErr.Code,
			Code:    "ERROR",
			Message: fiberErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(utils.ResponseData{
		Status:  fiber.StatusInternalServerError,
		Code:    "INTERNAL_SERVER_ERROR",
		Message: err.Error(),
	})
}
