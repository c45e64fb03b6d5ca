package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rakibhoossain/whatsapp-bulk-sender/config"
	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/metrics"
	"github.com/rakibhoossain/whatsapp-bulk-sender/ui/rest"
	"github.com/rakibhoossain/whatsapp-bulk-sender/ui/websocket"
	"github.com/rakibhoossain/whatsapp-bulk-sender/views"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the bulk campaign REST API",
	Long:  `Serve the HTTP API and report pages used to prepare, run and monitor bulk campaigns.`,
	RunE:  restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	app := fiber.New(fiber.Config{
		Views:                 views.NewEngine(),
		ErrorHandler:          rest.ErrorHandler,
		BodyLimit:             config.CampaignMaxUploadSize + 1024*1024,
		DisableStartupMessage: !config.AppDebug,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	if config.AppDebug {
		app.Use(logger.New())
	}

	rest.InitRestApp(app, a.waClient, a.waClient, metrics.Global().Registry())
	rest.InitRestCampaign(app, a.campaignService, a.waClient)
	websocket.RegisterRoutes(app, a.campaignService)

	go func() {
		<-ctx.Done()
		logrus.Info("Campaign: Shutting down REST server")
		if err := app.ShutdownWithContext(context.Background()); err != nil {
			logrus.Errorf("REST shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", config.AppHost, config.AppPort)
	logrus.Infof("REST server listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("rest server: %w", err)
	}
	return nil
}
