package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rakibhoossain/whatsapp-bulk-sender/config"
	mcp "github.com/rakibhoossain/whatsapp-bulk-sender/ui/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve bulk campaign tools over MCP (SSE)",
	Long:  `Expose progress, report, control and saved templates of bulk campaigns as MCP tools for AI agents.`,
	RunE:  mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	mcpSrv := server.NewMCPServer(
		"WhatsApp Bulk Sender",
		config.AppVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	mcp.InitMcpCampaign(a.campaignService).AddCampaignTools(mcpSrv)

	addr := fmt.Sprintf("%s:%s", config.McpHost, config.McpPort)
	sseServer := server.NewSSEServer(mcpSrv,
		server.WithBaseURL(fmt.Sprintf("http://%s", addr)),
		server.WithKeepAlive(true),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("MCP shutdown error: %v", err)
		}
	}()

	logrus.Infof("MCP SSE server listening on %s (SSE: /sse, messages: /message)", addr)
	if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
