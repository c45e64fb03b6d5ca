package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

// CampaignHandler exposes bulk campaign state and control as MCP tools
type CampaignHandler struct {
	campaignService domainCampaign.ICampaignUsecase
}

func InitMcpCampaign(campaignService domainCampaign.ICampaignUsecase) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

func (h *CampaignHandler) AddCampaignTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolProgress(), h.handleProgress)
	mcpServer.AddTool(h.toolReport(), h.handleReport)
	mcpServer.AddTool(h.toolControl(), h.handleControl)
	mcpServer.AddTool(h.toolListTemplates(), h.handleListTemplates)
}

func (h *CampaignHandler) toolProgress() mcp.Tool {
	return mcp.NewTool("bulk_progress",
		mcp.WithDescription("Get counters of the current or last bulk campaign run: total, sent, failed, done."),
	)
}

func (h *CampaignHandler) handleProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.campaignService.Progress())
}

func (h *CampaignHandler) toolReport() mcp.Tool {
	return mcp.NewTool("bulk_report",
		mcp.WithDescription("Get the delivery report of the current or last bulk campaign run, one row per processed number."),
	)
}

func (h *CampaignHandler) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.campaignService.Report())
}

func (h *CampaignHandler) toolControl() mcp.Tool {
	return mcp.NewTool("bulk_control",
		mcp.WithDescription("Pause, resume or stop the running bulk campaign."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Control signal to send"),
			mcp.Enum(string(domainCampaign.ControlPause), string(domainCampaign.ControlResume), string(domainCampaign.ControlStop)),
		),
	)
}

func (h *CampaignHandler) handleControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := h.campaignService.Control(ctx, domainCampaign.ControlAction(action))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(state)
}

func (h *CampaignHandler) toolListTemplates() mcp.Tool {
	return mcp.NewTool("bulk_list_templates",
		mcp.WithDescription("List saved bulk message templates."),
	)
}

func (h *CampaignHandler) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.campaignService.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return jsonResult(templates)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(body)), nil
}
