package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

type fakeCampaigns struct {
	domainCampaign.ICampaignUsecase
	progress   domainCampaign.Progress
	lastAction domainCampaign.ControlAction
}

func (f *fakeCampaigns) Progress() domainCampaign.Progress { return f.progress }

func (f *fakeCampaigns) Report() domainCampaign.Report {
	return domainCampaign.Report{ID: "42", Rows: []domainCampaign.ReportRow{{ID: 1, Number: "111", Status: domainCampaign.ReportStatusSent}}}
}

func (f *fakeCampaigns) Control(_ context.Context, action domainCampaign.ControlAction) (domainCampaign.ControlState, error) {
	f.lastAction = action
	if action != domainCampaign.ControlPause {
		return domainCampaign.ControlState{}, errors.New("unsupported")
	}
	return domainCampaign.ControlState{Paused: true}, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestCampaignHandler_Progress(t *testing.T) {
	h := InitMcpCampaign(&fakeCampaigns{progress: domainCampaign.Progress{Total: 3, Sent: 2, ReportID: "42"}})

	result, err := h.handleProgress(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var progress domainCampaign.Progress
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &progress))
	assert.Equal(t, 2, progress.Sent)
	assert.Equal(t, "42", progress.ReportID)
}

func TestCampaignHandler_Report(t *testing.T) {
	h := InitMcpCampaign(&fakeCampaigns{})

	result, err := h.handleReport(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var report domainCampaign.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	require.Len(t, report.Rows, 1)
	assert.Equal(t, domainCampaign.ReportStatusSent, report.Rows[0].Status)
}

func TestCampaignHandler_Control(t *testing.T) {
	service := &fakeCampaigns{}
	h := InitMcpCampaign(service)

	result, err := h.handleControl(context.Background(), callRequest(map[string]any{"action": "pause"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"paused": true`)
	assert.Equal(t, domainCampaign.ControlPause, service.lastAction)

	result, err = h.handleControl(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.handleControl(context.Background(), callRequest(map[string]any{"action": "stop"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
