package config

import "time"

var (
	AppVersion = "v1.0.0"
	AppPort    = "3000"
	AppHost    = "0.0.0.0"
	AppDebug   = false
	AppOs      = "BulkSender"

	McpPort = "8080"
	McpHost = "localhost"

	PathStorages  = "storages"
	PathSendItems = "storages/uploads"

	// whatsmeow session store; "postgres:" prefix switches the dialect
	DBURI = "file:storages/whatsapp.db?_foreign_keys=on"
	// saved bulk templates
	AppDBURI = "file:storages/app.db?_foreign_keys=on"

	WhatsappLogLevel = "ERROR"
	// 0 disables the limiter on number lookups
	WhatsappLookupPerSecond = 0.0

	CampaignMinDelaySec         = 2.0
	CampaignMaxDelaySec         = 5.0
	CampaignPrecheckConcurrency = 8
	CampaignSendTimeout         = 60 * time.Second
	CampaignMaxUploadSize       = 10 * 1024 * 1024

	NotifyEnabled         = false
	NotifySlackWebhookURL = ""
	NotifyAdminWhatsApp   = ""
)
