package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibhoossain/whatsapp-bulk-sender/config"
)

func TestFromEnv(t *testing.T) {
	original := config.CampaignMinDelaySec
	t.Cleanup(func() {
		config.CampaignMinDelaySec = original
		rootCmd.PersistentFlags().Lookup("min-delay").Changed = false
	})

	t.Setenv("CAMPAIGN_MIN_DELAY", "7.5")
	viper.AutomaticEnv()

	fromEnv("campaign_min_delay", "min-delay", &config.CampaignMinDelaySec, viper.GetFloat64)
	assert.Equal(t, 7.5, config.CampaignMinDelaySec)

	require.NoError(t, rootCmd.PersistentFlags().Set("min-delay", "3"))
	fromEnv("campaign_min_delay", "min-delay", &config.CampaignMinDelaySec, viper.GetFloat64)
	assert.Equal(t, 3.0, config.CampaignMinDelaySec)
}

func TestFromEnv_Unset(t *testing.T) {
	original := config.NotifyAdminWhatsApp
	t.Cleanup(func() { config.NotifyAdminWhatsApp = original })

	config.NotifyAdminWhatsApp = "8801711000000"
	fromEnv("notify_admin_whatsapp_missing", "notify-admin", &config.NotifyAdminWhatsApp, viper.GetString)
	assert.Equal(t, "8801711000000", config.NotifyAdminWhatsApp)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["rest"])
	assert.True(t, names["mcp"])
	assert.True(t, names["check"])
}
