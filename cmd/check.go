package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

var (
	checkFile    string
	checkNumbers string
	checkWait    time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check which numbers of a recipient list have WhatsApp",
	Example: `  whatsapp-bulk check --file contacts.xlsx
  whatsapp-bulk check --numbers "8801711000000, 8801811000000"`,
	RunE: checkRecipients,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "recipient list (.csv, .txt, .xlsx)")
	checkCmd.Flags().StringVarP(&checkNumbers, "numbers", "n", "", "comma or newline separated numbers")
	checkCmd.Flags().DurationVarP(&checkWait, "wait", "w", 30*time.Second, "how long to wait for the WhatsApp session")
	rootCmd.AddCommand(checkCmd)
}

func checkRecipients(cmd *cobra.Command, _ []string) error {
	if checkFile == "" && checkNumbers == "" {
		return fmt.Errorf("either --file or --numbers is required")
	}

	req := domainCampaign.PrepareRequest{Numbers: checkNumbers}
	if checkFile != "" {
		data, err := os.ReadFile(checkFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", checkFile, err)
		}
		req.File = data
		req.FileName = filepath.Base(checkFile)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	prepared, err := a.campaignService.PrepareRecipients(ctx, req)
	if err != nil {
		return err
	}
	if len(prepared.Recipients) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no valid numbers found")
		return nil
	}

	if err := waitReady(ctx, a.waClient, checkWait); err != nil {
		return err
	}

	results, err := a.campaignService.CheckNumbers(ctx, prepared.Recipients)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tWHATSAPP\tJID")
	found := 0
	for _, r := range results {
		status := "no"
		if r.HasWhatsApp {
			status = "yes"
			found++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Number, status, r.JID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d numbers have WhatsApp\n", found, len(results))
	return nil
}
