package recipients

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

// MaxVarColumns is how many columns after the number get VAR1..VARn aliases
const MaxVarColumns = 10

var (
	textSeparator = regexp.MustCompile(`,|\t`)
	lineBreak     = regexp.MustCompile(`\r?\n`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// Input is the raw data submitted by the prepare form
type Input struct {
	Text     string
	FileName string
	File     []byte
	Headers  string
}

// Parse turns free text and an optional uploaded file into recipients.
// File decoding errors abort the whole parse.
func Parse(in Input, now time.Time) (*domainCampaign.PrepareResult, error) {
	var rows [][]string

	if text := strings.TrimSpace(in.Text); text != "" {
		rows = append(rows, ParseText(text)...)
	}

	if len(in.File) > 0 {
		fileRows, err := ParseFile(in.FileName, in.File)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}

	return Build(rows, ParseHeaders(in.Headers), now), nil
}

// ParseFile dispatches on the file extension. Unknown extensions yield no rows.
func ParseFile(name string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ParseDelimited(string(data)), nil
	case ".xlsx", ".xls":
		return ParseSpreadsheet(data)
	default:
		return nil, nil
	}
}

// ParseText splits manually entered rows on tabs or commas, dropping empty tokens
func ParseText(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		var cols []string
		for _, token := range textSeparator.Split(line, -1) {
			if token = strings.TrimSpace(token); token != "" {
				cols = append(cols, token)
			}
		}
		if len(cols) > 0 {
			rows = append(rows, cols)
		}
	}
	return rows
}

// ParseDelimited is a quote-aware comma splitter applied to every non-blank line.
// A doubled quote inside a quoted field is a literal quote.
func ParseDelimited(text string) [][]string {
	var rows [][]string
	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitQuoted(line))
	}
	return rows
}

func splitQuoted(line string) []string {
	var (
		cols     []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cols = append(cols, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(cols, strings.TrimSpace(current.String()))
}

// ParseSpreadsheet reads every row of the first sheet; blank cells become ""
func ParseSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// ParseHeaders splits the comma separated variable header list
func ParseHeaders(raw string) []string {
	var headers []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// Build converts raw rows into recipients. Rows without a first column are dropped
// before counting; rows whose number has no digits are dropped afterwards.
func Build(rows [][]string, headers []string, now time.Time) *domainCampaign.PrepareResult {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			kept = append(kept, row)
		}
	}

	result := &domainCampaign.PrepareResult{
		Recipients: []domainCampaign.Recipient{},
		TotalRows:  len(kept),
	}
	for i, cols := range kept {
		number := NormalizeNumber(cols[0])
		if number == "" {
			continue
		}
		result.Recipients = append(result.Recipients, domainCampaign.Recipient{
			Number:   number,
			Vars:     BuildVars(headers, cols, now),
			RowIndex: i + 1,
		})
	}
	result.ValidRecipients = len(result.Recipients)
	return result
}

// NormalizeNumber strips every non-digit character
func NormalizeNumber(raw string) string {
	return nonDigit.ReplaceAllString(raw, "")
}

// BuildVars maps headers to columns 1..n, adds VARn/varn aliases and the system variables
func BuildVars(headers []string, cols []string, now time.Time) map[string]string {
	column := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}

	vars := make(map[string]string, len(headers)+2*MaxVarColumns+3)
	for i, h := range headers {
		vars[h] = column(i + 1)
	}
	for i := 1; i <= MaxVarColumns; i++ {
		value := column(i)
		vars["VAR"+strconv.Itoa(i)] = value
		vars["var"+strconv.Itoa(i)] = value
	}

	vars["date"] = now.Format("1/2/2006")
	vars["time"] = now.Format("3:04:05 PM")
	vars["random"] = strconv.Itoa(rand.IntN(1_000_000))
	return vars
}
