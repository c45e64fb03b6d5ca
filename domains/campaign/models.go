package campaign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ReportStatus is the per-recipient status written to a delivery report
type ReportStatus string

const (
	ReportStatusSent       ReportStatus = "sent"
	ReportStatusFailed     ReportStatus = "failed"
	ReportStatusNoWhatsApp ReportStatus = "no-whatsapp"
)

// Outcome is the result of processing one recipient
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeFailed
	OutcomeNoIdentity
)

// Status maps an outcome to the status recorded in the report
func (o Outcome) Status() ReportStatus {
	switch o {
	case OutcomeSent:
		return ReportStatusSent
	case OutcomeNoIdentity:
		return ReportStatusNoWhatsApp
	default:
		return ReportStatusFailed
	}
}

func (o Outcome) String() string {
	return string(o.Status())
}

// ControlAction is a signal sent to a running campaign
type ControlAction string

const (
	ControlPause  ControlAction = "pause"
	ControlResume ControlAction = "resume"
	ControlStop   ControlAction = "stop"
)

// Recipient is one phone number plus its template variables, built from one input row
type Recipient struct {
	Number   string `json:"number"`
	Vars     Vars   `json:"vars"`
	RowIndex int    `json:"rowIndex"`
}

// Vars are the template variables of one recipient.
// Decoding drops null entries and stringifies numbers and booleans.
type Vars map[string]string

func (v *Vars) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(Vars, len(raw))
	for name, value := range raw {
		switch val := value.(type) {
		case nil:
			continue
		case string:
			out[name] = val
		case json.Number:
			out[name] = val.String()
		case bool:
			out[name] = strconv.FormatBool(val)
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("variable %s: %w", name, err)
			}
			out[name] = string(encoded)
		}
	}
	*v = out
	return nil
}

// ResolvedRecipient is a recipient annotated with its WhatsApp JID.
// JID is empty when the number has no reachable account.
type ResolvedRecipient struct {
	Recipient
	JID string `json:"jid"`
}

// ControlState holds the flags the runner checks between recipients
type ControlState struct {
	Paused  bool `json:"paused"`
	Stopped bool `json:"stopped"`
}

// Progress is a point-in-time copy of the current campaign counters
type Progress struct {
	Total    int    `json:"total"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
	Done     bool   `json:"done"`
	Stopped  bool   `json:"stopped"`
	ReportID string `json:"reportId"`
}

// ReportRow is one processed recipient
type ReportRow struct {
	ID     int          `json:"id"`
	Number string       `json:"number"`
	Status ReportStatus `json:"status"`
}

// Report is the ordered outcome log of a campaign run
type Report struct {
	ID   string      `json:"id"`
	Rows []ReportRow `json:"rows"`
}

// Media is an attachment loaded from disk, ready to be uploaded by the transport
type Media struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// SavedTemplate is a named message template with an optional attachment caption
type SavedTemplate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrepareResult is the parsed recipient list returned to the UI
type PrepareResult struct {
	Recipients      []Recipient `json:"recipients"`
	TotalRows       int         `json:"totalRows"`
	ValidRecipients int         `json:"validRecipients"`
}

// PreviewResult is a template rendered against a single recipient
type PreviewResult struct {
	Text    string   `json:"text"`
	Caption string   `json:"caption"`
	Missing []string `json:"missing"`
}

// CheckResult is the WhatsApp lookup outcome for one number
type CheckResult struct {
	Number      string `json:"number"`
	JID         string `json:"jid,omitempty"`
	HasWhatsApp bool   `json:"hasWhatsApp"`
}
