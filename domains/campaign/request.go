package campaign

// PrepareRequest carries the raw recipient input of the prepare step
type PrepareRequest struct {
	Numbers  string `json:"numbers" form:"numbers"`
	Headers  string `json:"headers" form:"headers"`
	FileName string `json:"-"`
	File     []byte `json:"-"`
}

// StartCampaignRequest is the decoded start payload
type StartCampaignRequest struct {
	Recipients  []Recipient `json:"recipients"`
	Template    string      `json:"template"`
	MinDelaySec float64     `json:"minDelaySec"`
	MaxDelaySec float64     `json:"maxDelaySec"`
	RandomOrder bool        `json:"randomOrder"`
	Caption     string      `json:"caption"`

	// AssetPath points to an uploaded attachment stored on disk
	AssetPath string `json:"-"`
}

// ControlRequest is a pause/resume/stop signal
type ControlRequest struct {
	Action string `json:"action" form:"action"`
}

// SaveTemplateRequest creates or replaces a saved template by name
type SaveTemplateRequest struct {
	Name     string `json:"name" form:"name"`
	Template string `json:"template" form:"template"`
	Caption  string `json:"caption" form:"caption"`
}

// PreviewRequest renders template and caption for one recipient
type PreviewRequest struct {
	Template  string    `json:"template"`
	Caption   string    `json:"caption"`
	Recipient Recipient `json:"recipient"`
}
