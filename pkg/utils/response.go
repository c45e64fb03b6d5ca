package utils

// ResponseData is the envelope used by the /app endpoints
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// ErrorResponse is the body of a failed /bulk request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
