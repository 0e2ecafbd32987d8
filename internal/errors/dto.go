package errors

// ErrorResponse is the envelope every failed facility API call renders
// to; the error middleware builds it from the hint chain so internal
// messages never leak to the front desk.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the display message and any reportable details
// attached by the error builder.
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}
