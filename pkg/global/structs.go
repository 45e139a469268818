package global

// ValidationError describes one rejected field of a request.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIResponse is the envelope of every JSON body the API writes.
type APIResponse struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(message string, errors []ValidationError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// FieldErrorResponse reports a failure caused by a single field.
func FieldErrorResponse(message, field, detail, code string) APIResponse {
	return ErrorResponse(message, []ValidationError{{Field: field, Message: detail, Code: code}})
}
