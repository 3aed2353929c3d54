package serverutils

// WebResponse is the envelope used by every JSON endpoint.
type WebResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) WebResponse {
	return WebResponse{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) WebResponse {
	return WebResponse{
		Success: false,
		Code:    code,
		Message: message,
	}
}
