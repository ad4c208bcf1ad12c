package api

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`          // описание ошибки
	Code  string `json:"code,omitempty"` // машиночитаемая причина
}

// Error codes returned by the sync and admin endpoints
const (
	CodeConflict         = "conflict"
	CodeValidationFailed = "validation_failed"
	CodeStorageFailure   = "storage_failure"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)
