package ierr

// Error envelope codes. The set is closed; clients switch on these values.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED_ERROR"
	CodeForbidden    = "FORBIDDEN_ERROR"
	CodeNotFound     = "NOT_FOUND_ERROR"
	CodeApplication  = "APPLICATION_ERROR"
)
