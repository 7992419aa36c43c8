package errors

// ErrorCategory groups related application errors for unified handling.
type ErrorCategory string

const (
	ErrCategorySystem     ErrorCategory = "SYSTEM"
	ErrCategoryNetwork    ErrorCategory = "NETWORK"
	ErrCategoryConfig     ErrorCategory = "CONFIG"
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryDependency ErrorCategory = "DEPENDENCY"
	ErrCategorySSL        ErrorCategory = "SSL"
	ErrCategoryFirewall   ErrorCategory = "FIREWALL"
	ErrCategoryDatabase   ErrorCategory = "DATABASE"
	ErrCategoryService    ErrorCategory = "SERVICE"
	ErrCategoryBackup     ErrorCategory = "BACKUP"
)
