package errors

import "time"

// New creates a generic AppError with the supplied attributes.
func New(code string, category ErrorCategory, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		Category:  category,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// SystemError creates a SYSTEM category error instance.
func SystemError(code, message string, err error) *AppError {
	return New(code, ErrCategorySystem, message, err)
}

// NetworkError creates a NETWORK category error instance.
// Network failures are considered recoverable by default.
func NetworkError(code, message string, err error) *AppError {
	return New(code, ErrCategoryNetwork, message, err).WithRecoverable(true)
}

// ConfigError creates a CONFIG category error instance.
func ConfigError(code, message string, err error) *AppError {
	return New(code, ErrCategoryConfig, message, err)
}

// ValidationError creates a VALIDATION category error instance.
func ValidationError(code, message string, err error) *AppError {
	return New(code, ErrCategoryValidation, message, err)
}

// DependencyError creates a DEPENDENCY category error instance.
func DependencyError(code, message string, err error) *AppError {
	return New(code, ErrCategoryDependency, message, err)
}

// SSLError creates an SSL category error instance.
func SSLError(code, message string, err error) *AppError {
	return New(code, ErrCategorySSL, message, err)
}

// FirewallError creates a FIREWALL category error instance.
func FirewallError(code, message string, err error) *AppError {
	return New(code, ErrCategoryFirewall, message, err)
}

// DatabaseError creates a DATABASE category error instance.
func DatabaseError(code, message string, err error) *AppError {
	return New(code, ErrCategoryDatabase, message, err)
}

// ServiceError creates a SERVICE category error instance.
func ServiceError(code, message string, err error) *AppError {
	return New(code, ErrCategoryService, message, err)
}

// BackupError creates a BACKUP category error instance.
func BackupError(code, message string, err error) *AppError {
	return New(code, ErrCategoryBackup, message, err)
}
