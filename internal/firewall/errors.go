package firewall

import apperrors "lampwright/internal/errors"

func newFirewallError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	appErr := apperrors.FirewallError(apperrors.CodeFirewallGeneric, message, err).
		WithModule("firewall").
		WithOperation(operation)
	if metadata != nil {
		appErr.WithFields(metadata)
	}
	return appErr
}
