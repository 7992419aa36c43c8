package ssl

import (
	apperrors "lampwright/internal/errors"
)

func newSSLError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	appErr := apperrors.SSLError(apperrors.CodeSSLGeneric, message, err).
		WithModule("ssl").
		WithOperation(operation)
	if metadata != nil {
		appErr.WithFields(metadata)
	}
	return appErr
}
