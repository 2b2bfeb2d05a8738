package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/dinnerpicker/internal/selection"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

// toConnectError maps core errors onto Connect codes. Rejected input is
// invalid_argument, persistence failures are unavailable, anything else is internal.
func toConnectError(err error) error {
	var validationErr *selection.ValidationError
	if errors.As(err, &validationErr) {
		return connect.NewError(connect.CodeInvalidArgument, validationErr)
	}
	var storageErr *storage.Error
	if errors.As(err, &storageErr) {
		return connect.NewError(connect.CodeUnavailable, storageErr)
	}
	return connect.NewError(connect.CodeInternal, err)
}
