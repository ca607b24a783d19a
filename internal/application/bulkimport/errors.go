package bulkimport

import "errors"

var (
	ErrInvalidFormat       = errors.New("invalid file format")
	ErrNoAccount           = errors.New("corporate account not found for this user")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrImportNotFound      = errors.New("import job not found")
	ErrInvalidState        = errors.New("import job is not in draft state")
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrPreviewImport       = errors.New("failed to preview import")
	ErrExecuteImport       = errors.New("failed to execute import")
	ErrGetImportStatus     = errors.New("failed to get import status")
)
