package domain

import "errors"

var (
	ErrEmptyText       = errors.New("report text is empty")
	ErrEmptyBatch      = errors.New("batch contains no documents")
	ErrBatchTooLarge   = errors.New("batch exceeds maximum size")
	ErrAINotConfigured = errors.New("ai extraction requested but no provider is configured")
	ErrExtraction      = errors.New("ai extraction failed")
	ErrUnknownProvider = errors.New("unknown ai provider")
	ErrInvalidCatalog  = errors.New("invalid indicator catalog")
)
