package services

import "errors"

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStoreClosed     = errors.New("session store closed")
)

// Request errors
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
