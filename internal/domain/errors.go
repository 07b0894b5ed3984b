package domain

import "errors"

var (
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrTargetUnavailable = errors.New("volume target unavailable")
	ErrSessionNotFound   = errors.New("audio session not found")
)
