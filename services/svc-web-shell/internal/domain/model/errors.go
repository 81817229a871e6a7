package model

import "errors"

var (
	ErrBackendURLNotConfigured = errors.New("backend base url is not configured")
	ErrBackendUnreachable      = errors.New("backend unreachable")
	ErrBackendUnhealthy        = errors.New("backend returned a non-ok status")
	ErrViewNotFound            = errors.New("dashboard view not found")
	ErrInvalidViewID           = errors.New("invalid dashboard view id")
	ErrViewClosed              = errors.New("dashboard view is closed")
)
