package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в v1.MapDomainError)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrInvalidMediaType = errors.New("invalid_media_type") // 400
	ErrMissingRange     = errors.New("missing_range")      // 400
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrPayloadTooLarge  = errors.New("payload_too_large")  // 413
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Числовые коды для конверта ответа
const (
	ErrCodeBadParams        = 1002
	ErrCodeNotFound         = 1003
	ErrCodeMethodNotAllowed = 1004
	ErrCodeInvalidMediaType = 1005
	ErrCodePayloadTooLarge  = 1006
	ErrCodeMissingRange     = 1007
	ErrCodeUnexpected       = 1500
)
