package token

import "errors"

var (
	ErrEmptyAPICredentials = errors.New("empty api key or secret")
	ErrEmptyRoom           = errors.New("empty room name")
	ErrEmptyIdentity       = errors.New("empty participant identity")
	ErrInvalidTTL          = errors.New("token ttl must be positive")
)
