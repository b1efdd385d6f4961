package domain

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownToken   = errors.New("unknown base token")
	ErrNoLiquidity    = errors.New("no liquidity")
	ErrCrossedBook    = errors.New("crossed book")
	ErrUpstream       = errors.New("upstream fetch failed")
	ErrNotFound       = errors.New("not found")
)
