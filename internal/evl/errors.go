package evl

import "errors"

var (
	ErrAddressRequired = errors.New("evl: address required")
	ErrNotConnected    = errors.New("evl: not connected")
	ErrWriteRejected   = errors.New("evl: write rejected")
)
