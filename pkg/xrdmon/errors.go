package xrdmon

import "errors"

var (
	ErrInvalidPacket   = errors.New("invalid packet format")
	ErrPayloadTooLarge = errors.New("payload too large")
)
