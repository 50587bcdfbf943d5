package tpi

import "errors"

var ErrMalformedPacket = errors.New("tpi: malformed packet")
