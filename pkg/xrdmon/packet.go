package xrdmon

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// HeaderSize is the fixed length of the monitoring header that
	// prefixes every datagram.
	HeaderSize = 8

	// MaxPayloadSize is the largest payload whose total datagram length
	// still fits the 16-bit Plen field.
	MaxPayloadSize = 0xFFFF - HeaderSize
)

// Header is the fixed-layout prefix of a monitoring datagram. All
// multi-byte fields are big-endian.
type Header struct {
	Code        byte   // Byte 0: record type code
	Pseq        uint8  // Byte 1: packet sequence number
	Plen        uint16 // Bytes 2-3: total datagram length, header included
	ServerStart uint32 // Bytes 4-7: Unix seconds when the sender started
}

// Packet is a monitoring datagram: an 8-byte header followed by the
// payload bytes.
type Packet struct {
	Header
	Payload []byte
}

// NewPacket builds a packet for payload, filling Plen with the total
// datagram length and ServerStart with at truncated to Unix seconds.
func NewPacket(code byte, seq uint8, payload []byte, at time.Time) (*Packet, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, max %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	return &Packet{
		Header: Header{
			Code:        code,
			Pseq:        seq,
			Plen:        uint16(HeaderSize + len(payload)),
			ServerStart: uint32(at.Unix()),
		},
		Payload: payload,
	}, nil
}

// MarshalBinary encodes the header fields as stored, followed by the
// payload. Plen is not recomputed, so packets built by hand keep
// whatever length field they carry.
func (p *Packet) MarshalBinary() ([]byte, error) {
	if len(p.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, max %d", ErrPayloadTooLarge, len(p.Payload), MaxPayloadSize)
	}
	buf := make([]byte, HeaderSize+len(p.Payload))
	buf[0] = p.Code
	buf[1] = p.Pseq
	binary.BigEndian.PutUint16(buf[2:4], p.Plen)
	binary.BigEndian.PutUint32(buf[4:8], p.ServerStart)
	copy(buf[HeaderSize:], p.Payload)
	return buf, nil
}

// UnmarshalPacket decodes a datagram. The returned payload aliases buf.
func UnmarshalPacket(buf []byte) (*Packet, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidPacket, len(buf), HeaderSize)
	}
	return &Packet{
		Header: Header{
			Code:        buf[0],
			Pseq:        buf[1],
			Plen:        binary.BigEndian.Uint16(buf[2:4]),
			ServerStart: binary.BigEndian.Uint32(buf[4:8]),
		},
		Payload: buf[HeaderSize:],
	}, nil
}

// ValidatePacket checks that buf is a well-formed monitoring datagram:
// at least one header long, with Plen matching the datagram length.
// This is the collector's acceptance rule.
func ValidatePacket(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidPacket, len(buf), HeaderSize)
	}
	if plen := binary.BigEndian.Uint16(buf[2:4]); int(plen) != len(buf) {
		return fmt.Errorf("%w: length field is %d, datagram is %d bytes", ErrInvalidPacket, plen, len(buf))
	}
	return nil
}
