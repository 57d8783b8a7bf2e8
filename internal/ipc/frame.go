package ipc

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxPayload is the largest payload a 2-byte length prefix can describe.
const MaxPayload = 0xFFFF

var ErrShortFrame = errors.New("ipc: short frame")

// maxUnits keeps a truncated payload on a UTF-16 code unit boundary.
const maxUnits = MaxPayload &^ 1

// WriteFrame writes a 2-byte big-endian length followed by payload.
// Payloads longer than MaxPayload are truncated to whole code units.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		payload = payload[:maxUnits]
	}
	buf := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(buf[:2], uint16(len(payload)))
	copy(buf[2:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads exactly one frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	n := binary.BigEndian.Uint16(hdr[:])
	payload := make([]byte, n)
	if n == 0 {
		return payload, nil
	}
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	return payload, nil
}
