package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var ErrEmptyCommand = errors.New("ipc: command name is empty")

// utf16le is the text encoding used on the wire. No byte order mark is written
// and a leading one is ignored on decode.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeText converts s to UTF-16LE bytes.
func EncodeText(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}

// DecodeText converts UTF-16LE bytes back to a Go string.
func DecodeText(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeCommand renders cmd as UTF-16LE JSON, ready for WriteFrame.
func EncodeCommand(cmd Command) ([]byte, error) {
	if cmd.Name == "" {
		return nil, ErrEmptyCommand
	}
	if cmd.Properties == nil {
		cmd.Properties = map[string]string{}
	}
	js, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return EncodeText(string(js))
}

// DecodeCommand parses a UTF-16LE JSON payload.
func DecodeCommand(payload []byte) (Command, error) {
	text, err := DecodeText(payload)
	if err != nil {
		return Command{}, fmt.Errorf("decode command text: %w", err)
	}
	return parseCommand(text)
}

func parseCommand(text string) (Command, error) {
	var cmd Command
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if cmd.Name == "" {
		return Command{}, ErrEmptyCommand
	}
	return cmd, nil
}
