package ipc

import (
	"context"
	"fmt"
	"net"
	"time"
)

const defaultDialTimeout = 3 * time.Second

// Send delivers exactly one command. There is no reply.
func Send(ctx context.Context, endpoint string, cmd Command) error {
	payload, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return sendPayload(ctx, endpoint, payload)
}

// SendShutdown asks a running server to stop accepting.
func SendShutdown(ctx context.Context, endpoint string) error {
	payload, err := EncodeText(ShutdownMessage)
	if err != nil {
		return err
	}
	return sendPayload(ctx, endpoint, payload)
}

func sendPayload(ctx context.Context, endpoint string, payload []byte) error {
	if endpoint == "" {
		endpoint = DefaultEndpoint()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultDialTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", endpoint)
	if err != nil {
		return fmt.Errorf("ipc: connect %s: %w", endpoint, err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(dl)
	}

	if err := WriteFrame(conn, payload); err != nil {
		return fmt.Errorf("ipc: write: %w", err)
	}
	// Half-close so the frame drains before the connection goes away.
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	return nil
}
