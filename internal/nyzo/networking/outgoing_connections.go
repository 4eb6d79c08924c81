package networking

import (
	"context"
	"net"
	"time"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages"
	"github.com/pkg/errors"
)

// Used when the caller's context carries no deadline.
const defaultConnectionTimeout = 5 * time.Second

func dial(ctx context.Context, address string) (net.Conn, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultConnectionTimeout)
		defer cancel()
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %s", address)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultConnectionTimeout)
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Fetch sends m to address over TCP and waits for one answer, bounded by the context deadline.
func Fetch(ctx context.Context, m *messages.Message, address string) (*messages.Message, error) {
	conn, err := dial(ctx, address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	// abort a blocked read as soon as the context ends
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()
	if _, err = conn.Write(m.SerializeForTransmission()); err != nil {
		return nil, errors.Wrapf(err, "error sending data to %s", address)
	}
	answer, err := messages.ReadNew(conn)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read answer from %s", address)
	}
	return answer, nil
}

// Send writes m to address over TCP without waiting for an answer.
func Send(ctx context.Context, m *messages.Message, address string) error {
	conn, err := dial(ctx, address)
	if err != nil {
		return err
	}
	defer conn.Close()
	if _, err = conn.Write(m.SerializeForTransmission()); err != nil {
		return errors.Wrapf(err, "error sending data to %s", address)
	}
	return nil
}
