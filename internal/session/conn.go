package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/StoreStation/blockworld/internal/metrics"
	"github.com/StoreStation/blockworld/internal/protocol"
)

const (
	// outboundQueueCapacity bounds each session's write queue (§4.3, §5).
	outboundQueueCapacity = 16
	// shutdownGrace is the window a kicked connection's write half gets to
	// flush queued bytes before both halves are forced to exit (§4.3).
	shutdownGrace = time.Second
)

// Controller is the handle other components use to reach a live session: an
// outbound byte-queue sender and a cooperative cancel signal. It is a small,
// trivially copyable value with no reference back to the session or the
// player table (§9).
type Controller struct {
	ID       int8
	outbound chan []byte
	cancel   context.CancelFunc
}

// Enqueue queues a framed packet for delivery, blocking if the outbound
// queue is saturated — the backpressure point the broadcast discipline in
// §4.6 relies on.
func (c Controller) Enqueue(frame []byte) {
	c.outbound <- frame
}

// Kick starts the 1-second grace window, after which the session's read and
// write tasks are forced to exit.
func (c Controller) Kick() {
	go func() {
		timer := time.NewTimer(shutdownGrace)
		defer timer.Stop()
		<-timer.C
		c.cancel()
	}()
}

// Conn owns one accepted socket's read half and write half.
type Conn struct {
	id     int8
	nc     net.Conn
	pump   *Pump
	log    *slog.Logger
	runCtx context.Context
}

// Accept wraps a freshly accepted socket with a Controller. Run must be
// called (typically in its own goroutine) to actually drive the connection;
// Accept itself only constructs state and emits the connected event.
func Accept(ctx context.Context, id int8, nc net.Conn, pump *Pump, log *slog.Logger) (*Conn, Controller, error) {
	runCtx, cancel := context.WithCancel(ctx)
	ctrl := Controller{ID: id, outbound: make(chan []byte, outboundQueueCapacity), cancel: cancel}
	c := &Conn{id: id, nc: nc, pump: pump, log: log.With("session", id)}

	if err := pump.emitConnected(ctx, ConnectedEvent{ID: id, Ctrl: ctrl}); err != nil {
		cancel()
		return nil, Controller{}, err
	}

	c.runCtx = runCtx
	return c, ctrl, nil
}

// Run drives the read and write tasks until either exits, tears down the
// socket, and always emits a disconnected event before returning (§4.3).
func (c *Conn) Run(ctrl Controller) {
	g, gctx := errgroup.WithContext(c.runCtx)

	// Force both tasks to unblock from their socket calls as soon as the
	// group context is done, regardless of which task tripped it.
	go func() {
		<-gctx.Done()
		c.nc.Close()
	}()

	g.Go(func() error { return c.readLoop(gctx) })
	g.Go(func() error { return c.writeLoop(gctx, ctrl.outbound) })

	if err := g.Wait(); err != nil {
		c.log.Debug("session ended", "err", err)
	}
	c.nc.Close()
	c.pump.emitDisconnected(context.Background(), DisconnectedEvent{ID: c.id})
}

func (c *Conn) readLoop(ctx context.Context) error {
	r := bufio.NewReader(c.nc)
	for {
		idByte, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("session %d: read id: %w", c.id, err)
		}

		kind, ok := protocol.ClientKindForID(idByte)
		if !ok {
			// Unknown packet id: the id byte is consumed, logged at Debug,
			// and no body is read, per §9's documented (and deliberately
			// unresolved) desync quirk — the core does not close the
			// connection here.
			c.log.Debug("unknown packet id", "id", idByte)
			continue
		}

		body := make([]byte, protocol.SizeOf(kind))
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("session %d: read body: %w", c.id, err)
		}

		if err := c.dispatch(ctx, kind, body); err != nil {
			return err
		}
	}
}

func (c *Conn) dispatch(ctx context.Context, kind protocol.Kind, body []byte) error {
	switch kind {
	case protocol.KindPlayerIdentification:
		pkt, err := protocol.DecodePlayerIdentification(body)
		if err != nil {
			return fmt.Errorf("session %d: %w", c.id, err)
		}
		return c.pump.emitIdentification(ctx, IdentificationEvent{ID: c.id, Packet: pkt})

	case protocol.KindSetBlockClient:
		pkt, err := protocol.DecodeSetBlock(body)
		if err != nil {
			return fmt.Errorf("session %d: %w", c.id, err)
		}
		return c.pump.emitSetBlock(ctx, SetBlockEvent{ID: c.id, Packet: pkt})

	case protocol.KindPositionOrientation:
		pkt, err := protocol.DecodePositionOrientation(body)
		if err != nil {
			return fmt.Errorf("session %d: %w", c.id, err)
		}
		return c.pump.emitPositionOrientation(ctx, PositionOrientationEvent{ID: c.id, Packet: pkt})

	case protocol.KindMessageClient:
		pkt, err := protocol.DecodeMessage(body)
		if err != nil {
			return fmt.Errorf("session %d: %w", c.id, err)
		}
		return c.pump.emitMessage(ctx, MessageEvent{ID: c.id, Packet: pkt})

	default:
		return nil
	}
}

func (c *Conn) writeLoop(ctx context.Context, outbound <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-outbound:
			if _, err := c.nc.Write(frame); err != nil {
				return fmt.Errorf("session %d: write: %w", c.id, err)
			}
		}
	}
}

// Serve accepts connections on ln until ctx is canceled. Each accepted
// socket is assigned an id, or — if the allocator is exhausted — rejected
// with a single DisconnectPlayer frame written directly to the socket,
// bypassing the session machinery entirely (§4.4, §9).
func Serve(ctx context.Context, ln net.Listener, ids *IDAllocator, pump *Pump, log *slog.Logger, fullReason string, m *metrics.Metrics) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.Warn("accept", "err", err)
				continue
			}
		}

		id, ok := ids.Allocate()
		if !ok {
			nc.Write(protocol.Frame(protocol.DisconnectPlayer{DisconnectReason: fullReason}))
			nc.Close()
			continue
		}
		if m != nil {
			m.SessionsAccepted.Inc()
			m.IDsInUse.Set(float64(ids.InUse()))
		}

		conn, ctrl, err := Accept(ctx, id, nc, pump, log)
		if err != nil {
			ids.Release(id)
			if m != nil {
				m.IDsInUse.Set(float64(ids.InUse()))
			}
			nc.Close()
			continue
		}
		go conn.Run(ctrl)
	}
}
