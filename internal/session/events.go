package session

import (
	"context"
	"sync"

	"github.com/StoreStation/blockworld/internal/protocol"
)

// eventQueueCapacity bounds every event stream (§4.5, §5).
const eventQueueCapacity = 10

// ConnectedEvent fires once per accepted socket, carrying the Controller the
// orchestrator uses to address that session.
type ConnectedEvent struct {
	ID   int8
	Ctrl Controller
}

// DisconnectedEvent fires exactly once per session, regardless of why the
// connection ended.
type DisconnectedEvent struct {
	ID int8
}

// IdentificationEvent carries a client's PlayerIdentification packet.
type IdentificationEvent struct {
	ID     int8
	Packet protocol.PlayerIdentification
}

// SetBlockEvent carries a client's SetBlock packet.
type SetBlockEvent struct {
	ID     int8
	Packet protocol.SetBlock
}

// PositionOrientationEvent carries a client's PositionOrientation packet.
type PositionOrientationEvent struct {
	ID     int8
	Packet protocol.PositionOrientation
}

// MessageEvent carries a client's Message packet.
type MessageEvent struct {
	ID     int8
	Packet protocol.Message
}

// Pump fans connection-originated events into one bounded channel per client
// packet kind (plus connect/disconnect), each producible exactly once via a
// one-shot handshake (§4.5): a second Take call on the same stream returns
// nil rather than a second live channel.
type Pump struct {
	mu sync.Mutex

	connected            chan ConnectedEvent
	disconnected         chan DisconnectedEvent
	identification       chan IdentificationEvent
	setBlock             chan SetBlockEvent
	positionOrientation  chan PositionOrientationEvent
	message              chan MessageEvent

	takenConnected           bool
	takenDisconnected        bool
	takenIdentification      bool
	takenSetBlock            bool
	takenPositionOrientation bool
	takenMessage             bool
}

// NewPump allocates the six bounded event streams.
func NewPump() *Pump {
	return &Pump{
		connected:           make(chan ConnectedEvent, eventQueueCapacity),
		disconnected:        make(chan DisconnectedEvent, eventQueueCapacity),
		identification:      make(chan IdentificationEvent, eventQueueCapacity),
		setBlock:            make(chan SetBlockEvent, eventQueueCapacity),
		positionOrientation: make(chan PositionOrientationEvent, eventQueueCapacity),
		message:             make(chan MessageEvent, eventQueueCapacity),
	}
}

// TakeConnected returns the receive side of the connected-event stream, or
// nil if it has already been taken.
func (p *Pump) TakeConnected() <-chan ConnectedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.takenConnected {
		return nil
	}
	p.takenConnected = true
	return p.connected
}

// TakeDisconnected returns the receive side of the disconnected-event
// stream, or nil if it has already been taken.
func (p *Pump) TakeDisconnected() <-chan DisconnectedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.takenDisconnected {
		return nil
	}
	p.takenDisconnected = true
	return p.disconnected
}

// TakeIdentification returns the receive side of the identification-event
// stream, or nil if it has already been taken.
func (p *Pump) TakeIdentification() <-chan IdentificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.takenIdentification {
		return nil
	}
	p.takenIdentification = true
	return p.identification
}

// TakeSetBlock returns the receive side of the set-block-event stream, or
// nil if it has already been taken.
func (p *Pump) TakeSetBlock() <-chan SetBlockEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.takenSetBlock {
		return nil
	}
	p.takenSetBlock = true
	return p.setBlock
}

// TakePositionOrientation returns the receive side of the
// position-orientation-event stream, or nil if it has already been taken.
func (p *Pump) TakePositionOrientation() <-chan PositionOrientationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.takenPositionOrientation {
		return nil
	}
	p.takenPositionOrientation = true
	return p.positionOrientation
}

// TakeMessage returns the receive side of the message-event stream, or nil
// if it has already been taken.
func (p *Pump) TakeMessage() <-chan MessageEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.takenMessage {
		return nil
	}
	p.takenMessage = true
	return p.message
}

// emit* methods push one event onto its stream, backpressuring the caller
// (and so, transitively, that session's read half) when the stream is
// saturated, but returning ctx.Err() if the session is torn down first.

func (p *Pump) emitConnected(ctx context.Context, ev ConnectedEvent) error {
	select {
	case p.connected <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) emitDisconnected(ctx context.Context, ev DisconnectedEvent) error {
	select {
	case p.disconnected <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) emitIdentification(ctx context.Context, ev IdentificationEvent) error {
	select {
	case p.identification <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) emitSetBlock(ctx context.Context, ev SetBlockEvent) error {
	select {
	case p.setBlock <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) emitPositionOrientation(ctx context.Context, ev PositionOrientationEvent) error {
	select {
	case p.positionOrientation <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) emitMessage(ctx context.Context, ev MessageEvent) error {
	select {
	case p.message <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
