package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/StoreStation/blockworld/internal/metrics"
	"github.com/StoreStation/blockworld/internal/protocol"
	"github.com/StoreStation/blockworld/internal/world"
)

// identificationTimeout is the window a connected-but-unidentified socket
// gets before it is kicked (§4.6 step 1, §5).
const identificationTimeout = 2 * time.Second

const (
	protocolVersion uint8 = 0x07
	userTypeNormal  uint8 = 0x00
)

// Config carries the orchestrator's externally visible identity and the
// optional welcome banner (§6's driver contract).
type Config struct {
	ServerName string
	ServerMOTD string

	// Welcome, if non-empty, is sent as a Message to every socket immediately
	// after ServerIdentification, before identification completes. Carried
	// over from the original's unconditional "Welcome" banner.
	Welcome string
}

// ServerFullReason formats the kick reason the accept loop writes when the
// id allocator is exhausted (§8 scenario S2).
func ServerFullReason(serverName string) string {
	return fmt.Sprintf("&cSorry, %s &cis full right now.", serverName)
}

// Player is a live, identified participant: a controller, trimmed username,
// and fixed-point position/orientation (§3). Mutated only by the
// orchestrator.
type Player struct {
	Ctrl       Controller
	Name       string
	X, Y, Z    int16
	Yaw, Pitch uint8
}

type idQueueEntry struct {
	ctrl  Controller
	timer *time.Timer
}

// Orchestrator binds the event pump to world and player-table state,
// running the six logical handler loops of §4.6.
type Orchestrator struct {
	cfg     Config
	world   *world.World
	ids     *IDAllocator
	pump    *Pump
	log     *slog.Logger
	metrics *metrics.Metrics

	// mu guards players and idQueue. When both the world and this lock are
	// needed, the world is always acquired first (§5).
	mu      sync.Mutex
	players map[int8]*Player
	idQueue map[int8]idQueueEntry
}

// NewOrchestrator builds an orchestrator bound to w and backed by ids for
// player-id assignment. It does not itself accept connections — pair it
// with Serve using the same Pump.
func NewOrchestrator(cfg Config, w *world.World, ids *IDAllocator, pump *Pump, log *slog.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		world:   w,
		ids:     ids,
		pump:    pump,
		log:     log,
		metrics: m,
		players: make(map[int8]*Player),
		idQueue: make(map[int8]idQueueEntry),
	}
}

// Run drives all six handler loops until ctx is canceled or one of them
// returns an error.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	connected := o.pump.TakeConnected()
	disconnected := o.pump.TakeDisconnected()
	identification := o.pump.TakeIdentification()
	setBlock := o.pump.TakeSetBlock()
	positionOrientation := o.pump.TakePositionOrientation()
	message := o.pump.TakeMessage()

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-connected:
				o.onConnect(ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-disconnected:
				o.onDisconnect(ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-identification:
				o.onIdentification(ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-setBlock:
				o.onSetBlock(ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-positionOrientation:
				o.onPositionOrientation(ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-message:
				o.onMessage(ev)
			}
		}
	})

	return g.Wait()
}

// onConnect sends ServerIdentification and starts the identification-timeout
// timer (§4.6 step 1, §9: this path bypasses the player table entirely).
func (o *Orchestrator) onConnect(ev ConnectedEvent) {
	ident := protocol.ServerIdentification{
		ProtocolVersion: protocolVersion,
		ServerName:      o.cfg.ServerName,
		ServerMOTD:      o.cfg.ServerMOTD,
		UserType:        userTypeNormal,
	}
	ev.Ctrl.Enqueue(protocol.Frame(ident))

	if o.cfg.Welcome != "" {
		ev.Ctrl.Enqueue(protocol.Frame(protocol.ServerMessage{PlayerID: 0, Message: o.cfg.Welcome}))
	}

	id := ev.ID
	o.mu.Lock()
	o.idQueue[id] = idQueueEntry{
		ctrl:  ev.Ctrl,
		timer: time.AfterFunc(identificationTimeout, func() { o.onIdentificationTimeout(id) }),
	}
	o.mu.Unlock()
}

func (o *Orchestrator) onIdentificationTimeout(id int8) {
	o.mu.Lock()
	entry, ok := o.idQueue[id]
	if ok {
		delete(o.idQueue, id)
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	entry.ctrl.Enqueue(protocol.Frame(protocol.DisconnectPlayer{DisconnectReason: "Identification timeout"}))
	entry.ctrl.Kick()
}

// onIdentification builds the Player, streams the level, and performs the
// SpawnPlayer fan-out of §4.6 step 2.
func (o *Orchestrator) onIdentification(ev IdentificationEvent) {
	o.mu.Lock()
	entry, ok := o.idQueue[ev.ID]
	if ok {
		entry.timer.Stop()
		delete(o.idQueue, ev.ID)
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	name := strings.TrimRight(ev.Packet.Username, " ")
	spawn := o.world.Spawn
	player := &Player{Ctrl: entry.ctrl, Name: name, X: spawn.X, Y: spawn.Y, Z: spawn.Z}

	entry.ctrl.Enqueue(protocol.Frame(protocol.LevelInitialize{}))

	chunks, err := world.Stream(o.world)
	if err != nil {
		o.log.Error("stream level", "session", ev.ID, "err", err)
		entry.ctrl.Kick()
		return
	}
	for _, c := range chunks {
		entry.ctrl.Enqueue(protocol.Frame(c))
		if o.metrics != nil {
			o.metrics.BytesStreamed.Add(float64(c.ChunkLength))
		}
	}

	x, y, z := o.world.Dimensions()
	entry.ctrl.Enqueue(protocol.Frame(protocol.LevelFinalize{XSize: x, YSize: y, ZSize: z}))

	o.mu.Lock()
	for otherID, other := range o.players {
		entry.ctrl.Enqueue(protocol.Frame(protocol.SpawnPlayer{
			PlayerID: otherID, PlayerName: other.Name,
			X: other.X, Y: other.Y, Z: other.Z, Yaw: other.Yaw, Pitch: other.Pitch,
		}))
		other.Ctrl.Enqueue(protocol.Frame(protocol.SpawnPlayer{
			PlayerID: ev.ID, PlayerName: name,
			X: player.X, Y: player.Y, Z: player.Z, Yaw: player.Yaw, Pitch: player.Pitch,
		}))
	}
	o.players[ev.ID] = player
	o.mu.Unlock()
	if o.metrics != nil {
		o.metrics.PlayersOnline.Inc()
	}

	entry.ctrl.Enqueue(protocol.Frame(protocol.SpawnPlayer{
		PlayerID: -1, PlayerName: name,
		X: player.X, Y: player.Y, Z: player.Z, Yaw: player.Yaw, Pitch: player.Pitch,
	}))
}

// onSetBlock applies a destroy/place edit and broadcasts it to every player,
// including the requester (§4.6 step 3).
func (o *Orchestrator) onSetBlock(ev SetBlockEvent) {
	blockType := ev.Packet.BlockType
	if ev.Packet.Mode == 0 {
		blockType = world.Air
	}
	o.world.SetBlock(ev.Packet.X, ev.Packet.Y, ev.Packet.Z, blockType)
	if o.metrics != nil {
		o.metrics.BlocksPlaced.Inc()
	}

	frame := protocol.Frame(protocol.ServerSetBlock{X: ev.Packet.X, Y: ev.Packet.Y, Z: ev.Packet.Z, BlockType: blockType})

	o.mu.Lock()
	for _, p := range o.players {
		p.Ctrl.Enqueue(frame)
	}
	o.mu.Unlock()
}

// onPositionOrientation updates the player row and rebroadcasts to every
// other player using the client packet shape, per the §9 wire-compatibility
// note.
func (o *Orchestrator) onPositionOrientation(ev PositionOrientationEvent) {
	pkt := ev.Packet
	frame := protocol.Frame(protocol.PositionOrientation{
		PlayerID: uint8(ev.ID),
		X:        pkt.X, Y: pkt.Y, Z: pkt.Z,
		Yaw: pkt.Yaw, Pitch: pkt.Pitch,
	})

	o.mu.Lock()
	if p, ok := o.players[ev.ID]; ok {
		p.X, p.Y, p.Z, p.Yaw, p.Pitch = pkt.X, pkt.Y, pkt.Z, pkt.Yaw, pkt.Pitch
	}
	for id, other := range o.players {
		if id == ev.ID {
			continue
		}
		other.Ctrl.Enqueue(frame)
	}
	o.mu.Unlock()
}

// onMessage dispatches "/"-prefixed text to the command parser, otherwise
// formats and broadcasts it as chat (§4.6 step 5).
func (o *Orchestrator) onMessage(ev MessageEvent) {
	text := strings.TrimRight(ev.Packet.Message, " ")

	if strings.HasPrefix(text, "/") {
		o.dispatchCommand(ev.ID, text)
		return
	}

	o.mu.Lock()
	sender, ok := o.players[ev.ID]
	o.mu.Unlock()
	if !ok {
		return
	}

	line := formatChat(sender.Name, text)
	o.log.Info("chat", "from", sender.Name, "text", text)

	frame := protocol.Frame(protocol.ServerMessage{PlayerID: ev.ID, Message: line})
	o.mu.Lock()
	for _, p := range o.players {
		p.Ctrl.Enqueue(frame)
	}
	o.mu.Unlock()
}

func (o *Orchestrator) dispatchCommand(senderID int8, text string) {
	o.mu.Lock()
	sender, ok := o.players[senderID]
	o.mu.Unlock()
	if !ok {
		return
	}

	action := parseCommand(text)
	switch action.outcome {
	case commandError:
		sender.Ctrl.Enqueue(protocol.Frame(protocol.ServerMessage{PlayerID: 0, Message: action.reply}))

	case commandTeleport:
		target := strings.TrimSpace(action.target)
		o.mu.Lock()
		var dest *Player
		for _, p := range o.players {
			if p.Name == target {
				dest = p
				break
			}
		}
		o.mu.Unlock()

		if dest == nil {
			sender.Ctrl.Enqueue(protocol.Frame(protocol.ServerMessage{PlayerID: 0, Message: missingPlayerReply(target)}))
			return
		}
		sender.Ctrl.Enqueue(protocol.Frame(protocol.PositionOrientationTeleport{
			PlayerID: -1,
			X:        dest.X, Y: dest.Y, Z: dest.Z,
			Yaw: dest.Yaw, Pitch: dest.Pitch,
		}))
	}
}

// onDisconnect removes the player (if any) and pending queue entry,
// broadcasts DespawnPlayer, and returns the id to the allocator (§4.6
// step 6).
func (o *Orchestrator) onDisconnect(ev DisconnectedEvent) {
	o.mu.Lock()
	_, wasPlayer := o.players[ev.ID]
	delete(o.players, ev.ID)
	if entry, ok := o.idQueue[ev.ID]; ok {
		entry.timer.Stop()
		delete(o.idQueue, ev.ID)
	}
	if wasPlayer {
		frame := protocol.Frame(protocol.DespawnPlayer{PlayerID: ev.ID})
		for _, p := range o.players {
			p.Ctrl.Enqueue(frame)
		}
	}
	o.mu.Unlock()
	if wasPlayer && o.metrics != nil {
		o.metrics.PlayersOnline.Dec()
	}

	o.ids.Release(ev.ID)
	if o.metrics != nil {
		o.metrics.IDsInUse.Set(float64(o.ids.InUse()))
	}
}
