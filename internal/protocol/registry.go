package protocol

// Kind identifies a packet's shape. Each Kind has a compile-time id and size
// recorded in the registry table below — the single source of truth §4.2
// calls for, rather than per-type trait implementations.
type Kind int

const (
	KindPlayerIdentification Kind = iota
	KindSetBlockClient
	KindPositionOrientation
	KindMessageClient
	KindServerIdentification
	KindPing
	KindLevelInitialize
	KindLevelDataChunk
	KindLevelFinalize
	KindSetBlockServer
	KindSpawnPlayer
	KindPositionOrientationTeleport
	KindPositionOrientationUpdate
	KindPositionUpdate
	KindOrientationUpdate
	KindDespawnPlayer
	KindMessageServer
	KindDisconnectPlayer
	KindUpdateUserType
)

// descriptor is the registry entry for one packet Kind.
type descriptor struct {
	name string
	id   byte
	size int
}

var descriptors = map[Kind]descriptor{
	KindPlayerIdentification:       {"PlayerIdentification", 0x00, 130},
	KindSetBlockClient:             {"SetBlock", 0x05, 8},
	KindPositionOrientation:        {"PositionOrientation", 0x08, 10},
	KindMessageClient:              {"Message", 0x0d, 65},
	KindServerIdentification:       {"ServerIdentification", 0x00, 130},
	KindPing:                       {"Ping", 0x01, 0},
	KindLevelInitialize:            {"LevelInitialize", 0x02, 0},
	KindLevelDataChunk:             {"LevelDataChunk", 0x03, 1027},
	KindLevelFinalize:              {"LevelFinalize", 0x04, 6},
	KindSetBlockServer:             {"SetBlock", 0x06, 7},
	KindSpawnPlayer:                {"SpawnPlayer", 0x07, 73},
	KindPositionOrientationTeleport: {"PositionOrientationTeleport", 0x08, 9},
	KindPositionOrientationUpdate:   {"PositionOrientationUpdate", 0x09, 9},
	KindPositionUpdate:              {"PositionUpdate", 0x0a, 7},
	KindOrientationUpdate:           {"OrientationUpdate", 0x0b, 3},
	KindDespawnPlayer:               {"DespawnPlayer", 0x0c, 1},
	KindMessageServer:               {"Message", 0x0d, 65},
	KindDisconnectPlayer:            {"DisconnectPlayer", 0x0e, 64},
	KindUpdateUserType:              {"UpdateUserType", 0x0f, 1},
}

// IDOf returns the one-byte wire id for a packet Kind.
func IDOf(k Kind) byte { return descriptors[k].id }

// SizeOf returns the fixed body size in bytes for a packet Kind.
func SizeOf(k Kind) int { return descriptors[k].size }

// NameOf returns the human-readable name for a packet Kind, for logging.
func NameOf(k Kind) string { return descriptors[k].name }

// clientKindByID maps a leading id byte, as read from a client connection,
// to the client-bound packet Kind it introduces. Only client-originated
// packet kinds are registered here — the dispatcher never needs to resolve
// a server-bound id from a client socket.
var clientKindByID = map[byte]Kind{
	IDOf(KindPlayerIdentification): KindPlayerIdentification,
	IDOf(KindSetBlockClient):       KindSetBlockClient,
	IDOf(KindPositionOrientation):  KindPositionOrientation,
	IDOf(KindMessageClient):        KindMessageClient,
}

// ClientKindForID resolves the leading id byte of an inbound packet to its
// Kind. ok is false for an id the registry doesn't recognize — per §4.2 the
// caller must NOT close the connection in that case, only skip dispatch (the
// byte is consumed, no body is read; see §9's open question on this).
func ClientKindForID(id byte) (Kind, bool) {
	k, ok := clientKindByID[id]
	return k, ok
}
