package protocol

// ServerIdentification is sent immediately on accept, before the server has
// seen any credentials (id 0x00, body 130 bytes).
type ServerIdentification struct {
	ProtocolVersion uint8
	ServerName      string
	ServerMOTD      string
	UserType        uint8
}

func (ServerIdentification) Kind() Kind { return KindServerIdentification }

func (p ServerIdentification) Encode() []byte {
	e := newEncoder(SizeOf(KindServerIdentification))
	e.writeU8(p.ProtocolVersion)
	e.writeString(p.ServerName)
	e.writeString(p.ServerMOTD)
	e.writeU8(p.UserType)
	return e.bytes()
}

// Ping carries no payload (id 0x01, body empty).
type Ping struct{}

func (Ping) Kind() Kind    { return KindPing }
func (Ping) Encode() []byte { return nil }

// LevelInitialize announces the start of a level transfer (id 0x02, empty).
type LevelInitialize struct{}

func (LevelInitialize) Kind() Kind    { return KindLevelInitialize }
func (LevelInitialize) Encode() []byte { return nil }

// LevelDataChunk carries one piece of the gzip-compressed level stream
// (id 0x03, body 1027 bytes: 2-byte length + 1024-byte data + 1-byte percent).
type LevelDataChunk struct {
	ChunkLength     int16
	ChunkData       []byte // exactly 1024 bytes on the wire, zero-padded
	PercentComplete uint8
}

func (LevelDataChunk) Kind() Kind { return KindLevelDataChunk }

func (p LevelDataChunk) Encode() []byte {
	e := newEncoder(SizeOf(KindLevelDataChunk))
	e.writeI16(p.ChunkLength)
	e.writeBytes(p.ChunkData)
	e.writeU8(p.PercentComplete)
	return e.bytes()
}

// LevelFinalize announces the end of a level transfer and the world's
// dimensions (id 0x04, body 6 bytes).
type LevelFinalize struct {
	XSize, YSize, ZSize int16
}

func (LevelFinalize) Kind() Kind { return KindLevelFinalize }

func (p LevelFinalize) Encode() []byte {
	e := newEncoder(SizeOf(KindLevelFinalize))
	e.writeI16(p.XSize)
	e.writeI16(p.YSize)
	e.writeI16(p.ZSize)
	return e.bytes()
}

// SetBlock is the server's authoritative block-change broadcast
// (id 0x06, body 7 bytes).
type ServerSetBlock struct {
	X, Y, Z   int16
	BlockType uint8
}

func (ServerSetBlock) Kind() Kind { return KindSetBlockServer }

func (p ServerSetBlock) Encode() []byte {
	e := newEncoder(SizeOf(KindSetBlockServer))
	e.writeI16(p.X)
	e.writeI16(p.Y)
	e.writeI16(p.Z)
	e.writeU8(p.BlockType)
	return e.bytes()
}

// SpawnPlayer introduces a player entity to a client (id 0x07, body 73 bytes).
// PlayerID -1 is the self-spawn sentinel (§4.6 step 2).
type SpawnPlayer struct {
	PlayerID   int8
	PlayerName string
	X, Y, Z    int16
	Yaw, Pitch uint8
}

func (SpawnPlayer) Kind() Kind { return KindSpawnPlayer }

func (p SpawnPlayer) Encode() []byte {
	e := newEncoder(SizeOf(KindSpawnPlayer))
	e.writeI8(p.PlayerID)
	e.writeString(p.PlayerName)
	e.writeI16(p.X)
	e.writeI16(p.Y)
	e.writeI16(p.Z)
	e.writeU8(p.Yaw)
	e.writeU8(p.Pitch)
	return e.bytes()
}

// PositionOrientationTeleport moves a player instantly (id 0x08, body 9 bytes).
type PositionOrientationTeleport struct {
	PlayerID   int8
	X, Y, Z    int16
	Yaw, Pitch uint8
}

func (PositionOrientationTeleport) Kind() Kind { return KindPositionOrientationTeleport }

func (p PositionOrientationTeleport) Encode() []byte {
	e := newEncoder(SizeOf(KindPositionOrientationTeleport))
	e.writeI8(p.PlayerID)
	e.writeI16(p.X)
	e.writeI16(p.Y)
	e.writeI16(p.Z)
	e.writeU8(p.Yaw)
	e.writeU8(p.Pitch)
	return e.bytes()
}

// PositionOrientationUpdate is the server-side incremental position+orientation
// update (id 0x09, body 9 bytes). Per §9, this server does not send this
// packet for player movement — it rebroadcasts the client-shaped
// PositionOrientation packet instead, for wire compatibility with clients
// that don't interpret this one. It is kept for completeness of the
// registry and for any future caller that needs it.
type PositionOrientationUpdate struct {
	PlayerID   int8
	X, Y, Z    int16
	Yaw, Pitch uint8
}

func (PositionOrientationUpdate) Kind() Kind { return KindPositionOrientationUpdate }

func (p PositionOrientationUpdate) Encode() []byte {
	e := newEncoder(SizeOf(KindPositionOrientationUpdate))
	e.writeI8(p.PlayerID)
	e.writeI16(p.X)
	e.writeI16(p.Y)
	e.writeI16(p.Z)
	e.writeU8(p.Yaw)
	e.writeU8(p.Pitch)
	return e.bytes()
}

// PositionUpdate carries a relative position delta (id 0x0a, body 7 bytes).
type PositionUpdate struct {
	PlayerID                     int8
	ChangeX, ChangeY, ChangeZ int16
}

func (PositionUpdate) Kind() Kind { return KindPositionUpdate }

func (p PositionUpdate) Encode() []byte {
	e := newEncoder(SizeOf(KindPositionUpdate))
	e.writeI8(p.PlayerID)
	e.writeI16(p.ChangeX)
	e.writeI16(p.ChangeY)
	e.writeI16(p.ChangeZ)
	return e.bytes()
}

// OrientationUpdate carries a yaw/pitch-only update (id 0x0b, body 3 bytes).
type OrientationUpdate struct {
	PlayerID   int8
	Yaw, Pitch uint8
}

func (OrientationUpdate) Kind() Kind { return KindOrientationUpdate }

func (p OrientationUpdate) Encode() []byte {
	e := newEncoder(SizeOf(KindOrientationUpdate))
	e.writeI8(p.PlayerID)
	e.writeU8(p.Yaw)
	e.writeU8(p.Pitch)
	return e.bytes()
}

// DespawnPlayer removes a player entity from clients (id 0x0c, body 1 byte).
type DespawnPlayer struct {
	PlayerID int8
}

func (DespawnPlayer) Kind() Kind { return KindDespawnPlayer }

func (p DespawnPlayer) Encode() []byte {
	e := newEncoder(SizeOf(KindDespawnPlayer))
	e.writeI8(p.PlayerID)
	return e.bytes()
}

// ServerMessage is a server-originated chat line (id 0x0d, body 65 bytes).
// PlayerID 0 is used for server/system messages (command errors, echoes of
// broadcast chat carry the speaker's id).
type ServerMessage struct {
	PlayerID int8
	Message  string
}

func (ServerMessage) Kind() Kind { return KindMessageServer }

func (p ServerMessage) Encode() []byte {
	e := newEncoder(SizeOf(KindMessageServer))
	e.writeI8(p.PlayerID)
	e.writeString(p.Message)
	return e.bytes()
}

// DisconnectPlayer kicks a client with a human-readable reason
// (id 0x0e, body 64 bytes).
type DisconnectPlayer struct {
	DisconnectReason string
}

func (DisconnectPlayer) Kind() Kind { return KindDisconnectPlayer }

func (p DisconnectPlayer) Encode() []byte {
	e := newEncoder(SizeOf(KindDisconnectPlayer))
	e.writeString(p.DisconnectReason)
	return e.bytes()
}

// UpdateUserType changes a client's operator/user flag (id 0x0f, body 1 byte).
type UpdateUserType struct {
	UserType uint8
}

func (UpdateUserType) Kind() Kind { return KindUpdateUserType }

func (p UpdateUserType) Encode() []byte {
	e := newEncoder(SizeOf(KindUpdateUserType))
	e.writeU8(p.UserType)
	return e.bytes()
}
