package protocol

// PlayerIdentification is sent by a client once, to identify itself
// (id 0x00, body 130 bytes). The credential field is accepted and ignored —
// this server does not authenticate players.
type PlayerIdentification struct {
	ProtocolVersion uint8
	Username        string
	VerificationKey string
	Unused          uint8
}

// Kind reports the packet's registry Kind.
func (PlayerIdentification) Kind() Kind { return KindPlayerIdentification }

// Encode renders the packet body to exactly SizeOf(KindPlayerIdentification) bytes.
func (p PlayerIdentification) Encode() []byte {
	e := newEncoder(SizeOf(KindPlayerIdentification))
	e.writeU8(p.ProtocolVersion)
	e.writeString(p.Username)
	e.writeString(p.VerificationKey)
	e.writeU8(p.Unused)
	return e.bytes()
}

// DecodePlayerIdentification decodes a packet body of exactly
// SizeOf(KindPlayerIdentification) bytes.
func DecodePlayerIdentification(body []byte) (PlayerIdentification, error) {
	d := newDecoder(body)
	var p PlayerIdentification
	var err error
	if p.ProtocolVersion, err = d.readU8(); err != nil {
		return p, err
	}
	if p.Username, err = d.readString(); err != nil {
		return p, err
	}
	if p.VerificationKey, err = d.readString(); err != nil {
		return p, err
	}
	if p.Unused, err = d.readU8(); err != nil {
		return p, err
	}
	return p, nil
}

// SetBlock is the client's request to change a block (id 0x05, body 8 bytes).
// Mode 0 means destroy (the server treats the target as AIR regardless of
// BlockType); any other mode means place BlockType.
type SetBlock struct {
	X, Y, Z   int16
	Mode      uint8
	BlockType uint8
}

func (SetBlock) Kind() Kind { return KindSetBlockClient }

func (p SetBlock) Encode() []byte {
	e := newEncoder(SizeOf(KindSetBlockClient))
	e.writeI16(p.X)
	e.writeI16(p.Y)
	e.writeI16(p.Z)
	e.writeU8(p.Mode)
	e.writeU8(p.BlockType)
	return e.bytes()
}

func DecodeSetBlock(body []byte) (SetBlock, error) {
	d := newDecoder(body)
	var p SetBlock
	var err error
	if p.X, err = d.readI16(); err != nil {
		return p, err
	}
	if p.Y, err = d.readI16(); err != nil {
		return p, err
	}
	if p.Z, err = d.readI16(); err != nil {
		return p, err
	}
	if p.Mode, err = d.readU8(); err != nil {
		return p, err
	}
	if p.BlockType, err = d.readU8(); err != nil {
		return p, err
	}
	return p, nil
}

// PositionOrientation reports a client's own position and orientation
// (id 0x08, body 10 bytes). PlayerID is sent by the client but carries no
// meaningful value — the server identifies the sender by which connection
// it arrived on, not by this field. The same struct shape is reused
// server-side to re-broadcast positions for wire compatibility (§9).
type PositionOrientation struct {
	PlayerID uint8
	X, Y, Z  int16
	Yaw      uint8
	Pitch    uint8
}

func (PositionOrientation) Kind() Kind { return KindPositionOrientation }

func (p PositionOrientation) Encode() []byte {
	e := newEncoder(SizeOf(KindPositionOrientation))
	e.writeU8(p.PlayerID)
	e.writeI16(p.X)
	e.writeI16(p.Y)
	e.writeI16(p.Z)
	e.writeU8(p.Yaw)
	e.writeU8(p.Pitch)
	return e.bytes()
}

func DecodePositionOrientation(body []byte) (PositionOrientation, error) {
	d := newDecoder(body)
	var p PositionOrientation
	var err error
	if p.PlayerID, err = d.readU8(); err != nil {
		return p, err
	}
	if p.X, err = d.readI16(); err != nil {
		return p, err
	}
	if p.Y, err = d.readI16(); err != nil {
		return p, err
	}
	if p.Z, err = d.readI16(); err != nil {
		return p, err
	}
	if p.Yaw, err = d.readU8(); err != nil {
		return p, err
	}
	if p.Pitch, err = d.readU8(); err != nil {
		return p, err
	}
	return p, nil
}

// Message is a client chat line (id 0x0d, body 65 bytes).
type Message struct {
	Unused  uint8
	Message string
}

func (Message) Kind() Kind { return KindMessageClient }

func (p Message) Encode() []byte {
	e := newEncoder(SizeOf(KindMessageClient))
	e.writeU8(p.Unused)
	e.writeString(p.Message)
	return e.bytes()
}

func DecodeMessage(body []byte) (Message, error) {
	d := newDecoder(body)
	var p Message
	var err error
	if p.Unused, err = d.readU8(); err != nil {
		return p, err
	}
	if p.Message, err = d.readString(); err != nil {
		return p, err
	}
	return p, nil
}
