package protocol

// Packet is satisfied by every packet struct in this package. Encode renders
// only the body; the leading id byte is added by Frame.
type Packet interface {
	Kind() Kind
	Encode() []byte
}

// Frame prepends the packet's registry id to its encoded body, producing the
// exact byte run written to (or read from) the socket.
func Frame(p Packet) []byte {
	body := p.Encode()
	out := make([]byte, 0, 1+len(body))
	out = append(out, IDOf(p.Kind()))
	out = append(out, body...)
	return out
}
