package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrShortPacket is returned when a stream ends before a full packet arrives.
var ErrShortPacket = errors.New("short handshake packet")

// Encode serializes a Packet into its PacketSize-byte wire form.
// Fields are little-endian, in declaration order.
func Encode(pkt Packet) []byte {
	buf := make([]byte, PacketSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(pkt.ID))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(pkt.Type))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(pkt.PayloadSize))
	return buf
}

// Decode deserializes a Packet. Bytes past PacketSize are ignored.
func Decode(data []byte) (Packet, error) {
	if len(data) < PacketSize {
		return NewPacket(), fmt.Errorf("%w: %d bytes (need %d)", ErrShortPacket, len(data), PacketSize)
	}
	return Packet{
		ID:          int32(binary.LittleEndian.Uint32(data[0:4])),
		Type:        MessageType(binary.LittleEndian.Uint32(data[4:8])),
		PayloadSize: int32(binary.LittleEndian.Uint32(data[8:12])),
	}, nil
}

// ReadPacket reads exactly one packet from r, looping over however many
// fragments the stream delivers it in.
func ReadPacket(r io.Reader) (Packet, error) {
	buf := make([]byte, PacketSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return NewPacket(), fmt.Errorf("%w: got %d of %d bytes", ErrShortPacket, n, PacketSize)
		}
		return NewPacket(), err
	}
	return Decode(buf)
}

// WritePacket writes pkt to w as a single unit.
func WritePacket(w io.Writer, pkt Packet) error {
	n, err := w.Write(Encode(pkt))
	if err != nil {
		return err
	}
	if n != PacketSize {
		return io.ErrShortWrite
	}
	return nil
}
