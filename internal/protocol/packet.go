// Package protocol defines the handshake packet exchanged before a payload
// transfer, and its fixed-size wire encoding.
package protocol

import "fmt"

// MessageType tags the role of a handshake packet.
type MessageType int32

// Message type constants. BadMessage is the zero-value sentinel and is never
// sent on the wire.
const (
	Request    MessageType = 0
	Response   MessageType = 1
	BadMessage MessageType = 2
)

// PacketSize is the fixed wire size: ID(4) + Type(4) + PayloadSize(4).
const PacketSize = 12

func (t MessageType) String() string {
	switch t {
	case Request:
		return "REQUEST"
	case Response:
		return "RESPONSE"
	case BadMessage:
		return "BAD_MESSAGE"
	default:
		return fmt.Sprintf("MessageType(%d)", int32(t))
	}
}

// Packet is the handshake packet. PayloadSize is only meaningful on a
// Response, where it declares the exact number of payload bytes that follow.
type Packet struct {
	ID          int32
	Type        MessageType
	PayloadSize int32
}

// NewPacket returns a packet in its default state: ID -1, BadMessage, no payload.
func NewPacket() Packet {
	return Packet{ID: -1, Type: BadMessage}
}

// Reply builds the Response to a received Request. The ID is incremented
// with ordinary int32 wrap-around.
func Reply(req Packet, payloadSize int32) Packet {
	return Packet{
		ID:          req.ID + 1,
		Type:        Response,
		PayloadSize: payloadSize,
	}
}
