package protocol

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

// TestEncodeLayout pins the wire layout: three little-endian int32 fields.
func TestEncodeLayout(t *testing.T) {
	got := Encode(Packet{ID: 6, Type: Response, PayloadSize: 10})
	want := []byte{
		6, 0, 0, 0,
		1, 0, 0, 0,
		10, 0, 0, 0,
	}
	require.Equal(t, want, got)
}

// TestDecodeNegativeID verifies signed fields survive the unsigned encoding.
func TestDecodeNegativeID(t *testing.T) {
	pkt, err := Decode(Encode(NewPacket()))
	require.NoError(t, err)
	require.Equal(t, int32(-1), pkt.ID)
	require.Equal(t, BadMessage, pkt.Type)
	require.Zero(t, pkt.PayloadSize)
}

// TestDecodeTooShort verifies Decode rejects input shorter than PacketSize.
func TestDecodeTooShort(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"1 byte", []byte{0x01}},
		{"11 bytes (one less than PacketSize)", make([]byte, PacketSize-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			require.ErrorIs(t, err, ErrShortPacket)
		})
	}
}

// TestReadPacketFragmented feeds the packet one byte per Read call.
func TestReadPacketFragmented(t *testing.T) {
	want := Packet{ID: 5, Type: Request}
	r := iotest.OneByteReader(bytes.NewReader(Encode(want)))

	got, err := ReadPacket(r)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestReadPacketTruncated verifies a stream ending mid-packet is a short packet,
// and an empty stream is a plain EOF.
func TestReadPacketTruncated(t *testing.T) {
	_, err := ReadPacket(bytes.NewReader(Encode(Packet{ID: 1})[:7]))
	require.ErrorIs(t, err, ErrShortPacket)

	_, err = ReadPacket(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

// TestReplyIncrementsID covers the id+1 correlation, including wrap-around.
func TestReplyIncrementsID(t *testing.T) {
	testCases := []struct {
		name   string
		id     int32
		wantID int32
	}{
		{"zero", 0, 1},
		{"positive", 5, 6},
		{"negative", -7, -6},
		{"max wraps", math.MaxInt32, math.MinInt32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := Reply(Packet{ID: tc.id, Type: Request}, 1000)
			require.Equal(t, tc.wantID, resp.ID)
			require.Equal(t, Response, resp.Type)
			require.Equal(t, int32(1000), resp.PayloadSize)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

// TestWritePacketErrors verifies write errors and short writes are surfaced.
func TestWritePacketErrors(t *testing.T) {
	require.EqualError(t, WritePacket(failingWriter{}, NewPacket()), "boom")
	require.ErrorIs(t, WritePacket(shortWriter{}, NewPacket()), io.ErrShortWrite)

	var buf bytes.Buffer
	require.NoError(t, WritePacket(&buf, Packet{ID: 3, Type: Request}))
	require.Equal(t, PacketSize, buf.Len())
}

func TestMessageTypeString(t *testing.T) {
	require.Equal(t, "REQUEST", Request.String())
	require.Equal(t, "RESPONSE", Response.String())
	require.Equal(t, "BAD_MESSAGE", BadMessage.String())
	require.Equal(t, "MessageType(9)", MessageType(9).String())
}
