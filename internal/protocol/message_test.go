package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplyKeepsRequestID(t *testing.T) {
	req := Mute("team", "alice", "bob", 500)
	require.NotEmpty(t, req.ID)

	ok := req.Success("ws://bob")
	require.Equal(t, KindSuccess, ok.Kind)
	require.Equal(t, req.ID, ok.ID)
	require.Equal(t, "ws://bob", ok.Address.String())

	fail := req.Failure(ReasonTargetIsAdmin, "")
	require.Equal(t, req.ID, fail.ID)
	require.True(t, fail.Reason.Forbidden())
	require.True(t, fail.Kind.IsReply())
	require.False(t, req.Kind.IsReply())

	muted := req.MutedFor(420)
	require.Equal(t, ReasonMuted, muted.Reason)
	require.Equal(t, "420", muted.Detail)
}

func TestFreshIDs(t *testing.T) {
	require.NotEqual(t, Connect("a").ID, Connect("a").ID)
}

func TestAsDelivery(t *testing.T) {
	text := GroupText("team", "alice", "hi all").AsDelivery()
	require.Equal(t, KindText, text.Kind)
	require.Equal(t, "team", text.Target)
	require.Equal(t, "alice", text.Source)
	require.Equal(t, "hi all", text.Text)

	file := GroupFile("team", "alice", "notes.txt", []byte("x")).AsDelivery()
	require.Equal(t, KindFile, file.Kind)
	require.Equal(t, "notes.txt", file.FileName)
	require.Equal(t, []byte("x"), file.Content)
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{CodecJSON, CodecCBOR} {
		t.Run(name, func(t *testing.T) {
			c, err := NewCodec(name)
			require.NoError(t, err)
			require.Equal(t, name, c.Name())

			in := File("alice", "bob", "a.bin", []byte{0, 1, 2, 255})
			in.From = "ws://alice"
			data, err := c.Encode(in)
			require.NoError(t, err)

			out, err := c.Decode(data)
			require.NoError(t, err)
			require.Equal(t, in, out)
		})
	}

	_, err := NewCodec("xml")
	require.Error(t, err)
}
