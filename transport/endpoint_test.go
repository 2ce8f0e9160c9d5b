package transport_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-hall/protocol"
	"chat-hall/transport"
)

func TestSocketEndpoint_OversizedFrameCostsTheFrameNotTheConnection(t *testing.T) {
	req := require.New(t)

	// Given an endpoint writing to a live peer
	server, peer := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = peer.Close()
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	endpoint := transport.NewSocketEndpoint(server, 8, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = endpoint.Run(ctx) }()

	// When a frame too large for the wire precedes a regular one
	endpoint.Enqueue(protocol.Message{Identity: "bob", Content: strings.Repeat("a", 1<<16)})
	endpoint.Enqueue(protocol.Message{Identity: "bob", Content: "still here"})

	// Then the peer still receives the regular frame
	req.NoError(peer.SetReadDeadline(time.Now().Add(2 * time.Second)))
	got, err := protocol.NewFrameReader(peer).Read()
	req.NoError(err)
	req.Equal(protocol.Message{Identity: "bob", Content: "still here"}, got)
}
