package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/config"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestNATSServer starts an embedded NATS server on a random port.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	server, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func TestNew_EmptyURLIsNop(t *testing.T) {
	p, err := New(config.EventsConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), TypeTrackingCreated, map[string]string{"id": "x"}))
	assert.NoError(t, p.Close())
}

func TestNATSPublisher_Publish(t *testing.T) {
	server := startTestNATSServer(t)

	sub, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe("pestid.>", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := Connect(server.ClientURL(), "pestid", nil)
	require.NoError(t, err)
	defer p.Close()

	fixed := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err = p.Publish(context.Background(), TypeIdentificationCompleted, map[string]any{
		"name":       "Aphids",
		"confidence": 87,
	})
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "pestid.identification.completed", msg.Subject)

		var ev Event
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		assert.Equal(t, TypeIdentificationCompleted, ev.Type)
		assert.NotEmpty(t, ev.ID)
		assert.True(t, fixed.Equal(ev.Time))

		var data map[string]any
		require.NoError(t, json.Unmarshal(ev.Data, &data))
		assert.Equal(t, "Aphids", data["name"])
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNATSPublisher_CustomPrefix(t *testing.T) {
	server := startTestNATSServer(t)

	p, err := Connect(server.ClientURL(), "garden.eu", nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "garden.eu.tracking.created", p.Subject(TypeTrackingCreated))
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	server := startTestNATSServer(t)

	p, err := Connect(server.ClientURL(), "", nil)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, TypeTrackingCreated, struct{}{}), context.Canceled)
}

func TestNATSPublisher_CloseTwice(t *testing.T) {
	server := startTestNATSServer(t)

	p, err := Connect(server.ClientURL(), "pestid", nil)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
