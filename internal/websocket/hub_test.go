package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, buf int) *Client {
	return &Client{hub: h, Send: make(chan []byte, buf)}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	t.Cleanup(func() {
		h.Stop()
		<-done
	})
	return h
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHub_PublishFansOut(t *testing.T) {
	h := startHub(t)
	a, b := newTestClient(h, 4), newTestClient(h, 4)
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))

	h.Publish("category.created", map[string]any{"id_categoria": 1, "nombre": "Libros"})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, "category.created", msg.Action)
		payload, ok := msg.Payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Libros", payload["nombre"])
	}
	assert.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := newTestClient(h, 1)
	require.True(t, h.Register(c))
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	slow := newTestClient(h, 1)
	require.True(t, h.Register(slow))

	h.Publish("category.updated", nil)
	h.Publish("category.updated", nil)

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	// the first message was delivered before the channel closed
	msg := receive(t, slow)
	assert.Equal(t, "category.updated", msg.Action)
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestHub_Reply(t *testing.T) {
	h := startHub(t)
	a, b := newTestClient(h, 2), newTestClient(h, 2)
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))

	a.Reply(NewErrorMessage("unknown action"))
	msg := receive(t, a)
	assert.Equal(t, "error", msg.Action)

	select {
	case <-b.Send:
		t.Fatal("reply leaked to another client")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_StopDisconnectsEveryone(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := newTestClient(h, 1)
	require.True(t, h.Register(c))
	h.Stop()
	h.Stop()
	<-done

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, h.Register(newTestClient(h, 1)))
	assert.NotPanics(t, func() { h.Publish("category.deleted", nil) })
}
