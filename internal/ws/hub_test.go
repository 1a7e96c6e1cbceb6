package ws

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	writeErr error
}

func (c *fakeClient) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// blockingReader returns io.EOF once release is closed
type blockingReader struct{ release chan struct{} }

func (r blockingReader) ReadMessage() (int, []byte, error) {
	<-r.release
	return 0, nil, io.EOF
}

func TestHubSubscribeAndUnsubscribe(t *testing.T) {
	h := NewHub(nil)
	var a, b atomic.Int32

	unsubA := h.Subscribe(func() { a.Add(1) })
	h.Subscribe(func() { b.Add(1) })

	h.NotifyChanged()
	unsubA()
	unsubA()
	h.NotifyChanged()

	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(2), b.Load())
}

func TestHubSubscriberCanUnsubscribeItself(t *testing.T) {
	h := NewHub(nil)
	var calls atomic.Int32
	var unsub func()
	unsub = h.Subscribe(func() {
		calls.Add(1)
		unsub()
	})

	h.NotifyChanged()
	h.NotifyChanged()
	assert.Equal(t, int32(1), calls.Load())
}

func TestHubNotifyNeverBlocksWithoutRun(t *testing.T) {
	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.NotifyChanged()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyChanged blocked")
	}
}

func TestHubBroadcastsChangedFrame(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	good := &fakeClient{}
	bad := &fakeClient{writeErr: errors.New("broken pipe")}
	h.Register <- good
	h.Register <- bad
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	h.NotifyChanged()

	require.Eventually(t, func() bool { return good.frameCount() == 1 }, time.Second, 10*time.Millisecond)
	good.mu.Lock()
	assert.JSONEq(t, `{"type":"data_changed"}`, string(good.frames[0]))
	good.mu.Unlock()

	assert.Eventually(t, bad.isClosed, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, h.ClientCount())
}

func TestHubServeUnregistersOnDisconnect(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	c := &fakeClient{}
	r := blockingReader{release: make(chan struct{})}
	served := make(chan struct{})
	go func() {
		h.serve(c, r)
		close(served)
	}()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	close(r.release)
	<-served

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.True(t, c.isClosed())
}

func TestHubStopClosesClients(t *testing.T) {
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		h.Run()
		close(stopped)
	}()

	c := &fakeClient{}
	h.Register <- c
	h.Stop()
	h.Stop()
	<-stopped

	assert.True(t, c.isClosed())
	assert.Equal(t, 0, h.ClientCount())
}
