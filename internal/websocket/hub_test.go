package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fretnav/api/internal/model"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestHub_BroadcastReachesOnlyJobSubscribers(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := &Client{JobID: "job-a", Send: make(chan []byte, 4)}
	b := &Client{JobID: "job-b", Send: make(chan []byte, 4)}
	h.Register(a)
	h.Register(b)
	waitFor(t, func() bool { return h.Subscribers("job-a") == 1 && h.Subscribers("job-b") == 1 })

	h.BroadcastPage("job-a", 1, 12, "C", "diagram")

	var page model.WSPageMessage
	if err := json.Unmarshal(receive(t, a), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Type != model.WSMessageTypePage || page.Root != "C" || page.Total != 12 {
		t.Errorf("page = %+v", page)
	}

	select {
	case msg := <-b.Send:
		t.Errorf("job-b received %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{JobID: "job", Send: make(chan []byte, 1)}
	h.Register(c)
	waitFor(t, func() bool { return h.Subscribers("job") == 1 })

	h.Unregister(c)
	waitFor(t, func() bool { return h.Subscribers("job") == 0 })

	if _, ok := <-c.Send; ok {
		t.Error("Send channel should be closed after unregister")
	}
}

func TestHub_ErrorMessage(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{JobID: "job", Send: make(chan []byte, 1)}
	h.Register(c)
	waitFor(t, func() bool { return h.Subscribers("job") == 1 })

	h.BroadcastError("job", "JOB_FAILED", "boom")

	var msg model.WSErrorMessage
	if err := json.Unmarshal(receive(t, c), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Error.Code != "JOB_FAILED" || msg.Error.Message != "boom" {
		t.Errorf("error = %+v", msg.Error)
	}
}
