package util

import (
	"testing"
	"time"
)

func TestEmission(t *testing.T) {
	var em Emitter

	l := em.Listen()
	defer em.Unlisten(l)
	em.Emit("test")

	select {
	case msg := <-l:
		if msg != "test" {
			t.Errorf("Event malformed: %v", msg)
		}
	case <-time.After(time.Millisecond * 100):
		t.Error("Event was not emitted")
	}
}

func TestEmissionMultipleListeners(t *testing.T) {
	var em Emitter

	a := em.Listen()
	defer em.Unlisten(a)
	b := em.Listen()
	defer em.Unlisten(b)
	em.Emit("test")

	for _, l := range []<-chan interface{}{a, b} {
		select {
		case msg := <-l:
			if msg != "test" {
				t.Errorf("Event malformed: %v", msg)
			}
		case <-time.After(time.Millisecond * 100):
			t.Error("Event was not emitted")
		}
	}
}

func TestUnlisten(t *testing.T) {
	var em Emitter

	l := em.Listen()
	em.Unlisten(l)
	em.Emit("test")

	// The channel is closed on unlisten, a receive yields the zero value.
	select {
	case msg, ok := <-l:
		if ok {
			t.Errorf("Received %v on an unlistened channel", msg)
		}
	case <-time.After(time.Millisecond * 100):
		t.Error("Unlistened channel was not closed")
	}
}
