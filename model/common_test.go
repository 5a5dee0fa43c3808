package model

import (
	"testing"
	"time"
)

var testTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func mustAddConnection(t *testing.T, d *Document, sourceId string, targetId string) *Connection {
	c, err := NewConnection(sourceId, targetId, ConnectionSequence)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	if err := d.AddConnection(c); err != nil {
		t.Fatalf("failed to add connection: %v", err)
	}
	return c
}

func mustAddElement(t *testing.T, d *Document, e *Element) *Element {
	if err := d.AddElement(e); err != nil {
		t.Fatalf("failed to add element: %v", err)
	}
	return e
}

func newTestDocument() *Document {
	return New(func(o *Options) {
		o.Now = func() time.Time { return testTime }
	})
}

// recorder records the names of received events.
type recorder struct {
	events []Event
}

func (r *recorder) listen(event Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) names() []string {
	names := make([]string, len(r.events))
	for i, event := range r.events {
		names[i] = event.Name
	}
	return names
}
