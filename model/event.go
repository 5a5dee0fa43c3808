package model

import (
	"fmt"
	"slices"
)

const (
	EventConnectionAdded   = "connection.added"
	EventConnectionRemoved = "connection.removed"
	EventConnectionUpdated = "connection.updated"
	EventDocumentCleared   = "document.cleared"
	EventDocumentLoaded    = "document.loaded"
	EventElementAdded      = "element.added"
	EventElementRemoved    = "element.removed"
	EventElementUpdated    = "element.updated"
)

// Event notifies listeners about a document change.
// Element and connection values are copies.
type Event struct {
	Name string

	Element    *Element    // Added, updated or removed element.
	Connection *Connection // Added, updated or removed connection.

	// Connections, which have been removed together with an element.
	Connections []*Connection
}

// A Listener is notified synchronously, after a document has been changed.
// A returned error is logged and neither affects other listeners nor the change itself.
type Listener func(Event) error

// ListenerId identifies an attached listener.
type ListenerId int

type listener struct {
	id ListenerId
	fn Listener
}

// AddListener attaches a listener, which is notified after each change.
// Listeners are notified in the order they have been attached.
func (d *Document) AddListener(fn Listener) ListenerId {
	d.nextListenerId++
	d.listeners = append(d.listeners, listener{id: d.nextListenerId, fn: fn})
	return d.nextListenerId
}

// RemoveListener detaches a listener.
// If the listener is not attached, false is returned.
func (d *Document) RemoveListener(id ListenerId) bool {
	n := len(d.listeners)
	d.listeners = slices.DeleteFunc(d.listeners, func(l listener) bool {
		return l.id == id
	})
	return len(d.listeners) != n
}

func (d *Document) publish(event Event) {
	// copy, since a listener may attach or detach listeners
	listeners := slices.Clone(d.listeners)

	for _, l := range listeners {
		if err := notify(l.fn, event); err != nil {
			d.logger.Error(err, "listener failed", "event", event.Name, "listenerId", l.id)
		}
	}
}

func notify(fn Listener, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return fn(event)
}
