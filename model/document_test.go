package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()

	metadata := d.Metadata()
	assert.Equal(DefaultTitle, metadata.Title)
	assert.Equal(DefaultVersion, metadata.Version)
	assert.Equal(testTime, metadata.Created)
	assert.Equal(testTime, metadata.Modified)
	assert.False(d.IsModified())
	assert.Empty(d.Elements())
	assert.Empty(d.Connections())
	assert.Empty(d.Validate())
}

func TestAddElement(t *testing.T) {
	assert := assert.New(t)

	t.Run("add element", func(t *testing.T) {
		// given
		d := newTestDocument()

		var r recorder
		d.AddListener(r.listen)

		e := NewElement(ElementProcess, "Check application")

		// when
		err := d.AddElement(e)

		// then
		assert.NoError(err)
		assert.True(d.IsModified())
		assert.True(d.HasElement(e.Id))
		assert.Equal([]string{EventElementAdded}, r.names())
		assert.Equal(e, r.events[0].Element)

		added, ok := d.Element(e.Id)
		assert.True(ok)
		assert.Equal(e, added)
	})

	t.Run("logic element gets default payload", func(t *testing.T) {
		d := newTestDocument()

		e := &Element{Id: "counter", Type: ElementCounter, Name: "Counter"}
		mustAddElement(t, d, e)

		added, _ := d.Element("counter")
		counter, ok := added.Counter()
		assert.True(ok)
		assert.Equal(CounterUp, counter.Direction)
		assert.Nil(e.Model) // caller's value is not changed
	})

	t.Run("returns error when ID exists", func(t *testing.T) {
		d := newTestDocument()
		mustAddElement(t, d, &Element{Id: "a", Type: ElementProcess})

		err := d.AddElement(&Element{Id: "a", Type: ElementDecision})
		assert.ErrorIs(err, ErrDuplicateId)

		e, _ := d.Element("a")
		assert.Equal(ElementProcess, e.Type)
	})

	t.Run("returns error when deadline is negative", func(t *testing.T) {
		d := newTestDocument()

		err := d.AddElement(&Element{Id: "a", Type: ElementProcess, DeadlineDays: -1})
		assert.ErrorIs(err, ErrNegativeDeadline)
		assert.False(d.HasElement("a"))
		assert.False(d.IsModified())
	})

	t.Run("returns error when payload does not match type", func(t *testing.T) {
		d := newTestDocument()

		err := d.AddElement(&Element{Id: "a", Type: ElementCounter, Model: Interlock{}})
		assert.ErrorIs(err, ErrPayloadMismatch)
	})

	t.Run("returns error when type is unknown", func(t *testing.T) {
		d := newTestDocument()

		err := d.AddElement(&Element{Id: "a", Type: ElementType(99)})
		assert.ErrorIs(err, ErrUnknownType)

		err = d.AddElement(&Element{Id: "b", Name: "No type"})
		assert.ErrorIs(err, ErrUnknownType)

		assert.Equal(0, d.ElementCount())
		assert.False(d.IsModified())
	})

	t.Run("empty slices are stored as nil", func(t *testing.T) {
		d := newTestDocument()

		e := &Element{Id: "container", Type: ElementContainer, Members: []string{}}
		mustAddElement(t, d, e)

		condition := &Element{Id: "condition", Type: ElementCondition, Model: Condition{Logic: LogicOr, Checks: []Check{}}}
		mustAddElement(t, d, condition)

		stored, _ := d.Element("container")
		assert.Nil(stored.Members)

		stored, _ = d.Element("condition")
		model, _ := stored.Condition()
		assert.Nil(model.Checks)
	})

	t.Run("returns a copy", func(t *testing.T) {
		d := newTestDocument()

		e := NewElement(ElementContainer, "Container")
		e.Members = []string{"x"}
		mustAddElement(t, d, e)

		e.Members[0] = "changed"
		e.Name = "changed"

		stored, _ := d.Element(e.Id)
		assert.Equal("Container", stored.Name)
		assert.Equal([]string{"x"}, stored.Members)

		stored.Name = "changed again"

		stored, _ = d.Element(e.Id)
		assert.Equal("Container", stored.Name)
	})
}

func TestRemoveElement(t *testing.T) {
	assert := assert.New(t)

	t.Run("removes element and touching connections", func(t *testing.T) {
		// given
		d := newTestDocument()

		a := mustAddElement(t, d, NewElement(ElementStart, "Start"))
		b := mustAddElement(t, d, NewElement(ElementProcess, "Review"))
		c := mustAddElement(t, d, NewElement(ElementEnd, "End"))

		ab := mustAddConnection(t, d, a.Id, b.Id)
		bc := mustAddConnection(t, d, b.Id, c.Id)
		ac := mustAddConnection(t, d, a.Id, c.Id)

		var r recorder
		d.AddListener(r.listen)

		// when
		removed, ok := d.RemoveElement(b.Id)

		// then
		assert.True(ok)
		assert.Len(removed, 2)
		assert.ElementsMatch([]string{ab.Id, bc.Id}, []string{removed[0].Id, removed[1].Id})

		assert.False(d.HasElement(b.Id))
		assert.Len(d.Connections(), 1)
		assert.Equal(ac.Id, d.Connections()[0].Id)
		assert.Len(d.Incoming(c.Id), 1)

		assert.Equal([]string{EventElementRemoved}, r.names())
		assert.Len(r.events[0].Connections, 2)
		assert.Empty(d.Validate())
	})

	t.Run("event holds a copy", func(t *testing.T) {
		// given
		d := newTestDocument()

		e := NewElement(ElementContainer, "Office")
		e.Members = []string{"review"}
		mustAddElement(t, d, e)

		stored := d.elements[e.Id]

		var r recorder
		d.AddListener(r.listen)

		// when
		d.RemoveElement(e.Id)

		// then
		require.Len(t, r.events, 1)

		removed := r.events[0].Element
		assert.NotSame(stored, removed)
		assert.Equal(stored, removed)

		removed.Members[0] = "changed"
		assert.Equal([]string{"review"}, stored.Members)
	})

	t.Run("returns false when element not exists", func(t *testing.T) {
		d := newTestDocument()

		var r recorder
		d.AddListener(r.listen)

		removed, ok := d.RemoveElement("not-existing")
		assert.False(ok)
		assert.Nil(removed)
		assert.False(d.IsModified())
		assert.Empty(r.events)
	})
}

func TestUpdateElement(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()
	e := mustAddElement(t, d, NewElement(ElementProcess, "Review"))

	t.Run("update element", func(t *testing.T) {
		var r recorder
		id := d.AddListener(r.listen)
		defer d.RemoveListener(id)

		e.Name = "Review application"
		assert.NoError(d.UpdateElement(e))

		updated, _ := d.Element(e.Id)
		assert.Equal("Review application", updated.Name)
		assert.Equal([]string{EventElementUpdated}, r.names())
	})

	t.Run("returns error when element not exists", func(t *testing.T) {
		err := d.UpdateElement(&Element{Id: "not-existing", Type: ElementProcess})
		assert.ErrorIs(err, ErrNotFound)

		var modelErr Error
		assert.True(errors.As(err, &modelErr))
		assert.Equal(ErrorNotFound, modelErr.Type)
		assert.Contains(modelErr.Detail, "not-existing")
	})

	t.Run("returns error when deadline is negative", func(t *testing.T) {
		e.DeadlineDays = -5
		assert.ErrorIs(d.UpdateElement(e), ErrNegativeDeadline)
	})
}

func TestAddConnection(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()
	a := mustAddElement(t, d, NewElement(ElementStart, "Start"))
	b := mustAddElement(t, d, NewElement(ElementEnd, "End"))

	t.Run("add connection", func(t *testing.T) {
		var r recorder
		id := d.AddListener(r.listen)
		defer d.RemoveListener(id)

		c := mustAddConnection(t, d, a.Id, b.Id)

		assert.Equal([]string{EventConnectionAdded}, r.names())
		assert.Equal(c, r.events[0].Connection)

		assert.Len(d.Outgoing(a.Id), 1)
		assert.Len(d.Incoming(b.Id), 1)
		assert.Empty(d.Incoming(a.Id))
		assert.Empty(d.Outgoing(b.Id))
		assert.Len(d.ConnectionsOf(a.Id), 1)
		assert.Equal(1, d.OutgoingCount(a.Id))
		assert.Equal(1, d.IncomingCount(b.Id))
	})

	t.Run("returns error when ID exists", func(t *testing.T) {
		c := mustAddConnection(t, d, a.Id, b.Id)
		assert.ErrorIs(d.AddConnection(c), ErrDuplicateId)
	})

	t.Run("returns error when endpoint not exists", func(t *testing.T) {
		c, err := NewConnection(a.Id, "not-existing", ConnectionSequence)
		require.NoError(t, err)
		assert.ErrorIs(d.AddConnection(c), ErrDanglingEndpoint)

		c, err = NewConnection("not-existing", b.Id, ConnectionSequence)
		require.NoError(t, err)
		assert.ErrorIs(d.AddConnection(c), ErrDanglingEndpoint)
	})

	t.Run("returns error when source equals target", func(t *testing.T) {
		_, err := NewConnection(a.Id, a.Id, ConnectionSequence)
		assert.ErrorIs(err, ErrSelfLoop)

		err = d.AddConnection(&Connection{Id: "loop", Source: a.Id, Target: a.Id})
		assert.ErrorIs(err, ErrSelfLoop)
	})

	t.Run("returns error when type is unknown", func(t *testing.T) {
		err := d.AddConnection(&Connection{Id: "untyped", Source: a.Id, Target: b.Id})
		assert.ErrorIs(err, ErrUnknownType)

		err = d.AddConnection(&Connection{Id: "unknown", Source: a.Id, Target: b.Id, Type: ConnectionType(99)})
		assert.ErrorIs(err, ErrUnknownType)

		_, ok := d.Connection("untyped")
		assert.False(ok)
		_, ok = d.Connection("unknown")
		assert.False(ok)
	})
}

func TestUpdateConnection(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()
	a := mustAddElement(t, d, NewElement(ElementStart, "Start"))
	b := mustAddElement(t, d, NewElement(ElementProcess, "Review"))
	c := mustAddElement(t, d, NewElement(ElementEnd, "End"))

	connection := mustAddConnection(t, d, a.Id, b.Id)

	t.Run("update connection target", func(t *testing.T) {
		connection.Target = c.Id
		connection.Waypoints = []Point{{X: 1, Y: 2}}

		assert.NoError(d.UpdateConnection(connection))

		assert.Empty(d.Incoming(b.Id))
		assert.Len(d.Incoming(c.Id), 1)

		updated, _ := d.Connection(connection.Id)
		assert.Equal([]Point{{X: 1, Y: 2}}, updated.Waypoints)
		assert.Empty(d.Validate())
	})

	t.Run("returns error when connection not exists", func(t *testing.T) {
		err := d.UpdateConnection(&Connection{Id: "not-existing", Source: a.Id, Target: b.Id})
		assert.ErrorIs(err, ErrNotFound)
	})

	t.Run("returns error when endpoint not exists", func(t *testing.T) {
		connection.Target = "not-existing"
		assert.ErrorIs(d.UpdateConnection(connection), ErrDanglingEndpoint)
	})

	t.Run("returns error when type is unknown", func(t *testing.T) {
		connection.Target = c.Id
		connection.Type = ConnectionType(99)
		assert.ErrorIs(d.UpdateConnection(connection), ErrUnknownType)

		stored, _ := d.Connection(connection.Id)
		assert.Equal(ConnectionSequence, stored.Type)
	})
}

func TestRemoveConnection(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()
	a := mustAddElement(t, d, NewElement(ElementStart, "Start"))
	b := mustAddElement(t, d, NewElement(ElementEnd, "End"))
	c := mustAddConnection(t, d, a.Id, b.Id)

	var r recorder
	d.AddListener(r.listen)

	removed, ok := d.RemoveConnection(c.Id)
	assert.True(ok)
	assert.Equal(c, removed)
	assert.Empty(d.Connections())
	assert.Empty(d.Outgoing(a.Id))
	assert.Equal([]string{EventConnectionRemoved}, r.names())

	_, ok = d.RemoveConnection(c.Id)
	assert.False(ok)
}

func TestClear(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()
	a := mustAddElement(t, d, NewElement(ElementStart, "Start"))
	b := mustAddElement(t, d, NewElement(ElementEnd, "End"))
	mustAddConnection(t, d, a.Id, b.Id)

	d.SetMetadata(Metadata{Title: "Building permit", Author: "Clerk"})

	var r recorder
	d.AddListener(r.listen)

	d.Clear()

	assert.Empty(d.Elements())
	assert.Empty(d.Connections())
	assert.Equal(DefaultTitle, d.Metadata().Title)
	assert.Empty(d.Metadata().Author)
	assert.False(d.IsModified())
	assert.Equal([]string{EventDocumentCleared}, r.names())
}

func TestListeners(t *testing.T) {
	assert := assert.New(t)

	t.Run("notified in attachment order", func(t *testing.T) {
		d := newTestDocument()

		var order []int
		d.AddListener(func(Event) error { order = append(order, 1); return nil })
		d.AddListener(func(Event) error { order = append(order, 2); return nil })
		d.AddListener(func(Event) error { order = append(order, 3); return nil })

		mustAddElement(t, d, NewElement(ElementProcess, "Review"))

		assert.Equal([]int{1, 2, 3}, order)
	})

	t.Run("failing listener does not stop other listeners", func(t *testing.T) {
		d := newTestDocument()

		var r recorder
		d.AddListener(func(Event) error { return errors.New("test") })
		d.AddListener(func(Event) error { panic("test") })
		d.AddListener(r.listen)

		e := NewElement(ElementProcess, "Review")
		assert.NoError(d.AddElement(e))

		assert.True(d.HasElement(e.Id))
		assert.Equal([]string{EventElementAdded}, r.names())
	})

	t.Run("detached listener is not notified", func(t *testing.T) {
		d := newTestDocument()

		var r recorder
		id := d.AddListener(r.listen)

		assert.True(d.RemoveListener(id))
		assert.False(d.RemoveListener(id))

		mustAddElement(t, d, NewElement(ElementProcess, "Review"))
		assert.Empty(r.events)
	})
}

func TestMarkSaved(t *testing.T) {
	assert := assert.New(t)

	d := newTestDocument()
	mustAddElement(t, d, NewElement(ElementProcess, "Review"))
	assert.True(d.IsModified())

	d.MarkSaved()
	assert.False(d.IsModified())

	d.SetMetadata(Metadata{Title: "Building permit"})
	assert.True(d.IsModified())
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	// given
	d := newTestDocument()
	a := mustAddElement(t, d, NewElement(ElementStart, "Start"))

	d.insertElement(&Element{Id: "unknown", Type: ElementType(99)})
	d.insertConnection(&Connection{Id: "untyped", Source: a.Id, Target: "unknown"})
	d.insertConnection(&Connection{Id: "dangling", Source: a.Id, Target: "missing", Type: ConnectionSequence})

	// when
	violations := d.Validate()

	// then
	assert.Equal([]Violation{
		{ElementId: "unknown", Message: "element unknown has an unknown type 99"},
		{ConnectionId: "untyped", Message: "connection untyped has an unknown type 0"},
		{ConnectionId: "dangling", Message: "connection dangling references a non-existent target element missing"},
	}, violations)
}

// TestReferentialIntegrity applies random sequences of adds and removes and checks that no connection dangles.
func TestReferentialIntegrity(t *testing.T) {
	assert := assert.New(t)

	rnd := rand.New(rand.NewSource(42))

	d := newTestDocument()

	var ids []string
	for i := 0; i < 2000; i++ {
		switch op := rnd.Intn(4); {
		case op == 0 || len(ids) < 2:
			e := NewElement(ElementProcess, "Task")
			mustAddElement(t, d, e)
			ids = append(ids, e.Id)
		case op == 1:
			source := ids[rnd.Intn(len(ids))]
			target := ids[rnd.Intn(len(ids))]
			if source != target {
				mustAddConnection(t, d, source, target)
			}
		case op == 2:
			i := rnd.Intn(len(ids))
			id := ids[i]

			before := d.Connections()
			removed, ok := d.RemoveElement(id)
			assert.True(ok)

			var expected int
			for _, c := range before {
				if c.Touches(id) {
					expected++
				}
			}
			assert.Len(removed, expected)
			assert.Len(d.Connections(), len(before)-expected)

			ids = append(ids[:i], ids[i+1:]...)
		default:
			connections := d.Connections()
			if len(connections) != 0 {
				d.RemoveConnection(connections[rnd.Intn(len(connections))].Id)
			}
		}

		for _, c := range d.Connections() {
			assert.True(d.HasElement(c.Source))
			assert.True(d.HasElement(c.Target))
		}
	}

	assert.Empty(d.Validate())
}
