package validation

import (
	"testing"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	assert := assert.New(t)

	e := mustCreateEngine(t)

	newCounter := func(counter model.Counter) *model.Element {
		return &model.Element{Id: "counter", Type: model.ElementCounter, Name: "Counter", Description: "Attempts", Model: counter}
	}

	t.Run("valid", func(t *testing.T) {
		d := newTestDocument(t)
		mustInsert(t, d, newCounter(model.Counter{Direction: model.CounterUp, StartValue: 0, MaxValue: 10}))

		r := e.Validate(d)

		assert.Empty(r.ByElement("counter"))
		assert.True(r.IsValid())
	})

	t.Run("max value less than start value", func(t *testing.T) {
		d := newTestDocument(t)
		mustInsert(t, d, newCounter(model.Counter{Direction: model.CounterUp, StartValue: 10, MaxValue: 5, CurrentValue: 7}))

		r := e.Validate(d)

		errors := filter(r.ByElement("counter"), SeverityError)
		assert.Len(errors, 1)
		assert.Contains(errors[0].Message, "max value")
		assert.Contains(errors[0].Message, "start value")
		assert.Equal(CategoryCounter, errors[0].Category)
	})

	t.Run("invalid", func(t *testing.T) {
		// given
		d := newTestDocument(t)
		mustInsert(t, d, newCounter(model.Counter{
			Direction:    "SIDEWAYS",
			StartValue:   5,
			MaxValue:     5,
			CurrentValue: 6,
			OnMaxReached: "not-existing",
		}))

		// when
		r := e.Validate(d)

		// then
		issues := r.ByElement("counter")
		assert.Len(filter(issues, SeverityError), 3)
		assert.Len(filter(issues, SeverityWarning), 1)
		assert.Contains(issues[0].Message, "SIDEWAYS")
		assert.Contains(issues[2].Message, "not-existing")
		assert.Contains(issues[3].Message, "outside of [5, 5]")
	})

	t.Run("current value of down counter", func(t *testing.T) {
		d := newTestDocument(t)
		mustInsert(t, d, newCounter(model.Counter{Direction: model.CounterDown, StartValue: 1, MaxValue: 10, CurrentValue: 10}))

		r := e.Validate(d)

		assert.Empty(r.ByElement("counter"))
	})

	t.Run("not connected", func(t *testing.T) {
		d := newTestDocument(t)
		mustConnect(t, d, startId, endId)
		mustAddElement(t, d, newCounter(model.Counter{Direction: model.CounterUp, MaxValue: 10, OnMaxReached: endId}))

		r := e.Validate(d)

		issues := r.ByElement("counter")
		assert.Len(issues, 2)
		assert.Contains(issues[0].Message, "no incoming")
		assert.Contains(issues[1].Message, "no outgoing")
	})
}
