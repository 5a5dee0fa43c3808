package validation

import (
	"strings"
	"testing"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/stretchr/testify/assert"
)

func TestNaming(t *testing.T) {
	assert := assert.New(t)

	e := mustCreateEngine(t, func(o *Options) {
		o.FlowEnabled = false
		o.CompletenessEnabled = false
		o.MaxNameLength = 20
	})

	tests := []struct {
		name     string
		expected []Category
	}{
		{"Review", nil},
		{"", []Category{CategoryNameEmpty}},
		{"   ", []Category{CategoryNameEmpty}},
		{"Ab", []Category{CategoryNameTooShort}},
		{"Äbc", nil},
		{strings.Repeat("A", 21), []Category{CategoryNameTooLong}},
		{"review", []Category{CategoryNameStyle}},
		{"1st review", []Category{CategoryNameStyle}},
		{"ab", []Category{CategoryNameTooShort, CategoryNameStyle}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := model.New()
			element := mustAddElement(t, d, model.NewElement(model.ElementProcess, test.name))

			r := e.Validate(d)

			issues := r.ByElement(element.Id)
			if test.expected == nil {
				assert.Empty(issues)
			} else {
				assert.Equal(test.expected, categories(issues))
			}
		})
	}

	t.Run("empty name is an error", func(t *testing.T) {
		d := model.New()
		mustAddElement(t, d, model.NewElement(model.ElementProcess, ""))

		r := e.Validate(d)

		assert.False(r.IsValid())
		assert.Equal(SeverityError, r.ByCategory(CategoryNameEmpty)[0].Severity)
	})

	t.Run("duplicate names", func(t *testing.T) {
		// given
		d := model.New()
		first := mustAddElement(t, d, model.NewElement(model.ElementProcess, "Task"))
		second := mustAddElement(t, d, model.NewElement(model.ElementProcess, "Task"))
		mustAddElement(t, d, model.NewElement(model.ElementProcess, "Other task"))
		third := mustAddElement(t, d, model.NewElement(model.ElementDecision, "Task"))

		// when
		r := e.Validate(d)

		// then
		issues := r.ByCategory(CategoryNameDuplicate)
		assert.Len(issues, 2)
		assert.Equal(second.Id, issues[0].ElementId)
		assert.Equal(third.Id, issues[1].ElementId)
		assert.Contains(issues[0].Message, first.Id)
		assert.Contains(issues[1].Message, first.Id)
		assert.Equal(SeverityWarning, issues[0].Severity)
	})

	t.Run("disabled", func(t *testing.T) {
		e := mustCreateEngine(t, func(o *Options) {
			o.NamingEnabled = false
		})

		d := model.New()
		mustAddElement(t, d, model.NewElement(model.ElementProcess, ""))

		r := e.Validate(d)

		assert.True(r.IsValid())
		assert.Empty(r.ByCategory(CategoryNameEmpty))
	})
}
