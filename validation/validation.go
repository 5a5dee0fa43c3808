// Package validation checks process documents for structural, flow, naming and completeness issues.
//
// Findings are accumulated in a [Result] and never returned as errors: a document with validation errors is still a valid in-memory object.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
)

// New creates a validation engine, which has the validators of all logic element families registered.
func New(customizers ...func(*Options)) (*Engine, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	e := Engine{
		options:    options,
		validators: make(map[model.ElementType]ElementValidator),
	}

	e.Register(model.ElementCondition, validateCondition)
	e.Register(model.ElementCounter, validateCounter)
	e.Register(model.ElementErrorHandler, validateErrorHandler)
	e.Register(model.ElementInterlock, validateInterlock)
	e.Register(model.ElementState, validateState)

	return &e, nil
}

func NewOptions() Options {
	return Options{
		NamingEnabled:       true,
		FlowEnabled:         true,
		CompletenessEnabled: true,

		MinNameLength: 3,
		MaxNameLength: 100,

		Logger: logr.Discard(),
	}
}

// Options are used to enable or disable check groups and to configure thresholds.
// Structural checks and element specific checks always run.
type Options struct {
	NamingEnabled       bool
	FlowEnabled         bool
	CompletenessEnabled bool

	MinNameLength int `validate:"gte=0"`                        // Names with fewer characters result in a warning.
	MaxNameLength int `validate:"gte=1,gtefield=MinNameLength"` // Names with more characters result in a warning.

	Logger logr.Logger
}

func (o Options) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, len(validationErrors))
	for i, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "gte":
			messages[i] = fmt.Sprintf("%s must be greater than or equal to %s", optionName(fieldError.Field()), fieldError.Param())
		case "gtefield":
			messages[i] = fmt.Sprintf("%s must be greater than or equal to %s", optionName(fieldError.Field()), optionName(fieldError.Param()))
		default:
			messages[i] = fmt.Sprintf("%s is invalid", optionName(fieldError.Field()))
		}
	}

	return errors.New(strings.Join(messages, "; "))
}

func optionName(field string) string {
	switch field {
	case "MinNameLength":
		return "min name length"
	case "MaxNameLength":
		return "max name length"
	default:
		return field
	}
}

// An ElementValidator checks a single element of a specific type.
// The owning document is provided for cross reference checks.
// Findings must be added to the result.
type ElementValidator func(e *model.Element, d *model.Document, r *Result)

// Engine runs the enabled check groups against a document.
// After creation, an engine can be used to validate any number of documents.
type Engine struct {
	options    Options
	validators map[model.ElementType]ElementValidator
}

// Register adds or replaces the validator for an element type.
func (e *Engine) Register(elementType model.ElementType, v ElementValidator) {
	e.validators[elementType] = v
}

// Validate checks a document and returns all findings.
// The document is not changed.
func (e *Engine) Validate(d *model.Document) Result {
	r := Result{
		ElementCount:    d.ElementCount(),
		ConnectionCount: d.ConnectionCount(),
	}

	checkStructure(d, &r)

	if d.ElementCount() != 0 {
		if e.options.FlowEnabled {
			checkFlow(d, &r)
		}
		if e.options.NamingEnabled {
			checkNaming(d, &r, e.options.MinNameLength, e.options.MaxNameLength)
		}
		if e.options.CompletenessEnabled {
			checkCompleteness(d, &r)
		}

		for _, element := range d.Elements() {
			if v, ok := e.validators[element.Type]; ok {
				v(element, d, &r)
			}
		}
	}

	e.options.Logger.V(1).Info("validated document",
		"title", d.Metadata().Title,
		"errors", r.ErrorCount(),
		"warnings", r.WarningCount(),
		"infos", r.InfoCount(),
	)

	return r
}
