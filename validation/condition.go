package validation

import (
	"strings"

	"github.com/gclaussn/go-procdoc/model"
)

func validateCondition(e *model.Element, d *model.Document, r *Result) {
	condition, ok := e.Condition()
	if !ok {
		return
	}

	name := displayName(e)

	if len(condition.Checks) == 0 {
		r.addError(CategoryCondition, e.Id, "condition %s has no checks", name).
			Suggestion = "add at least one check"
	}

	for i, check := range condition.Checks {
		if !check.Operator.IsValid() {
			r.addError(CategoryCondition, e.Id, "check #%d of condition %s has an invalid operator %q", i+1, name, check.Operator).
				Suggestion = "use one of ==, !=, <, >, <=, >=, contains or regex"
		}
		if strings.TrimSpace(check.Field) == "" {
			r.addError(CategoryCondition, e.Id, "check #%d of condition %s has no field", i+1, name)
		}
		if strings.TrimSpace(check.Value) == "" {
			r.addError(CategoryCondition, e.Id, "check #%d of condition %s has no value", i+1, name)
		}
	}

	if condition.TrueTarget != "" && !d.HasElement(condition.TrueTarget) {
		r.addError(CategoryCondition, e.Id, "condition %s references a non-existent true target %s", name, condition.TrueTarget)
	}
	if condition.FalseTarget != "" && !d.HasElement(condition.FalseTarget) {
		r.addError(CategoryCondition, e.Id, "condition %s references a non-existent false target %s", name, condition.FalseTarget)
	}
	if condition.TrueTarget == "" && condition.FalseTarget == "" {
		r.addWarning(CategoryCondition, e.Id, "condition %s has no outcome wired", name).
			Suggestion = "set a true or a false target"
	}

	if d.IncomingCount(e.Id) == 0 {
		r.addWarning(CategoryCondition, e.Id, "condition %s has no incoming connections", name)
	}
}
