package validation

import (
	"strings"

	"github.com/gclaussn/go-procdoc/model"
)

func validateState(e *model.Element, d *model.Document, r *Result) {
	state, ok := e.State()
	if !ok {
		return
	}

	name := displayName(e)

	if strings.TrimSpace(state.Name) == "" {
		r.addError(CategoryState, e.Id, "state %s has no state name", name)
	}
	if !state.Type.IsValid() {
		r.addError(CategoryState, e.Id, "state %s has an invalid type %q", name, state.Type).
			Suggestion = "use one of NORMAL, INITIAL, FINAL or ERROR"
	}

	if state.Type == model.StateInitial {
		if n := countInitialStates(d); n > 1 {
			r.addError(CategoryState, e.Id, "state %s is one of multiple INITIAL states (%d)", name, n).
				Suggestion = "use exactly one INITIAL state"
		}
	}

	for i, transition := range state.Transitions {
		if transition.Target != "" && !d.HasElement(transition.Target) {
			r.addWarning(CategoryState, e.Id, "transition #%d of state %s references a non-existent target %s", i+1, name, transition.Target)
		}
	}

	if state.EntryAction != "" {
		r.addInfo(CategoryState, e.Id, "state %s executes entry action %q", name, state.EntryAction)
	}
	if state.ExitAction != "" {
		r.addInfo(CategoryState, e.Id, "state %s executes exit action %q", name, state.ExitAction)
	}

	if state.Timeout > 0 && state.TimeoutTarget == "" {
		r.addWarning(CategoryState, e.Id, "state %s has a timeout of %d, but no timeout target", name, state.Timeout)
	}

	switch state.Type {
	case model.StateInitial:
		if d.IncomingCount(e.Id) != 0 {
			r.addWarning(CategoryState, e.Id, "INITIAL state %s has incoming connections", name)
		}
	case model.StateFinal:
		if d.OutgoingCount(e.Id) != 0 {
			r.addWarning(CategoryState, e.Id, "FINAL state %s has outgoing connections", name)
		}
	case model.StateNormal:
		if len(state.Transitions) == 0 {
			r.addInfo(CategoryState, e.Id, "state %s has no transitions", name)
		}
	}
}

func countInitialStates(d *model.Document) int {
	var n int
	for _, e := range d.ElementsByType(model.ElementState) {
		if state, ok := e.State(); ok && state.Type == model.StateInitial {
			n++
		}
	}
	return n
}
