package validation

import "github.com/gclaussn/go-procdoc/model"

func validateCounter(e *model.Element, d *model.Document, r *Result) {
	counter, ok := e.Counter()
	if !ok {
		return
	}

	name := displayName(e)

	if !counter.Direction.IsValid() {
		r.addError(CategoryCounter, e.Id, "counter %s has an invalid direction %q", name, counter.Direction).
			Suggestion = "use one of UP, DOWN or UP_DOWN"
	}
	if counter.MaxValue <= counter.StartValue {
		r.addError(CategoryCounter, e.Id, "counter %s has a max value of %d, which must be greater than the start value of %d", name, counter.MaxValue, counter.StartValue)
	}
	if counter.OnMaxReached != "" && !d.HasElement(counter.OnMaxReached) {
		r.addError(CategoryCounter, e.Id, "counter %s references a non-existent max reached target %s", name, counter.OnMaxReached)
	}

	lower, upper := min(counter.StartValue, counter.MaxValue), max(counter.StartValue, counter.MaxValue)
	if counter.CurrentValue < lower || counter.CurrentValue > upper {
		r.addWarning(CategoryCounter, e.Id, "counter %s has a current value of %d, which is outside of [%d, %d]", name, counter.CurrentValue, lower, upper)
	}

	if d.IncomingCount(e.Id) == 0 && d.OutgoingCount(e.Id) == 0 {
		r.addWarning(CategoryCounter, e.Id, "counter %s has no incoming connections", name)
		r.addWarning(CategoryCounter, e.Id, "counter %s has no outgoing connections", name)
	}
}
