package validation

import "github.com/gclaussn/go-procdoc/model"

// checkStructure reports referential integrity violations and empty documents.
func checkStructure(d *model.Document, r *Result) {
	if d.ElementCount() == 0 {
		r.addError(CategoryNoElements, "", "document has no elements").
			Suggestion = "add at least a start and an end element"
		return
	}

	for _, violation := range d.Validate() {
		r.addError(CategoryStructure, violation.ElementId, "%s", violation.Message).
			ConnectionId = violation.ConnectionId
	}
}
