package validation

import (
	"strings"

	"github.com/gclaussn/go-procdoc/model"
)

// checkCompleteness reports missing document metadata and elements without description.
func checkCompleteness(d *model.Document, r *Result) {
	metadata := d.Metadata()

	if title := strings.TrimSpace(metadata.Title); title == "" || title == model.DefaultTitle {
		r.addWarning(CategoryTitle, "", "document has no title").
			Suggestion = "set a title, which describes the process"
	}
	if strings.TrimSpace(metadata.Description) == "" {
		r.addInfo(CategoryDescription, "", "document has no description")
	}
	if strings.TrimSpace(metadata.Author) == "" {
		r.addInfo(CategoryAuthor, "", "document has no author")
	}

	var count int
	for _, e := range d.Elements() {
		if strings.TrimSpace(e.Description) == "" {
			count++
		}
	}
	if count != 0 {
		r.addInfo(CategoryElementDescription, "", "%d of %d elements have no description", count, d.ElementCount())
	}
}
