package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gclaussn/go-procdoc/model"
)

// checkNaming reports empty, too short, too long, duplicate and lowercase element names.
func checkNaming(d *model.Document, r *Result, minLength int, maxLength int) {
	owners := make(map[string]string) // mapping between name and ID of the first element, having the name

	for _, e := range d.Elements() {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			r.addError(CategoryNameEmpty, e.Id, "%s element %s has no name", e.Type, e.Id).
				Suggestion = "give the element a meaningful name"
			continue
		}

		length := utf8.RuneCountInString(name)
		if length < minLength {
			r.addWarning(CategoryNameTooShort, e.Id, "name %q is shorter than %d characters", name, minLength)
		}
		if length > maxLength {
			r.addWarning(CategoryNameTooLong, e.Id, "name %q is longer than %d characters", shorten(name, 40), maxLength)
		}

		if owner, ok := owners[name]; ok {
			r.addWarning(CategoryNameDuplicate, e.Id, "name %q is already used by element %s", name, owner).
				Suggestion = "use unique names to distinguish elements"
		} else {
			owners[name] = e.Id
		}

		if first, _ := utf8.DecodeRuneInString(name); !unicode.IsUpper(first) {
			r.addInfo(CategoryNameStyle, e.Id, "name %q does not start with an uppercase letter", name)
		}
	}
}

// displayName returns the element's name or, if empty, its ID.
func displayName(e *model.Element) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Id
}

func elementName(d *model.Document, id string) string {
	if e, ok := d.Element(id); ok {
		return displayName(e)
	}
	return id
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
