package validation

import (
	"fmt"
	"slices"
)

// Result holds the findings of a validation, sorted into errors, warnings and infos.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Infos    []Issue `json:"infos"`

	ElementCount    int `json:"elementCount"`
	ConnectionCount int `json:"connectionCount"`
}

// Add adds an issue to the bucket of its severity.
func (r *Result) Add(issue Issue) {
	switch issue.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, issue)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		issue.Severity = SeverityInfo
		r.Infos = append(r.Infos, issue)
	}
}

// ByCategory returns all issues of the given category, ordered by severity.
func (r Result) ByCategory(category Category) []Issue {
	var issues []Issue
	for _, issue := range r.Issues() {
		if issue.Category == category {
			issues = append(issues, issue)
		}
	}
	return issues
}

// ByElement returns all issues, which relate to the given element, ordered by severity.
func (r Result) ByElement(elementId string) []Issue {
	var issues []Issue
	for _, issue := range r.Issues() {
		if issue.ElementId == elementId {
			issues = append(issues, issue)
		}
	}
	return issues
}

func (r Result) ErrorCount() int {
	return len(r.Errors)
}

func (r Result) InfoCount() int {
	return len(r.Infos)
}

// IsValid determines if the result has no errors. Warnings and infos do not invalidate a document.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Issues returns all issues: errors first, followed by warnings and infos.
func (r Result) Issues() []Issue {
	return slices.Concat(r.Errors, r.Warnings, r.Infos)
}

func (r Result) WarningCount() int {
	return len(r.Warnings)
}

func (r *Result) addError(category Category, elementId string, format string, a ...any) *Issue {
	return r.add(SeverityError, category, elementId, format, a...)
}

func (r *Result) addInfo(category Category, elementId string, format string, a ...any) *Issue {
	return r.add(SeverityInfo, category, elementId, format, a...)
}

func (r *Result) addWarning(category Category, elementId string, format string, a ...any) *Issue {
	return r.add(SeverityWarning, category, elementId, format, a...)
}

// add adds an issue and returns a pointer to it, which allows to set optional fields like the suggestion.
// The pointer is only valid until the next issue of the same severity is added.
func (r *Result) add(severity Severity, category Category, elementId string, format string, a ...any) *Issue {
	r.Add(Issue{
		Severity:  severity,
		Category:  category,
		Message:   fmt.Sprintf(format, a...),
		ElementId: elementId,
	})

	var issues []Issue
	switch severity {
	case SeverityError:
		issues = r.Errors
	case SeverityWarning:
		issues = r.Warnings
	default:
		issues = r.Infos
	}
	return &issues[len(issues)-1]
}

// Issue is a single finding.
type Issue struct {
	Severity     Severity `json:"severity"`
	Category     Category `json:"category"`
	Message      string   `json:"message"`
	ElementId    string   `json:"elementId,omitempty"`    // ID of the related element, if any.
	ConnectionId string   `json:"connectionId,omitempty"` // ID of the related connection, if any.
	Suggestion   string   `json:"suggestion,omitempty"`   // Remediation hint, if any.
}

func (i Issue) String() string {
	if i.ElementId != "" {
		return fmt.Sprintf("%s %s %s: %s", i.Severity, i.Category, i.ElementId, i.Message)
	}
	if i.ConnectionId != "" {
		return fmt.Sprintf("%s %s connection %s: %s", i.Severity, i.Category, i.ConnectionId, i.Message)
	}
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Category, i.Message)
}

// Category classifies an issue.
// Element validators, registered by a caller, may use own categories.
type Category string

const (
	// structural
	CategoryNoElements Category = "NO_ELEMENTS"
	CategoryStructure  Category = "STRUCTURE"

	// flow
	CategoryNoConnections Category = "NO_CONNECTIONS"
	CategoryNoStart       Category = "NO_START"
	CategoryNoEnd         Category = "NO_END"
	CategoryUnreachable   Category = "UNREACHABLE"
	CategoryDeadEnd       Category = "DEAD_END"
	CategoryDecision      Category = "DECISION"
	CategoryGateway       Category = "GATEWAY"

	// naming
	CategoryNameEmpty     Category = "NAME_EMPTY"
	CategoryNameTooShort  Category = "NAME_TOO_SHORT"
	CategoryNameTooLong   Category = "NAME_TOO_LONG"
	CategoryNameDuplicate Category = "NAME_DUPLICATE"
	CategoryNameStyle     Category = "NAME_STYLE"

	// completeness
	CategoryTitle              Category = "TITLE"
	CategoryDescription        Category = "DESCRIPTION"
	CategoryAuthor             Category = "AUTHOR"
	CategoryElementDescription Category = "ELEMENT_DESCRIPTION"

	// element specific
	CategoryCounter      Category = "COUNTER"
	CategoryCondition    Category = "CONDITION"
	CategoryErrorHandler Category = "ERROR_HANDLER"
	CategoryState        Category = "STATE"
	CategoryInterlock    Category = "INTERLOCK"
)

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
)

func MapSeverity(s string) Severity {
	switch s {
	case "ERROR":
		return SeverityError
	case "WARNING":
		return SeverityWarning
	case "INFO":
		return SeverityInfo
	default:
		return 0
	}
}

func (v Severity) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v Severity) String() string {
	switch v {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	default:
		return ""
	}
}

func (v *Severity) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapSeverity(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid severity data %s", s)
	}
	return nil
}
