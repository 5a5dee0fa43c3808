package common

import (
	"fmt"
	"strings"
)

// ProblemType determines if a problem is HTTP or document related.
type ProblemType int

const (
	ProblemHttpMediaType ProblemType = iota + 1
	ProblemHttpRequestBody
	ProblemHttpRequestUri
	ProblemValidation

	// document error types
	ProblemDocumentFormat
	ProblemDuplicateId
	ProblemIntegrity
	ProblemNotFound
)

func MapProblemType(s string) ProblemType {
	switch s {
	case "HTTP_MEDIA_TYPE":
		return ProblemHttpMediaType
	case "HTTP_REQUEST_BODY":
		return ProblemHttpRequestBody
	case "HTTP_REQUEST_URI":
		return ProblemHttpRequestUri
	case "VALIDATION":
		return ProblemValidation
	case "DOCUMENT_FORMAT":
		return ProblemDocumentFormat
	case "DUPLICATE_ID":
		return ProblemDuplicateId
	case "INTEGRITY":
		return ProblemIntegrity
	case "NOT_FOUND":
		return ProblemNotFound
	default:
		return 0
	}
}

func (v ProblemType) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", v.String())), nil
}

func (v ProblemType) String() string {
	switch v {
	case ProblemHttpMediaType:
		return "HTTP_MEDIA_TYPE"
	case ProblemHttpRequestBody:
		return "HTTP_REQUEST_BODY"
	case ProblemHttpRequestUri:
		return "HTTP_REQUEST_URI"
	case ProblemValidation:
		return "VALIDATION"
	case ProblemDocumentFormat:
		return "DOCUMENT_FORMAT"
	case ProblemDuplicateId:
		return "DUPLICATE_ID"
	case ProblemIntegrity:
		return "INTEGRITY"
	case ProblemNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

func (v *ProblemType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid problem type data %s", s)
	}
	*v = MapProblemType(s[1 : len(s)-1])
	return nil
}

// Common format for HTTP 4xx error responses, based on https://datatracker.ietf.org/doc/html/rfc9457.
type Problem struct {
	Status int         `json:"status" validate:"required"` // HTTP status code.
	Type   ProblemType `json:"type" validate:"required"`   // Problem type.
	Title  string      `json:"title" validate:"required"`  // Human-readable problem summary.
	Detail string      `json:"detail" validate:"required"` // Human-readable, detailed information about the problem.
	Errors []Error     `json:"errors,omitempty"`           // Validation errors.
}

func (v Problem) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("HTTP %d: %s: %s: %s", v.Status, v.Type, v.Title, v.Detail))

	for i := range v.Errors {
		sb.WriteRune('\n')
		sb.WriteString(v.Errors[i].String())
	}

	return sb.String()
}

// Error represents a failed validation, pointing on a path or query parameter.
type Error struct {
	// A pointer, locating the invalid parameter - e.g. name or ?naming.
	Pointer string `json:"pointer" validate:"required"`
	// Error type.
	//
	//   - `boolean`: value is not a boolean
	//   - `document_name`: value is not a valid document name
	Type string `json:"type" validate:"required"`
	// Human-readable, detailed information about the error.
	Detail string `json:"detail" validate:"required"`
	// Value that caused the validation error.
	Value string `json:"value,omitempty"`
}

func (v Error) String() string {
	return fmt.Sprintf("%s: %s", v.Pointer, v.Detail)
}
