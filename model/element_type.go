package model

import "fmt"

// ElementType describes the different element types of a process diagram - generic shapes and logic elements.
type ElementType int

const (
	ElementAnnotation ElementType = iota + 1
	ElementCondition
	ElementContainer
	ElementCounter
	ElementDataStore
	ElementDecision
	ElementDocument
	ElementEnd
	ElementErrorHandler
	ElementGateway
	ElementInterlock
	ElementProcess
	ElementStart
	ElementState
	ElementSubprocess
)

// ElementTypes returns all element types of the catalog.
func ElementTypes() []ElementType {
	types := make([]ElementType, 0, ElementSubprocess)
	for v := ElementAnnotation; v <= ElementSubprocess; v++ {
		types = append(types, v)
	}
	return types
}

func MapElementType(s string) ElementType {
	switch s {
	case "annotation":
		return ElementAnnotation
	case "condition":
		return ElementCondition
	case "container":
		return ElementContainer
	case "counter":
		return ElementCounter
	case "data_store":
		return ElementDataStore
	case "decision":
		return ElementDecision
	case "document":
		return ElementDocument
	case "end":
		return ElementEnd
	case "error_handler":
		return ElementErrorHandler
	case "gateway":
		return ElementGateway
	case "interlock":
		return ElementInterlock
	case "process":
		return ElementProcess
	case "start":
		return ElementStart
	case "state":
		return ElementState
	case "subprocess":
		return ElementSubprocess
	default:
		return 0
	}
}

// IsLogic determines if the type is one of the logic element families, which carry a payload.
func (v ElementType) IsLogic() bool {
	switch v {
	case
		ElementCondition,
		ElementCounter,
		ElementErrorHandler,
		ElementInterlock,
		ElementState:
		return true
	default:
		return false
	}
}

func (v ElementType) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v ElementType) String() string {
	switch v {
	case ElementAnnotation:
		return "annotation"
	case ElementCondition:
		return "condition"
	case ElementContainer:
		return "container"
	case ElementCounter:
		return "counter"
	case ElementDataStore:
		return "data_store"
	case ElementDecision:
		return "decision"
	case ElementDocument:
		return "document"
	case ElementEnd:
		return "end"
	case ElementErrorHandler:
		return "error_handler"
	case ElementGateway:
		return "gateway"
	case ElementInterlock:
		return "interlock"
	case ElementProcess:
		return "process"
	case ElementStart:
		return "start"
	case ElementState:
		return "state"
	case ElementSubprocess:
		return "subprocess"
	default:
		return ""
	}
}

func (v *ElementType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapElementType(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid element type data %s", s)
	}
	return nil
}

// ConnectionType describes the different types of directed edges between elements.
type ConnectionType int

const (
	ConnectionAssociation ConnectionType = iota + 1
	ConnectionData
	ConnectionDependency
	ConnectionInformation
	ConnectionSequence
)

// ConnectionTypes returns all connection types.
func ConnectionTypes() []ConnectionType {
	types := make([]ConnectionType, 0, ConnectionSequence)
	for v := ConnectionAssociation; v <= ConnectionSequence; v++ {
		types = append(types, v)
	}
	return types
}

func MapConnectionType(s string) ConnectionType {
	switch s {
	case "association":
		return ConnectionAssociation
	case "data":
		return ConnectionData
	case "dependency":
		return ConnectionDependency
	case "information":
		return ConnectionInformation
	case "sequence":
		return ConnectionSequence
	default:
		return 0
	}
}

func (v ConnectionType) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v ConnectionType) String() string {
	switch v {
	case ConnectionAssociation:
		return "association"
	case ConnectionData:
		return "data"
	case ConnectionDependency:
		return "dependency"
	case ConnectionInformation:
		return "information"
	case ConnectionSequence:
		return "sequence"
	default:
		return ""
	}
}

func (v *ConnectionType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapConnectionType(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid connection type data %s", s)
	}
	return nil
}
