package model

import (
	"slices"

	"github.com/google/uuid"
)

// NewElement creates an element of the given type with a new ID.
// Logic elements are initialized with the default payload of their family.
func NewElement(elementType ElementType, name string) *Element {
	return &Element{
		Id:    NewId(),
		Type:  elementType,
		Name:  name,
		Model: DefaultPayload(elementType),
	}
}

// NewId returns a new random element or connection ID.
func NewId() string {
	return uuid.NewString()
}

type Element struct {
	Id          string
	Type        ElementType
	Name        string
	Description string
	X           float64
	Y           float64

	ResponsibleAuthority string
	LegalBasis           string
	DeadlineDays         int // Deadline in days, must not be negative.
	GeoReference         string
	RefFile              string
	Members              []string // IDs of member elements, used by containers.
	Collapsed            bool

	// Family specific model, which is nil for generic shapes.
	// If set, the payload's element type must equal the element's type.
	Model Payload
}

// cloneNonEmpty copies a slice. Empty slices are returned as nil, so that a document holds a single representation.
func cloneNonEmpty[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}

	c := *e
	c.Members = cloneNonEmpty(e.Members)
	if e.Model != nil {
		c.Model = e.Model.clone()
	}
	return &c
}

func (e *Element) Counter() (Counter, bool) {
	v, ok := e.Model.(Counter)
	return v, ok
}

func (e *Element) Condition() (Condition, bool) {
	v, ok := e.Model.(Condition)
	return v, ok
}

func (e *Element) ErrorHandler() (ErrorHandler, bool) {
	v, ok := e.Model.(ErrorHandler)
	return v, ok
}

func (e *Element) State() (State, bool) {
	v, ok := e.Model.(State)
	return v, ok
}

func (e *Element) Interlock() (Interlock, bool) {
	v, ok := e.Model.(Interlock)
	return v, ok
}

// Payload is the family specific model of a logic element.
// It is implemented by [Counter], [Condition], [ErrorHandler], [State] and [Interlock].
type Payload interface {
	// ElementType returns the type of elements, the payload belongs to.
	ElementType() ElementType

	clone() Payload
}

// DefaultPayload returns the default payload for an element type or nil, if the type is not a logic element family.
func DefaultPayload(elementType ElementType) Payload {
	switch elementType {
	case ElementCounter:
		return Counter{Direction: CounterUp, MaxValue: 10}
	case ElementCondition:
		return Condition{Logic: LogicAnd}
	case ElementErrorHandler:
		return ErrorHandler{
			Type:       HandlerRetry,
			RetryCount: 3,
			RetryDelay: 5,
			Timeout:    30,
			LogErrors:  true,
		}
	case ElementState:
		return State{Type: StateNormal}
	case ElementInterlock:
		return Interlock{Type: LockMutex, MaxCount: 1, AutoRelease: true}
	default:
		return nil
	}
}

// element specific models

type CounterDirection string

const (
	CounterUp     CounterDirection = "UP"
	CounterDown   CounterDirection = "DOWN"
	CounterUpDown CounterDirection = "UP_DOWN"
)

func (v CounterDirection) IsValid() bool {
	switch v {
	case CounterUp, CounterDown, CounterUpDown:
		return true
	default:
		return false
	}
}

type Counter struct {
	Direction    CounterDirection
	StartValue   int
	MaxValue     int
	CurrentValue int
	ResetOnMax   bool
	OnMaxReached string // ID of the element, which is continued when the max value is reached.
}

func (Counter) ElementType() ElementType {
	return ElementCounter
}

func (v Counter) clone() Payload {
	return v
}

type Operator string

const (
	OperatorEqual          Operator = "=="
	OperatorNotEqual       Operator = "!="
	OperatorLess           Operator = "<"
	OperatorGreater        Operator = ">"
	OperatorLessOrEqual    Operator = "<="
	OperatorGreaterOrEqual Operator = ">="
	OperatorContains       Operator = "contains"
	OperatorRegex          Operator = "regex"
)

// Operators returns all recognized check operators.
func Operators() []Operator {
	return []Operator{
		OperatorEqual,
		OperatorNotEqual,
		OperatorLess,
		OperatorGreater,
		OperatorLessOrEqual,
		OperatorGreaterOrEqual,
		OperatorContains,
		OperatorRegex,
	}
}

func (v Operator) IsValid() bool {
	return slices.Contains(Operators(), v)
}

type CheckType string

const (
	CheckString  CheckType = "string"
	CheckNumber  CheckType = "number"
	CheckDate    CheckType = "date"
	CheckBoolean CheckType = "boolean"
)

type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

type Check struct {
	Field    string
	Operator Operator
	Value    string
	Type     CheckType
}

type Condition struct {
	Checks      []Check
	Logic       Logic
	TrueTarget  string
	FalseTarget string
}

func (Condition) ElementType() ElementType {
	return ElementCondition
}

func (v Condition) clone() Payload {
	v.Checks = cloneNonEmpty(v.Checks)
	return v
}

type HandlerType string

const (
	HandlerRetry    HandlerType = "RETRY"
	HandlerFallback HandlerType = "FALLBACK"
	HandlerNotify   HandlerType = "NOTIFY"
	HandlerAbort    HandlerType = "ABORT"
)

func (v HandlerType) IsValid() bool {
	switch v {
	case HandlerRetry, HandlerFallback, HandlerNotify, HandlerAbort:
		return true
	default:
		return false
	}
}

type ErrorHandler struct {
	Type            HandlerType
	RetryCount      int
	RetryDelay      int // Delay between retries in seconds.
	Timeout         int // Timeout in seconds, 0 disables the timeout.
	OnErrorTarget   string
	OnSuccessTarget string
	LogErrors       bool
}

func (ErrorHandler) ElementType() ElementType {
	return ElementErrorHandler
}

func (v ErrorHandler) clone() Payload {
	return v
}

type StateType string

const (
	StateNormal  StateType = "NORMAL"
	StateInitial StateType = "INITIAL"
	StateFinal   StateType = "FINAL"
	StateError   StateType = "ERROR"
)

func (v StateType) IsValid() bool {
	switch v {
	case StateNormal, StateInitial, StateFinal, StateError:
		return true
	default:
		return false
	}
}

type Transition struct {
	Event     string
	Target    string
	Condition string
}

type State struct {
	Name          string
	Type          StateType
	EntryAction   string
	ExitAction    string
	Transitions   []Transition
	Timeout       int // Timeout in seconds.
	TimeoutTarget string
}

func (State) ElementType() ElementType {
	return ElementState
}

func (v State) clone() Payload {
	v.Transitions = cloneNonEmpty(v.Transitions)
	return v
}

type LockType string

const (
	LockMutex     LockType = "MUTEX"
	LockSemaphore LockType = "SEMAPHORE"
)

func (v LockType) IsValid() bool {
	return v == LockMutex || v == LockSemaphore
}

type Interlock struct {
	Type           LockType
	ResourceId     string
	MaxCount       int // Maximum number of concurrent holders, 1 for a mutex.
	Timeout        int // Timeout in seconds, 0 waits indefinitely.
	OnLockedTarget string
	AutoRelease    bool
}

func (Interlock) ElementType() ElementType {
	return ElementInterlock
}

func (v Interlock) clone() Payload {
	return v
}
