package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/xeipuuv/gojsonschema"
)

// FormatVersion is the version of the persisted document format.
const FormatVersion = "2.0"

// Decode reads a document in the persisted JSON format.
//
// The input is checked against the format's JSON schema. Schema violations and malformed JSON are returned as an error of type [ErrorFormat].
// Duplicate element or connection IDs result in an error of type [ErrorDuplicateId].
// Dangling endpoints, self loops and negative deadlines are loaded as they are - see [Document.Validate].
// Fields, which are absent, are set to their default values.
//
// The decoded document is not modified.
func Decode(r io.Reader, customizers ...func(*Options)) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Error{Type: ErrorFormat, Title: "failed to decode document", Detail: fmt.Sprintf("failed to read data: %v", err)}
	}
	return Unmarshal(data, customizers...)
}

// Encode writes a document in the persisted JSON format.
func Encode(w io.Writer, d *Document) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Digest returns the hex encoded SHA-256 hash of the canonical JSON (RFC 8785) representation of a document.
func Digest(d *Document) (string, error) {
	data, err := json.Marshal(newDocumentJSON(d))
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %v", err)
	}
	data, err = jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize document: %v", err)
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// Marshal returns the document in the persisted, indented JSON format.
func Marshal(d *Document) ([]byte, error) {
	data, err := json.MarshalIndent(newDocumentJSON(d), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %v", err)
	}
	return data, nil
}

// Unmarshal parses a document in the persisted JSON format - see [Decode].
func Unmarshal(data []byte, customizers ...func(*Options)) (*Document, error) {
	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var v documentJSON

	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&v); err != nil {
		return nil, Error{Type: ErrorFormat, Title: "failed to decode document", Detail: fmt.Sprintf("failed to unmarshal JSON: %v", err)}
	}

	d := New(customizers...)
	if err := v.populate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the content of the document with a document, read from r.
// Attached listeners are kept and notified with a [EventDocumentLoaded] event.
// If decoding fails, the document is not changed.
func (d *Document) Load(r io.Reader) error {
	loaded, err := Decode(r, func(o *Options) {
		o.Logger = d.logger
		o.Now = d.now
	})
	if err != nil {
		return err
	}

	d.metadata = loaded.metadata
	d.modified = false
	d.elements = loaded.elements
	d.elementIds = loaded.elementIds
	d.connections = loaded.connections
	d.connectionIds = loaded.connectionIds
	d.outgoing = loaded.outgoing
	d.incoming = loaded.incoming

	d.publish(Event{Name: EventDocumentLoaded})
	return nil
}

func checkSchema(data []byte) error {
	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Error{Type: ErrorFormat, Title: "failed to decode document", Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	causes := make([]string, len(result.Errors()))
	for i, resultError := range result.Errors() {
		causes[i] = resultError.String()
	}

	return Error{
		Type:   ErrorFormat,
		Title:  "failed to decode document",
		Detail: strings.Join(causes, "; "),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(time.RFC3339Nano)
}

func parseTime(field string, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, Error{
			Type:   ErrorFormat,
			Title:  "failed to decode document",
			Detail: fmt.Sprintf("metadata %s %q is not a RFC 3339 timestamp", field, s),
		}
	}
	return t, nil
}

func newDocumentJSON(d *Document) documentJSON {
	metadata := d.metadata

	v := documentJSON{
		Metadata: metadataJSON{
			Title:       metadata.Title,
			Description: metadata.Description,
			Author:      metadata.Author,
			Version:     metadata.Version,
			Created:     formatTime(metadata.Created),
			Modified:    formatTime(metadata.Modified),
			Tags:        nonNil(metadata.Tags),
		},
		Elements:    make([]elementJSON, len(d.elementIds)),
		Connections: make([]connectionJSON, len(d.connectionIds)),
		Version:     FormatVersion,
	}

	for i, id := range d.elementIds {
		v.Elements[i] = newElementJSON(d.elements[id])
	}
	for i, id := range d.connectionIds {
		c := d.connections[id]

		waypoints := make([]Point, len(c.Waypoints))
		copy(waypoints, c.Waypoints)

		v.Connections[i] = connectionJSON{
			Id:          c.Id,
			Source:      c.Source,
			Target:      c.Target,
			Type:        c.Type,
			Description: c.Description,
			ArrowStyle:  c.ArrowStyle,
			RoutingMode: c.RoutingMode,
			Waypoints:   waypoints,
		}
	}

	return v
}

func newElementJSON(e *Element) elementJSON {
	v := elementJSON{
		Id:                   e.Id,
		Type:                 e.Type,
		Name:                 e.Name,
		X:                    e.X,
		Y:                    e.Y,
		Description:          e.Description,
		ResponsibleAuthority: e.ResponsibleAuthority,
		LegalBasis:           e.LegalBasis,
		DeadlineDays:         e.DeadlineDays,
		GeoReference:         e.GeoReference,
		RefFile:              e.RefFile,
		Members:              nonNil(e.Members),
		Collapsed:            e.Collapsed,
	}

	switch model := e.Model.(type) {
	case Counter:
		v.CounterType = &model.Direction
		v.CounterStartValue = &model.StartValue
		v.CounterMaxValue = &model.MaxValue
		v.CounterCurrentValue = &model.CurrentValue
		v.CounterResetOnMax = &model.ResetOnMax
		v.CounterOnMaxReached = &model.OnMaxReached
	case Condition:
		v.ConditionChecks = make([]checkJSON, len(model.Checks))
		for i, check := range model.Checks {
			v.ConditionChecks[i] = checkJSON{
				Field:     check.Field,
				Operator:  check.Operator,
				Value:     check.Value,
				CheckType: check.Type,
			}
		}
		v.ConditionLogic = &model.Logic
		v.ConditionTrueTarget = &model.TrueTarget
		v.ConditionFalseTarget = &model.FalseTarget
	case ErrorHandler:
		v.ErrorHandlerType = &model.Type
		v.ErrorRetryCount = &model.RetryCount
		v.ErrorRetryDelay = &model.RetryDelay
		v.ErrorTimeout = &model.Timeout
		v.ErrorOnErrorTarget = &model.OnErrorTarget
		v.ErrorOnSuccessTarget = &model.OnSuccessTarget
		v.ErrorLogErrors = &model.LogErrors
	case State:
		v.StateName = &model.Name
		v.StateType = &model.Type
		v.StateEntryAction = &model.EntryAction
		v.StateExitAction = &model.ExitAction
		v.StateTransitions = make([]transitionJSON, len(model.Transitions))
		for i, transition := range model.Transitions {
			v.StateTransitions[i] = transitionJSON(transition)
		}
		v.StateTimeout = &model.Timeout
		v.StateTimeoutTarget = &model.TimeoutTarget
	case Interlock:
		v.InterlockType = &model.Type
		v.InterlockResourceId = &model.ResourceId
		v.InterlockMaxCount = &model.MaxCount
		v.InterlockTimeout = &model.Timeout
		v.InterlockOnLockedTarget = &model.OnLockedTarget
		v.InterlockAutoRelease = &model.AutoRelease
	}

	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func setIfNotNil[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

type documentJSON struct {
	Metadata    metadataJSON     `json:"metadata"`
	Elements    []elementJSON    `json:"elements"`
	Connections []connectionJSON `json:"connections"`
	Version     string           `json:"version"`
}

func (v documentJSON) populate(d *Document) error {
	created, err := parseTime("created", v.Metadata.Created)
	if err != nil {
		return err
	}
	modified, err := parseTime("modified", v.Metadata.Modified)
	if err != nil {
		return err
	}

	// absent fields keep the defaults of a new document
	if v.Metadata.Title != "" {
		d.metadata.Title = v.Metadata.Title
	}
	if v.Metadata.Version != "" {
		d.metadata.Version = v.Metadata.Version
	}
	if !created.IsZero() {
		d.metadata.Created = created
	}
	if !modified.IsZero() {
		d.metadata.Modified = modified
	}

	d.metadata.Description = v.Metadata.Description
	d.metadata.Author = v.Metadata.Author
	d.metadata.Tags = cloneNonEmpty(v.Metadata.Tags)

	for _, elementV := range v.Elements {
		if _, ok := d.elements[elementV.Id]; ok {
			return Error{
				Type:   ErrorDuplicateId,
				Title:  "failed to decode document",
				Detail: fmt.Sprintf("element %s exists", elementV.Id),
			}
		}
		d.insertElement(elementV.element())
	}

	for _, connectionV := range v.Connections {
		if _, ok := d.connections[connectionV.Id]; ok {
			return Error{
				Type:   ErrorDuplicateId,
				Title:  "failed to decode document",
				Detail: fmt.Sprintf("connection %s exists", connectionV.Id),
			}
		}

		connectionType := connectionV.Type
		if connectionType == 0 {
			connectionType = ConnectionSequence
		}

		d.insertConnection(&Connection{
			Id:          connectionV.Id,
			Source:      connectionV.Source,
			Target:      connectionV.Target,
			Type:        connectionType,
			Description: connectionV.Description,
			ArrowStyle:  connectionV.ArrowStyle,
			RoutingMode: connectionV.RoutingMode,
			Waypoints:   cloneNonEmpty(connectionV.Waypoints),
		})
	}

	d.modified = false
	return nil
}

type metadataJSON struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Version     string   `json:"version"`
	Created     string   `json:"created"`
	Modified    string   `json:"modified"`
	Tags        []string `json:"tags"`
}

type elementJSON struct {
	Id                   string      `json:"element_id"`
	Type                 ElementType `json:"element_type"`
	Name                 string      `json:"name"`
	X                    float64     `json:"x"`
	Y                    float64     `json:"y"`
	Description          string      `json:"description"`
	ResponsibleAuthority string      `json:"responsible_authority"`
	LegalBasis           string      `json:"legal_basis"`
	DeadlineDays         int         `json:"deadline_days"`
	GeoReference         string      `json:"geo_reference"`
	RefFile              string      `json:"ref_file"`
	Members              []string    `json:"members"`
	Collapsed            bool        `json:"collapsed"`

	CounterType         *CounterDirection `json:"counter_type"`
	CounterStartValue   *int              `json:"counter_start_value"`
	CounterMaxValue     *int              `json:"counter_max_value"`
	CounterCurrentValue *int              `json:"counter_current_value"`
	CounterResetOnMax   *bool             `json:"counter_reset_on_max"`
	CounterOnMaxReached *string           `json:"counter_on_max_reached"`

	ConditionChecks      []checkJSON `json:"condition_checks"`
	ConditionLogic       *Logic      `json:"condition_logic"`
	ConditionTrueTarget  *string     `json:"condition_true_target"`
	ConditionFalseTarget *string     `json:"condition_false_target"`

	ErrorHandlerType     *HandlerType `json:"error_handler_type"`
	ErrorRetryCount      *int         `json:"error_retry_count"`
	ErrorRetryDelay      *int         `json:"error_retry_delay"`
	ErrorTimeout         *int         `json:"error_timeout"`
	ErrorOnErrorTarget   *string      `json:"error_on_error_target"`
	ErrorOnSuccessTarget *string      `json:"error_on_success_target"`
	ErrorLogErrors       *bool        `json:"error_log_errors"`

	StateName          *string          `json:"state_name"`
	StateType          *StateType       `json:"state_type"`
	StateEntryAction   *string          `json:"state_entry_action"`
	StateExitAction    *string          `json:"state_exit_action"`
	StateTransitions   []transitionJSON `json:"state_transitions"`
	StateTimeout       *int             `json:"state_timeout"`
	StateTimeoutTarget *string          `json:"state_timeout_target"`

	InterlockType           *LockType `json:"interlock_type"`
	InterlockResourceId     *string   `json:"interlock_resource_id"`
	InterlockMaxCount       *int      `json:"interlock_max_count"`
	InterlockTimeout        *int      `json:"interlock_timeout"`
	InterlockOnLockedTarget *string   `json:"interlock_on_locked_target"`
	InterlockAutoRelease    *bool     `json:"interlock_auto_release"`
}

func (v elementJSON) element() *Element {
	e := Element{
		Id:                   v.Id,
		Type:                 v.Type,
		Name:                 v.Name,
		X:                    v.X,
		Y:                    v.Y,
		Description:          v.Description,
		ResponsibleAuthority: v.ResponsibleAuthority,
		LegalBasis:           v.LegalBasis,
		DeadlineDays:         v.DeadlineDays,
		GeoReference:         v.GeoReference,
		RefFile:              v.RefFile,
		Collapsed:            v.Collapsed,
	}

	e.Members = cloneNonEmpty(v.Members)

	switch model := DefaultPayload(v.Type).(type) {
	case Counter:
		setIfNotNil(&model.Direction, v.CounterType)
		setIfNotNil(&model.StartValue, v.CounterStartValue)
		setIfNotNil(&model.MaxValue, v.CounterMaxValue)
		setIfNotNil(&model.CurrentValue, v.CounterCurrentValue)
		setIfNotNil(&model.ResetOnMax, v.CounterResetOnMax)
		setIfNotNil(&model.OnMaxReached, v.CounterOnMaxReached)
		e.Model = model
	case Condition:
		for _, check := range v.ConditionChecks {
			model.Checks = append(model.Checks, Check{
				Field:    check.Field,
				Operator: check.Operator,
				Value:    check.Value,
				Type:     check.CheckType,
			})
		}
		setIfNotNil(&model.Logic, v.ConditionLogic)
		setIfNotNil(&model.TrueTarget, v.ConditionTrueTarget)
		setIfNotNil(&model.FalseTarget, v.ConditionFalseTarget)
		e.Model = model
	case ErrorHandler:
		setIfNotNil(&model.Type, v.ErrorHandlerType)
		setIfNotNil(&model.RetryCount, v.ErrorRetryCount)
		setIfNotNil(&model.RetryDelay, v.ErrorRetryDelay)
		setIfNotNil(&model.Timeout, v.ErrorTimeout)
		setIfNotNil(&model.OnErrorTarget, v.ErrorOnErrorTarget)
		setIfNotNil(&model.OnSuccessTarget, v.ErrorOnSuccessTarget)
		setIfNotNil(&model.LogErrors, v.ErrorLogErrors)
		e.Model = model
	case State:
		setIfNotNil(&model.Name, v.StateName)
		setIfNotNil(&model.Type, v.StateType)
		setIfNotNil(&model.EntryAction, v.StateEntryAction)
		setIfNotNil(&model.ExitAction, v.StateExitAction)
		for _, transition := range v.StateTransitions {
			model.Transitions = append(model.Transitions, Transition(transition))
		}
		setIfNotNil(&model.Timeout, v.StateTimeout)
		setIfNotNil(&model.TimeoutTarget, v.StateTimeoutTarget)
		e.Model = model
	case Interlock:
		setIfNotNil(&model.Type, v.InterlockType)
		setIfNotNil(&model.ResourceId, v.InterlockResourceId)
		setIfNotNil(&model.MaxCount, v.InterlockMaxCount)
		setIfNotNil(&model.Timeout, v.InterlockTimeout)
		setIfNotNil(&model.OnLockedTarget, v.InterlockOnLockedTarget)
		setIfNotNil(&model.AutoRelease, v.InterlockAutoRelease)
		e.Model = model
	}

	return &e
}

type checkJSON struct {
	Field     string    `json:"field"`
	Operator  Operator  `json:"operator"`
	Value     string    `json:"value"`
	CheckType CheckType `json:"check_type"`
}

type transitionJSON struct {
	Event     string `json:"event"`
	Target    string `json:"target"`
	Condition string `json:"condition"`
}

type connectionJSON struct {
	Id          string         `json:"connection_id"`
	Source      string         `json:"source_element"`
	Target      string         `json:"target_element"`
	Type        ConnectionType `json:"connection_type"`
	Description string         `json:"description"`
	ArrowStyle  string         `json:"arrow_style"`
	RoutingMode string         `json:"routing_mode"`
	Waypoints   []Point        `json:"waypoints"`
}
