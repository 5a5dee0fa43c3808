package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"
)

const (
	DefaultTitle   = "Untitled Process" // Title of a new document.
	DefaultVersion = "1.0"              // Version of a new document.
)

// New creates an empty document with default metadata.
func New(customizers ...func(*Options)) *Document {
	options := Options{
		Logger: logr.Discard(),
		Now:    time.Now,
	}

	for _, customizer := range customizers {
		customizer(&options)
	}

	d := Document{
		logger: options.Logger,
		now:    options.Now,
	}
	d.reset()
	return &d
}

// Options are used to customize a document.
type Options struct {
	Logger logr.Logger      // Logger, used to report failing listeners.
	Now    func() time.Time // Clock, used for created and modified timestamps.
}

// A Document is a process diagram, consisting of elements and connections.
//
// A document exclusively owns its elements and connections:
// values are cloned when they are added and when they are returned by a query.
// Every connection's source and target reference an existing element, as long as the document is only changed by its operations.
//
// A document is not safe for concurrent use.
type Document struct {
	metadata Metadata
	modified bool

	elements      map[string]*Element
	elementIds    []string // insertion order
	connections   map[string]*Connection
	connectionIds []string            // insertion order
	outgoing      map[string][]string // mapping between element ID and IDs of outgoing connections
	incoming      map[string][]string // mapping between element ID and IDs of incoming connections

	listeners      []listener
	nextListenerId ListenerId

	logger logr.Logger
	now    func() time.Time
}

// Violation is a referential integrity problem, found by [Document.Validate].
// Either the element ID or the connection ID is set.
type Violation struct {
	ElementId    string
	ConnectionId string
	Message      string
}

func (v Violation) String() string {
	return v.Message
}

// Metadata describes a document.
type Metadata struct {
	Title       string
	Description string
	Author      string
	Version     string
	Created     time.Time
	Modified    time.Time
	Tags        []string
}

// AddElement adds an element to the document.
//
// An error of type [ErrorDuplicateId] is returned, if an element with the same ID exists.
// An error of type [ErrorUnknownType] is returned, if the element type is not part of the catalog.
// Logic elements without payload get the default payload of their family.
func (d *Document) AddElement(e *Element) error {
	e, err := d.prepareElement(e, "failed to add element")
	if err != nil {
		return err
	}
	if _, ok := d.elements[e.Id]; ok {
		return Error{
			Type:   ErrorDuplicateId,
			Title:  "failed to add element",
			Detail: fmt.Sprintf("element %s exists", e.Id),
		}
	}

	d.insertElement(e)
	d.touch()

	d.publish(Event{Name: EventElementAdded, Element: e.Clone()})
	return nil
}

// RemoveElement removes an element and all connections, which have the element as source or target.
// The removed connections are returned.
// If the element does not exist, false is returned and the document is not changed.
func (d *Document) RemoveElement(id string) ([]*Connection, bool) {
	e, ok := d.elements[id]
	if !ok {
		return nil, false
	}

	var connectionIds []string
	connectionIds = append(connectionIds, d.outgoing[id]...)
	for _, connectionId := range d.incoming[id] {
		if !slices.Contains(connectionIds, connectionId) {
			connectionIds = append(connectionIds, connectionId)
		}
	}

	removed := make([]*Connection, 0, len(connectionIds))
	for _, connectionId := range connectionIds {
		removed = append(removed, d.deleteConnection(connectionId))
	}

	delete(d.elements, id)
	delete(d.outgoing, id)
	delete(d.incoming, id)
	d.elementIds = slices.DeleteFunc(d.elementIds, func(elementId string) bool {
		return elementId == id
	})

	d.touch()

	d.publish(Event{Name: EventElementRemoved, Element: e.Clone(), Connections: cloneConnections(removed)})
	return removed, true
}

// UpdateElement replaces an existing element with the same ID.
// An error of type [ErrorNotFound] is returned, if no such element exists.
func (d *Document) UpdateElement(e *Element) error {
	e, err := d.prepareElement(e, "failed to update element")
	if err != nil {
		return err
	}
	if _, ok := d.elements[e.Id]; !ok {
		return Error{
			Type:   ErrorNotFound,
			Title:  "failed to update element",
			Detail: fmt.Sprintf("element %s could not be found", e.Id),
		}
	}

	d.elements[e.Id] = e
	d.touch()

	d.publish(Event{Name: EventElementUpdated, Element: e.Clone()})
	return nil
}

// AddConnection adds a connection to the document.
//
// An error of type [ErrorDuplicateId] is returned, if a connection with the same ID exists.
// An error of type [ErrorDanglingEndpoint] is returned, if the source or target element does not exist.
// An error of type [ErrorSelfLoop] is returned, if source and target are equal.
// An error of type [ErrorUnknownType] is returned, if the connection type is not part of the catalog.
func (d *Document) AddConnection(c *Connection) error {
	if c == nil {
		return Error{Type: ErrorNotFound, Title: "failed to add connection", Detail: "connection is nil"}
	}
	if _, ok := d.connections[c.Id]; ok {
		return Error{
			Type:   ErrorDuplicateId,
			Title:  "failed to add connection",
			Detail: fmt.Sprintf("connection %s exists", c.Id),
		}
	}
	if err := d.checkEndpoints(c, "failed to add connection"); err != nil {
		return err
	}

	c = c.Clone()

	d.insertConnection(c)
	d.touch()

	d.publish(Event{Name: EventConnectionAdded, Connection: c.Clone()})
	return nil
}

// RemoveConnection removes a connection.
// If the connection does not exist, false is returned and the document is not changed.
func (d *Document) RemoveConnection(id string) (*Connection, bool) {
	if _, ok := d.connections[id]; !ok {
		return nil, false
	}

	c := d.deleteConnection(id)
	d.touch()

	d.publish(Event{Name: EventConnectionRemoved, Connection: c.Clone()})
	return c, true
}

// UpdateConnection replaces an existing connection with the same ID.
// An error of type [ErrorNotFound] is returned, if no such connection exists.
func (d *Document) UpdateConnection(c *Connection) error {
	if c == nil {
		return Error{Type: ErrorNotFound, Title: "failed to update connection", Detail: "connection is nil"}
	}

	existing, ok := d.connections[c.Id]
	if !ok {
		return Error{
			Type:   ErrorNotFound,
			Title:  "failed to update connection",
			Detail: fmt.Sprintf("connection %s could not be found", c.Id),
		}
	}
	if err := d.checkEndpoints(c, "failed to update connection"); err != nil {
		return err
	}

	c = c.Clone()

	if existing.Source != c.Source || existing.Target != c.Target {
		d.unindex(existing)
		d.index(c)
	}

	d.connections[c.Id] = c
	d.touch()

	d.publish(Event{Name: EventConnectionUpdated, Connection: c.Clone()})
	return nil
}

// Clear removes all elements and connections and resets the metadata.
// A cleared document is not modified.
func (d *Document) Clear() {
	d.reset()
	d.publish(Event{Name: EventDocumentCleared})
}

// Element returns a copy of the element with the given ID, or false, if no such element exists.
func (d *Document) Element(id string) (*Element, bool) {
	e, ok := d.elements[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// HasElement determines if an element with the given ID exists.
func (d *Document) HasElement(id string) bool {
	_, ok := d.elements[id]
	return ok
}

// Elements returns copies of all elements in insertion order.
func (d *Document) Elements() []*Element {
	elements := make([]*Element, len(d.elementIds))
	for i, id := range d.elementIds {
		elements[i] = d.elements[id].Clone()
	}
	return elements
}

// ElementsByType returns copies of all elements of the given type in insertion order.
func (d *Document) ElementsByType(elementType ElementType) []*Element {
	var elements []*Element
	for _, id := range d.elementIds {
		if e := d.elements[id]; e.Type == elementType {
			elements = append(elements, e.Clone())
		}
	}
	return elements
}

// ElementCount returns the number of elements.
func (d *Document) ElementCount() int {
	return len(d.elementIds)
}

// Connection returns a copy of the connection with the given ID, or false, if no such connection exists.
func (d *Document) Connection(id string) (*Connection, bool) {
	c, ok := d.connections[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Connections returns copies of all connections in insertion order.
func (d *Document) Connections() []*Connection {
	connections := make([]*Connection, len(d.connectionIds))
	for i, id := range d.connectionIds {
		connections[i] = d.connections[id].Clone()
	}
	return connections
}

// ConnectionCount returns the number of connections.
func (d *Document) ConnectionCount() int {
	return len(d.connectionIds)
}

// ConnectionsOf returns copies of all connections, which have the element as source or target.
func (d *Document) ConnectionsOf(elementId string) []*Connection {
	connections := d.Outgoing(elementId)
	for _, connectionId := range d.incoming[elementId] {
		c := d.connections[connectionId]
		if c.Source != elementId { // already included as outgoing
			connections = append(connections, c.Clone())
		}
	}
	return connections
}

// Outgoing returns copies of all connections, which have the element as source.
func (d *Document) Outgoing(elementId string) []*Connection {
	return d.cloneConnectionsById(d.outgoing[elementId])
}

// Incoming returns copies of all connections, which have the element as target.
func (d *Document) Incoming(elementId string) []*Connection {
	return d.cloneConnectionsById(d.incoming[elementId])
}

// OutgoingCount returns the number of connections, which have the element as source.
func (d *Document) OutgoingCount(elementId string) int {
	return len(d.outgoing[elementId])
}

// IncomingCount returns the number of connections, which have the element as target.
func (d *Document) IncomingCount(elementId string) int {
	return len(d.incoming[elementId])
}

// Metadata returns a copy of the document's metadata.
func (d *Document) Metadata() Metadata {
	metadata := d.metadata
	metadata.Tags = cloneNonEmpty(d.metadata.Tags)
	return metadata
}

// SetMetadata replaces the document's metadata.
// The modified timestamp is set to the current time.
func (d *Document) SetMetadata(metadata Metadata) {
	metadata.Tags = cloneNonEmpty(metadata.Tags)
	d.metadata = metadata
	d.touch()
}

// IsModified determines if the document has been changed since it was created, loaded or saved.
func (d *Document) IsModified() bool {
	return d.modified
}

// MarkSaved clears the modified flag.
func (d *Document) MarkSaved() {
	d.modified = false
}

// Validate checks the referential integrity of the document and returns all violations.
// If the document is consistent, the result is empty.
//
// Documents, which are only changed by their operations, are always consistent.
// Decoded documents are loaded leniently and may contain violations.
func (d *Document) Validate() []Violation {
	var violations []Violation

	addElementViolation := func(e *Element, format string, a ...any) {
		violations = append(violations, Violation{ElementId: e.Id, Message: fmt.Sprintf(format, a...)})
	}
	addConnectionViolation := func(c *Connection, format string, a ...any) {
		violations = append(violations, Violation{ConnectionId: c.Id, Message: fmt.Sprintf(format, a...)})
	}

	for _, id := range d.elementIds {
		e := d.elements[id]
		if e.Id == "" {
			addElementViolation(e, "element of type %s has no ID", e.Type)
		}
		if e.Type.String() == "" {
			addElementViolation(e, "element %s has an unknown type %d", e.Id, e.Type)
		}
		if e.DeadlineDays < 0 {
			addElementViolation(e, "element %s has a negative deadline of %d days", e.Id, e.DeadlineDays)
		}
		if e.Model != nil && e.Model.ElementType() != e.Type {
			addElementViolation(e, "element %s of type %s has a %s payload", e.Id, e.Type, e.Model.ElementType())
		}
	}

	for _, id := range d.connectionIds {
		c := d.connections[id]
		if c.Type.String() == "" {
			addConnectionViolation(c, "connection %s has an unknown type %d", c.Id, c.Type)
		}
		if _, ok := d.elements[c.Source]; !ok {
			addConnectionViolation(c, "connection %s references a non-existent source element %s", c.Id, c.Source)
		}
		if _, ok := d.elements[c.Target]; !ok {
			addConnectionViolation(c, "connection %s references a non-existent target element %s", c.Id, c.Target)
		}
		if c.Source == c.Target {
			addConnectionViolation(c, "connection %s is a self loop on element %s", c.Id, c.Source)
		}
		if !slices.Contains(d.outgoing[c.Source], c.Id) || !slices.Contains(d.incoming[c.Target], c.Id) {
			addConnectionViolation(c, "connection %s is not indexed", c.Id)
		}
	}

	return violations
}

func (d *Document) checkEndpoints(c *Connection, title string) error {
	if err := c.checkSelfLoop(); err != nil {
		err := err.(Error)
		err.Title = title
		return err
	}
	if c.Type.String() == "" {
		return Error{
			Type:   ErrorUnknownType,
			Title:  title,
			Detail: fmt.Sprintf("connection %s has an unknown type %d", c.Id, c.Type),
		}
	}
	if _, ok := d.elements[c.Source]; !ok {
		return Error{
			Type:   ErrorDanglingEndpoint,
			Title:  title,
			Detail: fmt.Sprintf("source element %s of connection %s could not be found", c.Source, c.Id),
		}
	}
	if _, ok := d.elements[c.Target]; !ok {
		return Error{
			Type:   ErrorDanglingEndpoint,
			Title:  title,
			Detail: fmt.Sprintf("target element %s of connection %s could not be found", c.Target, c.Id),
		}
	}
	return nil
}

func (d *Document) cloneConnectionsById(ids []string) []*Connection {
	connections := make([]*Connection, 0, len(ids))
	for _, id := range ids {
		connections = append(connections, d.connections[id].Clone())
	}
	return connections
}

func (d *Document) deleteConnection(id string) *Connection {
	c := d.connections[id]

	d.unindex(c)
	delete(d.connections, id)
	d.connectionIds = slices.DeleteFunc(d.connectionIds, func(connectionId string) bool {
		return connectionId == id
	})

	return c
}

func (d *Document) index(c *Connection) {
	d.outgoing[c.Source] = append(d.outgoing[c.Source], c.Id)
	d.incoming[c.Target] = append(d.incoming[c.Target], c.Id)
}

// insertConnection inserts a connection without checking its endpoints.
func (d *Document) insertConnection(c *Connection) {
	d.connections[c.Id] = c
	d.connectionIds = append(d.connectionIds, c.Id)
	d.index(c)
}

// insertElement inserts an element without further checks.
func (d *Document) insertElement(e *Element) {
	d.elements[e.Id] = e
	d.elementIds = append(d.elementIds, e.Id)
}

// prepareElement checks an element and returns a copy, which is owned by the document.
func (d *Document) prepareElement(e *Element, title string) (*Element, error) {
	if e == nil {
		return nil, Error{Type: ErrorNotFound, Title: title, Detail: "element is nil"}
	}
	if e.Type.String() == "" {
		return nil, Error{
			Type:   ErrorUnknownType,
			Title:  title,
			Detail: fmt.Sprintf("element %s has an unknown type %d", e.Id, e.Type),
		}
	}
	if e.DeadlineDays < 0 {
		return nil, Error{
			Type:   ErrorNegativeDeadline,
			Title:  title,
			Detail: fmt.Sprintf("element %s has a negative deadline of %d days", e.Id, e.DeadlineDays),
		}
	}
	if e.Model != nil && e.Model.ElementType() != e.Type {
		return nil, Error{
			Type:   ErrorPayloadMismatch,
			Title:  title,
			Detail: fmt.Sprintf("element %s of type %s has a %s payload", e.Id, e.Type, e.Model.ElementType()),
		}
	}

	e = e.Clone()
	if e.Model == nil {
		e.Model = DefaultPayload(e.Type)
	}
	return e, nil
}

func (d *Document) reset() {
	now := d.now()

	d.metadata = Metadata{
		Title:    DefaultTitle,
		Version:  DefaultVersion,
		Created:  now,
		Modified: now,
	}
	d.modified = false

	d.elements = make(map[string]*Element)
	d.elementIds = nil
	d.connections = make(map[string]*Connection)
	d.connectionIds = nil
	d.outgoing = make(map[string][]string)
	d.incoming = make(map[string][]string)
}

func (d *Document) touch() {
	d.modified = true
	d.metadata.Modified = d.now()
}

func (d *Document) unindex(c *Connection) {
	remove := func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool {
			return id == c.Id
		})
	}

	if ids := remove(d.outgoing[c.Source]); len(ids) != 0 {
		d.outgoing[c.Source] = ids
	} else {
		delete(d.outgoing, c.Source)
	}
	if ids := remove(d.incoming[c.Target]); len(ids) != 0 {
		d.incoming[c.Target] = ids
	} else {
		delete(d.incoming, c.Target)
	}
}

func cloneConnections(connections []*Connection) []*Connection {
	clones := make([]*Connection, len(connections))
	for i, c := range connections {
		clones[i] = c.Clone()
	}
	return clones
}
