package model

import (
	"encoding/json"
	"fmt"
)

const (
	ArrowFilled = "filled"
	ArrowOpen   = "open"
	ArrowNone   = "none"

	RoutingDirect     = "direct"
	RoutingOrthogonal = "orthogonal"
	RoutingManual     = "manual"
)

// NewConnection creates a connection with a new ID between a source and a target element.
// An error of type [ErrorSelfLoop] is returned, if source and target are equal.
func NewConnection(sourceId string, targetId string, connectionType ConnectionType) (*Connection, error) {
	connection := Connection{
		Id:          NewId(),
		Source:      sourceId,
		Target:      targetId,
		Type:        connectionType,
		ArrowStyle:  ArrowFilled,
		RoutingMode: RoutingDirect,
	}
	if err := connection.checkSelfLoop(); err != nil {
		return nil, err
	}
	return &connection, nil
}

// A Connection is a directed edge between two elements.
type Connection struct {
	Id          string
	Source      string // ID of the source element.
	Target      string // ID of the target element.
	Type        ConnectionType
	Description string
	ArrowStyle  string
	RoutingMode string
	Waypoints   []Point // Optional manual routing points.
}

// Clone returns a deep copy of the connection.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Waypoints = cloneNonEmpty(c.Waypoints)
	return &clone
}

// Touches determines if the element is the source or the target of the connection.
func (c *Connection) Touches(elementId string) bool {
	return c.Source == elementId || c.Target == elementId
}

func (c *Connection) checkSelfLoop() error {
	if c.Source == c.Target {
		return Error{
			Type:   ErrorSelfLoop,
			Title:  "failed to create connection",
			Detail: fmt.Sprintf("connection %s has equal source and target %s", c.Id, c.Source),
		}
	}
	return nil
}

// Point is a coordinate pair, used for manual routing.
type Point struct {
	X float64
	Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("invalid waypoint data %s", string(data))
	}

	p.X = xy[0]
	p.Y = xy[1]
	return nil
}
