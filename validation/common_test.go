package validation

import (
	"testing"

	"github.com/gclaussn/go-procdoc/model"
)

const (
	startId = "start"
	endId   = "end"
)

func mustAddElement(t *testing.T, d *model.Document, e *model.Element) *model.Element {
	if err := d.AddElement(e); err != nil {
		t.Fatalf("failed to add element: %v", err)
	}
	return e
}

func mustConnect(t *testing.T, d *model.Document, sourceId string, targetId string) {
	c, err := model.NewConnection(sourceId, targetId, model.ConnectionSequence)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	if err := d.AddConnection(c); err != nil {
		t.Fatalf("failed to add connection: %v", err)
	}
}

func mustCreateEngine(t *testing.T, customizers ...func(*Options)) *Engine {
	e, err := New(customizers...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}

// mustInsert adds an element and connects it between the start and the end element.
func mustInsert(t *testing.T, d *model.Document, e *model.Element) *model.Element {
	mustAddElement(t, d, e)
	mustConnect(t, d, startId, e.Id)
	mustConnect(t, d, e.Id, endId)
	return e
}

// newTestDocument creates a document with complete metadata, a start and an end element.
func newTestDocument(t *testing.T) *model.Document {
	d := model.New()
	d.SetMetadata(model.Metadata{
		Title:       "Building permit",
		Description: "Handling of building permit applications",
		Author:      "Building authority",
		Version:     model.DefaultVersion,
	})

	mustAddElement(t, d, &model.Element{Id: startId, Type: model.ElementStart, Name: "Start", Description: "Application received"})
	mustAddElement(t, d, &model.Element{Id: endId, Type: model.ElementEnd, Name: "End", Description: "Permit issued"})
	return d
}

func categories(issues []Issue) []Category {
	categories := make([]Category, len(issues))
	for i, issue := range issues {
		categories[i] = issue.Category
	}
	return categories
}

func filter(issues []Issue, severity Severity) []Issue {
	var filtered []Issue
	for _, issue := range issues {
		if issue.Severity == severity {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
