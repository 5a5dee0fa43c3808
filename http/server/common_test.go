package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gclaussn/go-procdoc/http/common"
	"github.com/gclaussn/go-procdoc/model"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
)

func assertProblem(t *testing.T, err error, expectedType common.ProblemType, expectedStatus int) {
	assert := assert.New(t)

	problem, ok := err.(common.Problem)
	if !ok {
		t.Fatalf("expected error to be a problem, but was %T: %v", err, err)
	}

	assert.Equal(expectedType, problem.Type)
	assert.Equal(expectedStatus, problem.Status)
}

func mustAddElement(t *testing.T, d *model.Document, e *model.Element) {
	if err := d.AddElement(e); err != nil {
		t.Fatalf("failed to add element: %v", err)
	}
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

func mustCreateFileStore(t *testing.T) store.Store {
	fs, err := osfs.NewTempFileSystem()
	if err != nil {
		t.Fatalf("failed to create file system: %v", err)
	}

	t.Cleanup(func() {
		vfs.Cleanup(fs)
	})

	s, err := store.NewFileStore("documents", func(o *store.Options) {
		o.FileSystem = fs
	})
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	return s
}

func mustDecodeProblem(t *testing.T, res *http.Response) common.Problem {
	defer res.Body.Close()

	assert.Equal(t, common.ContentTypeProblemJson, res.Header.Get(common.HeaderContentType))

	var problem common.Problem
	if err := json.NewDecoder(res.Body).Decode(&problem); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	return problem
}

func mustDecodeResponse(t *testing.T, res *http.Response, v any) {
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected HTTP 200, but was HTTP %d: %s", res.StatusCode, string(b))
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func mustDo(t *testing.T, method string, url string, body string) *http.Response {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != "" {
		req.Header.Set(common.HeaderContentType, common.ContentTypeJson)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to execute %s %s: %v", method, url, err)
	}
	return res
}

func mustMarshal(t *testing.T, d *model.Document) string {
	b, err := model.Marshal(d)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}
	return string(b)
}

// newDocument creates a document, which has no validation errors or warnings, but a naming info.
func newDocument(t *testing.T) *model.Document {
	d := model.New()
	d.SetMetadata(model.Metadata{
		Title:       "Building permit",
		Description: "Handling of building permit applications",
		Author:      "Building authority",
	})

	mustAddElement(t, d, &model.Element{Id: "start", Type: model.ElementStart, Name: "Start", Description: "Application received"})
	mustAddElement(t, d, &model.Element{Id: "review", Type: model.ElementProcess, Name: "review", Description: "Formal review"})
	mustAddElement(t, d, &model.Element{Id: "end", Type: model.ElementEnd, Name: "End", Description: "Permit issued"})

	mustConnect(t, d, "start", "review")
	mustConnect(t, d, "review", "end")
	return d
}
