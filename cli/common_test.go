package cli

import (
	"bytes"
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/gclaussn/go-procdoc/model"
)

// execute executes the root command with the given arguments and returns the output.
func execute(cli *Cli, args ...string) (string, error) {
	rootCmd := newRootCmd(cli)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, cli *Cli, args ...string) string {
	out, err := execute(cli, args...)
	if err != nil {
		t.Fatalf("failed to execute %v: %v\n%s", args, err, out)
	}
	return out
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

func mustWriteDocument(t *testing.T, d *model.Document) string {
	b, err := model.Marshal(d)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}

	fileName := filepath.Join(t.TempDir(), "document.json")
	if err := os.WriteFile(fileName, b, 0o644); err != nil {
		t.Fatalf("failed to write document file: %v", err)
	}
	return fileName
}

func mustWriteFile(t *testing.T, name string, content string) string {
	fileName := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(fileName, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return fileName
}

// newTestCli creates a CLI, which ignores the environment of the test process.
func newTestCli(env map[string]string) *Cli {
	return &Cli{version: "test-version", conf: newTestConf(env)}
}

func newTestConf(env map[string]string) *conf {
	conf := newConf()
	for key := range conf.envFile.env {
		delete(conf.envFile.env, key)
	}
	maps.Copy(conf.envFile.env, env)
	return conf
}

// newValidDocument creates a document, which has no validation issues.
func newValidDocument(t *testing.T) *model.Document {
	d := model.New()
	d.SetMetadata(model.Metadata{
		Title:       "Building permit",
		Description: "Handling of building permit applications",
		Author:      "Building authority",
		Version:     model.DefaultVersion,
		Tags:        []string{"permit", "building"},
	})

	mustAddElement(t, d, &model.Element{Id: "start", Type: model.ElementStart, Name: "Start", Description: "Application received"})
	mustAddElement(t, d, &model.Element{Id: "review", Type: model.ElementProcess, Name: "Review", Description: "Formal review"})
	mustAddElement(t, d, &model.Element{Id: "end", Type: model.ElementEnd, Name: "End", Description: "Permit issued"})

	mustConnect(t, d, "start", "review")
	mustConnect(t, d, "review", "end")
	return d
}
