/*
procdoc is a CLI for validating, inspecting and storing process documents.

Usage:

	procdoc [flags]
	procdoc [command]

Available Commands:

	completion  Generate the autocompletion script for the specified shell
	conf        List configuration options and their values
	digest      Show the canonical digest of a process document
	help        Help about any command
	info        Show metadata and statistics of a process document
	schema      Show the JSON schema of the document format
	serve       Serve the HTTP API
	store       Manage process documents in a store
	validate    Validate process documents
	version     Show version

Flags:

	    --config string     Path to a YAML configuration file
	    --debug             Log debug information
	    --env-file string   Path to a file, containing environment variables
	-h, --help              help for procdoc

Use "procdoc [command] --help" for more information about a command.
*/
package main

import (
	"os"

	"github.com/gclaussn/go-procdoc/cli"
)

var (
	version = "unknown-version"
)

func main() {
	cli := cli.New(version)
	os.Exit(cli.Execute())
}
