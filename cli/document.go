package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/spf13/cobra"
)

func newDigestCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "digest FILE",
		Short: "Show the canonical digest of a process document",
		Long: `Show the canonical digest of a process document.

The digest is the SHA-256 hash of the document's canonical JSON representation (RFC 8785).
Two files, which differ only in formatting or key order, have the same digest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			d, err := cli.readDocument(args[0])
			if err != nil {
				return err
			}

			digest, err := model.Digest(d)
			if err != nil {
				return err
			}

			c.Println(digest)
			return nil
		},
	}

	return &c
}

func newInfoCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "info FILE",
		Short: "Show metadata and statistics of a process document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			d, err := cli.readDocument(args[0])
			if err != nil {
				return err
			}

			c.Print(formatInfo(d))
			return nil
		},
	}

	return &c
}

func newSchemaCmd(_ *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "schema",
		Short: "Show the JSON schema of the document format",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			c.Println(model.Schema())
		},
	}

	return &c
}

func formatInfo(d *model.Document) string {
	metadata := d.Metadata()

	var sb strings.Builder

	metadataTable := newTable([]string{"FIELD", "VALUE"})
	metadataTable.addRow([]string{"title", metadata.Title})
	metadataTable.addRow([]string{"description", metadata.Description})
	metadataTable.addRow([]string{"author", metadata.Author})
	metadataTable.addRow([]string{"version", metadata.Version})
	metadataTable.addRow([]string{"created", formatTime(metadata.Created)})
	metadataTable.addRow([]string{"modified", formatTime(metadata.Modified)})
	metadataTable.addRow([]string{"tags", strings.Join(metadata.Tags, ", ")})
	metadataTable.addRow([]string{"elements", strconv.Itoa(d.ElementCount())})
	metadataTable.addRow([]string{"connections", strconv.Itoa(d.ConnectionCount())})
	sb.WriteString(metadataTable.format())

	elementTable := newTable([]string{"ELEMENT TYPE", "COUNT"})
	for _, elementType := range model.ElementTypes() {
		n := len(d.ElementsByType(elementType))
		if n == 0 {
			continue
		}
		elementTable.addRow([]string{elementType.String(), strconv.Itoa(n)})
	}
	if len(elementTable.rows) != 0 {
		sb.WriteRune('\n')
		sb.WriteString(elementTable.format())
	}

	connectionCounts := make(map[model.ConnectionType]int)
	for _, connection := range d.Connections() {
		connectionCounts[connection.Type]++
	}

	connectionTable := newTable([]string{"CONNECTION TYPE", "COUNT"})
	for _, connectionType := range model.ConnectionTypes() {
		n := connectionCounts[connectionType]
		if n == 0 {
			continue
		}
		connectionTable.addRow([]string{connectionType.String(), strconv.Itoa(n)})
	}
	if len(connectionTable.rows) != 0 {
		sb.WriteRune('\n')
		sb.WriteString(connectionTable.format())
	}

	return sb.String()
}

// readDocument decodes the document file with the given name.
func (c *Cli) readDocument(fileName string) (*model.Document, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open document file %s: %v", fileName, err)
	}

	defer file.Close()

	d, err := model.Decode(file, func(o *model.Options) {
		o.Logger = c.logger
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document file %s: %v", fileName, err)
	}
	return d, nil
}
