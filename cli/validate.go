package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gclaussn/go-procdoc/validation"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newValidateCmd(cli *Cli) *cobra.Command {
	var (
		jsonEnabled          bool
		completenessDisabled bool
		flowDisabled         bool
		namingDisabled       bool
		minNameLength        int
		maxNameLength        int
		warningsAsErrors     bool
	)

	c := cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate process documents",
		Long: `Validate process documents.

Structural and element specific checks always run. Flow, naming and completeness checks can be disabled.
The command fails, if a document cannot be read or has at least one error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			options := validation.NewOptions()

			cli.conf.getValidationOptions(&options)
			if err := cli.conf.err(); err != nil {
				return err
			}

			if completenessDisabled {
				options.CompletenessEnabled = false
			}
			if flowDisabled {
				options.FlowEnabled = false
			}
			if namingDisabled {
				options.NamingEnabled = false
			}
			if c.Flags().Changed("min-name-length") {
				options.MinNameLength = minNameLength
			}
			if c.Flags().Changed("max-name-length") {
				options.MaxNameLength = maxNameLength
			}

			options.Logger = cli.logger

			e, err := validation.New(func(o *validation.Options) {
				*o = options
			})
			if err != nil {
				return fmt.Errorf("failed to create validation engine: %v", err)
			}

			var errs error

			results := make([]fileResult, 0, len(args))

			for _, fileName := range args {
				d, err := cli.readDocument(fileName)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}

				result := e.Validate(d)
				results = append(results, fileResult{File: fileName, Result: result})

				if !result.IsValid() {
					errs = multierr.Append(errs, fmt.Errorf("document %s has %d error(s)", fileName, result.ErrorCount()))
				} else if warningsAsErrors && result.WarningCount() != 0 {
					errs = multierr.Append(errs, fmt.Errorf("document %s has %d warning(s)", fileName, result.WarningCount()))
				}
			}

			if jsonEnabled {
				b, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal results: %v", err)
				}
				c.Println(string(b))
			} else {
				for _, result := range results {
					c.Print(formatResult(result))
				}
			}

			return errs
		},
	}

	c.Flags().BoolVar(&jsonEnabled, "json", false, "Print results as JSON")
	c.Flags().BoolVar(&completenessDisabled, "no-completeness", false, "Disable completeness checks")
	c.Flags().BoolVar(&flowDisabled, "no-flow", false, "Disable flow checks")
	c.Flags().BoolVar(&namingDisabled, "no-naming", false, "Disable naming checks")
	c.Flags().IntVar(&minNameLength, "min-name-length", 0, "Names with fewer characters result in a warning")
	c.Flags().IntVar(&maxNameLength, "max-name-length", 0, "Names with more characters result in a warning")
	c.Flags().BoolVar(&warningsAsErrors, "strict", false, "Fail, if a document has warnings")

	return &c
}

const (
	maxMessageWidth    = 60
	maxSuggestionWidth = 40
)

// fileResult is the validation result of a document file.
type fileResult struct {
	File   string            `json:"file"`
	Result validation.Result `json:"result"`
}

func formatResult(v fileResult) string {
	result := v.Result

	summary := fmt.Sprintf(
		"%s: %d element(s), %d connection(s) - %d error(s), %d warning(s), %d info(s)\n",
		v.File,
		result.ElementCount,
		result.ConnectionCount,
		result.ErrorCount(),
		result.WarningCount(),
		result.InfoCount(),
	)

	issues := result.Issues()
	if len(issues) == 0 {
		return summary
	}

	table := newTable([]string{
		"#",
		"SEVERITY",
		"CATEGORY",
		"REFERENCE",
		"MESSAGE",
		"SUGGESTION",
	})
	table.wrap(4, maxMessageWidth)
	table.wrap(5, maxSuggestionWidth)

	for i, issue := range issues {
		reference := issue.ElementId
		if reference == "" && issue.ConnectionId != "" {
			reference = "connection " + issue.ConnectionId
		}

		table.addRow([]string{
			strconv.Itoa(i + 1),
			issue.Severity.String(),
			string(issue.Category),
			reference,
			issue.Message,
			issue.Suggestion,
		})
	}

	return summary + "\n" + table.format() + "\n"
}
