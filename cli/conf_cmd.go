package cli

import (
	"errors"

	"github.com/gclaussn/go-procdoc/http/server"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/gclaussn/go-procdoc/validation"
	"github.com/spf13/cobra"
)

func newConfCmd(cli *Cli) *cobra.Command {
	var optionsEnabled bool

	c := cobra.Command{
		Use:   "conf",
		Short: "List configuration options and their values",
		Long: `List configuration options and their values.

A value is taken from the environment, an env file (--env-file) or a YAML configuration file (--config), in this order.
Options without a value have their default value.`,
		RunE: func(c *cobra.Command, _ []string) error {
			if optionsEnabled {
				listConfOpts(c.OutOrStdout(), cli.conf)
				return nil
			}

			var serverOptions server.Options
			cli.conf.getServerOptions(&serverOptions)

			var storeOptions store.Options
			cli.conf.getStoreOptions(&storeOptions)

			var validationOptions validation.Options
			cli.conf.getValidationOptions(&validationOptions)

			if listConfErrors(c.ErrOrStderr(), cli.conf) != 0 {
				return errors.New("configuration is invalid")
			}

			listConf(c.OutOrStdout(), cli.conf)
			return nil
		},
	}

	c.Flags().BoolVar(&optionsEnabled, "options", false, "List options with description and default value")

	return &c
}
