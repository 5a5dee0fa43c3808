package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newStoreCmd(cli *Cli) *cobra.Command {
	var storeUrl string

	c := cobra.Command{
		Use:   "store",
		Short: "Manage process documents in a store",
		Long: `Manage process documents in a store.

The store is specified by flag --store-url or the option ` + envPrefix + optStoreUrl + ` (see conf command).`,
		RunE: cli.help,
	}

	c.PersistentFlags().StringVar(&storeUrl, "store-url", "", "URL of the document store")

	c.AddCommand(newStoreDeleteCmd(cli, &storeUrl))
	c.AddCommand(newStoreListCmd(cli, &storeUrl))
	c.AddCommand(newStorePullCmd(cli, &storeUrl))
	c.AddCommand(newStorePushCmd(cli, &storeUrl))

	return &c
}

func newStoreDeleteCmd(cli *Cli, storeUrl *string) *cobra.Command {
	c := cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cli.withStore(*storeUrl, func(ctx context.Context, s store.Store) error {
				return s.Delete(ctx, args[0])
			})
		},
	}

	return &c
}

func newStoreListCmd(cli *Cli, storeUrl *string) *cobra.Command {
	c := cobra.Command{
		Use:   "list",
		Short: "List the names of all stored documents",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return cli.withStore(*storeUrl, func(ctx context.Context, s store.Store) error {
				names, err := s.List(ctx)
				if err != nil {
					return err
				}

				for _, name := range names {
					c.Println(name)
				}
				return nil
			})
		},
	}

	return &c
}

func newStorePullCmd(cli *Cli, storeUrl *string) *cobra.Command {
	var outputFileName string

	c := cobra.Command{
		Use:   "pull NAME",
		Short: "Load a stored document",
		Long: `Load a stored document.

The document is written to the output file, if specified. Otherwise it is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cli.withStore(*storeUrl, func(ctx context.Context, s store.Store) error {
				d, err := s.Load(ctx, args[0])
				if err != nil {
					return err
				}

				b, err := model.Marshal(d)
				if err != nil {
					return err
				}

				if outputFileName == "" {
					c.Println(string(b))
					return nil
				}

				if err := os.WriteFile(outputFileName, b, 0o644); err != nil {
					return fmt.Errorf("failed to write document file %s: %v", outputFileName, err)
				}
				return nil
			})
		},
	}

	c.Flags().StringVarP(&outputFileName, "output", "o", "", "Path to the output file")

	c.MarkFlagFilename("output", ".json")

	return &c
}

func newStorePushCmd(cli *Cli, storeUrl *string) *cobra.Command {
	c := cobra.Command{
		Use:   "push NAME FILE",
		Short: "Store a document, replacing an existing document with the same name",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			d, err := cli.readDocument(args[1])
			if err != nil {
				return err
			}

			return cli.withStore(*storeUrl, func(ctx context.Context, s store.Store) error {
				return s.Save(ctx, args[0], d)
			})
		},
	}

	return &c
}

// withStore opens the store, calls f and closes the store afterwards.
func (c *Cli) withStore(storeUrl string, f func(context.Context, store.Store) error) (err error) {
	ctx := context.Background()

	s, err := c.openStore(ctx, storeUrl)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	return f(ctx, s)
}

// openStore opens the store, specified by the store URL flag or the configuration.
func (c *Cli) openStore(ctx context.Context, storeUrl string) (store.Store, error) {
	if storeUrl == "" {
		storeUrl = c.conf.opts[optStoreUrl].value()
	}
	if storeUrl == "" {
		return nil, fmt.Errorf("no store URL set: use flag --store-url or environment variable %s", envPrefix+optStoreUrl)
	}

	var options store.Options
	c.conf.getStoreOptions(&options)
	if err := c.conf.err(); err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, storeUrl, func(o *store.Options) {
		o.Logger = c.logger
		o.Timeout = options.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %v", err)
	}
	return s, nil
}
