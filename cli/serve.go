package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gclaussn/go-procdoc/http/server"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/gclaussn/go-procdoc/validation"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newServeCmd(cli *Cli) *cobra.Command {
	var (
		bindAddress string
		storeUrl    string
	)

	c := cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API for validating, digesting and storing process documents.

The document operations are only available, if a store is specified by flag --store-url or the option ` + envPrefix + optStoreUrl + `.
The server is configured via the options ` + envPrefix + `HTTP_* (see conf command).
It runs until an interrupt or termination signal is received.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) (err error) {
			serverOptions := server.NewOptions()
			cli.conf.getServerOptions(&serverOptions)

			validationOptions := validation.NewOptions()
			cli.conf.getValidationOptions(&validationOptions)

			if err := cli.conf.err(); err != nil {
				return err
			}

			if c.Flags().Changed("bind-address") {
				serverOptions.BindAddress = bindAddress
			}

			logger := cli.logger
			if !cli.debugEnabled {
				logger = logr.FromSlogHandler(slog.NewTextHandler(c.ErrOrStderr(), nil))
			}

			var s store.Store
			if storeUrl != "" || cli.conf.opts[optStoreUrl].value() != "" {
				s, err = cli.openStore(c.Context(), storeUrl)
				if err != nil {
					return err
				}

				defer func() {
					err = multierr.Append(err, s.Close())
				}()
			}

			httpServer, err := server.New(s, func(o *server.Options) {
				*o = serverOptions
				o.Validation = validationOptions
				o.Logger = logger
			})
			if err != nil {
				return err
			}

			if err := httpServer.ListenAndServe(); err != nil {
				return err
			}

			signalC := make(chan os.Signal, 1)
			signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

			<-signalC

			httpServer.Shutdown()
			return nil
		},
	}

	c.Flags().StringVar(&bindAddress, "bind-address", "", "TCP address to listen on, overrides "+envPrefix+optHttpBindAddress)
	c.Flags().StringVar(&storeUrl, "store-url", "", "URL of the document store")

	return &c
}
