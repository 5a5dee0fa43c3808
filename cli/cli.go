package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	envLookupAllowed = "envLookupAllowed" // flag level annotation that allows an environment variable lookup
	envPrefix        = "PROCDOC_"
	program          = "procdoc"
)

func New(version string) *Cli {
	cli := Cli{version: version}

	cli.rootCmd = newRootCmd(&cli)
	cli.rootCmd.SetOut(os.Stdout)

	return &cli
}

type Cli struct {
	version string

	rootCmd *cobra.Command

	conf   *conf
	logger logr.Logger

	configFile   string
	debugEnabled bool
	envFile      string
}

func (c *Cli) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func (c *Cli) help(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func newRootCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   program,
		Short: "A toolkit for process documents",
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			c.SilenceUsage = true

			c.Flags().VisitAll(func(f *pflag.Flag) {
				if f.Changed {
					return
				}
				if _, ok := f.Annotations[envLookupAllowed]; !ok {
					return
				}

				// e.g. store-url -> PROCDOC_STORE_URL
				key := envPrefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")

				if value, ok := os.LookupEnv(key); ok {
					f.Value.Set(value)
				}
			})

			if cli.debugEnabled {
				handler := slog.NewTextHandler(c.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
				cli.logger = logr.FromSlogHandler(handler)
			} else {
				cli.logger = logr.Discard()
			}

			if cli.conf == nil {
				cli.conf = newConf()
			}
			if cli.envFile != "" {
				if err := cli.conf.envFile.Set(cli.envFile); err != nil {
					return fmt.Errorf("failed to read env file %s: %v", cli.envFile, err)
				}
			}
			if cli.configFile != "" {
				if err := cli.conf.readFile(cli.configFile); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: cli.help,
	}

	c.PersistentFlags().StringVar(&cli.configFile, "config", "", "Path to a YAML configuration file")
	c.PersistentFlags().BoolVar(&cli.debugEnabled, "debug", false, "Log debug information")
	c.PersistentFlags().StringVar(&cli.envFile, "env-file", "", "Path to a file, containing environment variables")

	c.PersistentFlags().SetAnnotation("config", envLookupAllowed, nil)
	c.PersistentFlags().SetAnnotation("debug", envLookupAllowed, nil)
	c.PersistentFlags().SetAnnotation("env-file", envLookupAllowed, nil)

	c.MarkPersistentFlagFilename("config", ".yaml", ".yml")

	c.AddCommand(newConfCmd(cli))
	c.AddCommand(newDigestCmd(cli))
	c.AddCommand(newInfoCmd(cli))
	c.AddCommand(newSchemaCmd(cli))
	c.AddCommand(newServeCmd(cli))
	c.AddCommand(newStoreCmd(cli))
	c.AddCommand(newValidateCmd(cli))
	c.AddCommand(newVersionCmd(cli))

	return &c
}

func newVersionCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(c *cobra.Command, _ []string) {
			c.Println(cli.version)
		},
	}

	return &c
}
