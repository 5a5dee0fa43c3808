package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/drone/envsubst"
	"github.com/gclaussn/go-procdoc/http/server"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/gclaussn/go-procdoc/validation"
	"go.uber.org/multierr"
	"sigs.k8s.io/yaml"
)

const (
	optHttpBasicAuthPassword = "HTTP_BASIC_AUTH_PASSWORD"
	optHttpBasicAuthUsername = "HTTP_BASIC_AUTH_USERNAME"
	optHttpBindAddress       = "HTTP_BIND_ADDRESS"
	optHttpMaxDocumentSize   = "HTTP_MAX_DOCUMENT_SIZE"
	optHttpReadTimeout       = "HTTP_READ_TIMEOUT"
	optHttpWriteTimeout      = "HTTP_WRITE_TIMEOUT"

	optStoreUrl     = "STORE_URL"
	optStoreTimeout = "STORE_TIMEOUT"

	optCompletenessEnabled = "COMPLETENESS_ENABLED"
	optFlowEnabled         = "FLOW_ENABLED"
	optMaxNameLength       = "MAX_NAME_LENGTH"
	optMinNameLength       = "MIN_NAME_LENGTH"
	optNamingEnabled       = "NAMING_ENABLED"
)

// newConf creates the configuration, which contains all options with their default values.
// Values are taken from the environment, an optional env file (see [envFile]) and an optional YAML file (see [conf.readFile]).
// An environment variable takes precedence over a value from the YAML file.
func newConf() *conf {
	env := env{}
	for _, value := range os.Environ() {
		env.Set(value)
	}

	conf := conf{
		envFile: envFile{env},
		opts:    make(map[string]*confOpt),
	}

	conf.addOption(
		optStoreUrl,
		"URL of the document store: a directory, file://, postgres://, postgresql://, redis://, rediss://, http:// or https://",
	)
	conf.addStoreOption(
		optStoreTimeout,
		"time limit for establishing a store connection",
		func(o store.Options) string {
			return o.Timeout.String()
		},
		func(o *store.Options, co *confOpt) error {
			timeout, err := time.ParseDuration(co.value())
			if err == nil && timeout <= 0 {
				return errors.New("is not positive")
			}
			o.Timeout = timeout
			return err
		},
	)

	conf.addValidationOption(
		optCompletenessEnabled,
		"enable or disable completeness checks",
		func(o validation.Options) string {
			return strconv.FormatBool(o.CompletenessEnabled)
		},
		func(o *validation.Options, co *confOpt) error {
			completenessEnabled, err := strconv.ParseBool(co.value())
			o.CompletenessEnabled = completenessEnabled
			return err
		},
	)
	conf.addValidationOption(
		optFlowEnabled,
		"enable or disable flow checks",
		func(o validation.Options) string {
			return strconv.FormatBool(o.FlowEnabled)
		},
		func(o *validation.Options, co *confOpt) error {
			flowEnabled, err := strconv.ParseBool(co.value())
			o.FlowEnabled = flowEnabled
			return err
		},
	)
	conf.addValidationOption(
		optMaxNameLength,
		"names with more characters result in a warning",
		func(o validation.Options) string {
			return strconv.Itoa(o.MaxNameLength)
		},
		func(o *validation.Options, co *confOpt) error {
			maxNameLength, err := strconv.ParseInt(co.value(), 10, 32)
			o.MaxNameLength = int(maxNameLength)
			return err
		},
	)
	conf.addValidationOption(
		optMinNameLength,
		"names with fewer characters result in a warning",
		func(o validation.Options) string {
			return strconv.Itoa(o.MinNameLength)
		},
		func(o *validation.Options, co *confOpt) error {
			minNameLength, err := strconv.ParseInt(co.value(), 10, 32)
			o.MinNameLength = int(minNameLength)
			return err
		},
	)
	conf.addValidationOption(
		optNamingEnabled,
		"enable or disable naming checks",
		func(o validation.Options) string {
			return strconv.FormatBool(o.NamingEnabled)
		},
		func(o *validation.Options, co *confOpt) error {
			namingEnabled, err := strconv.ParseBool(co.value())
			o.NamingEnabled = namingEnabled
			return err
		},
	)

	httpBasicAuthPassword := conf.addServerOption(
		optHttpBasicAuthPassword,
		"password for basic authentication, required when a username is set",
		func(o server.Options) string {
			return ""
		},
		func(o *server.Options, co *confOpt) error {
			o.BasicAuthPassword = co.value()
			return nil
		},
	)
	httpBasicAuthPassword.sensitive = true

	conf.addServerOption(
		optHttpBasicAuthUsername,
		"username for basic authentication - if empty, requests are not authenticated",
		func(o server.Options) string {
			return ""
		},
		func(o *server.Options, co *confOpt) error {
			o.BasicAuthUsername = co.value()
			return nil
		},
	)
	conf.addServerOption(
		optHttpBindAddress,
		"TCP address of the HTTP API to listen on",
		func(o server.Options) string {
			return o.BindAddress
		},
		func(o *server.Options, co *confOpt) error {
			bindAddress := co.value()
			if bindAddress == "" {
				return errors.New("is empty")
			}

			o.BindAddress = bindAddress
			return nil
		},
	)
	conf.addServerOption(
		optHttpMaxDocumentSize,
		"maximum size of a document request body in bytes",
		func(o server.Options) string {
			return strconv.FormatInt(o.MaxDocumentSize, 10)
		},
		func(o *server.Options, co *confOpt) error {
			maxDocumentSize, err := strconv.ParseInt(co.value(), 10, 64)
			o.MaxDocumentSize = maxDocumentSize
			return err
		},
	)
	conf.addServerOption(
		optHttpReadTimeout,
		"maximum duration for reading the entire request - see http.Server#ReadTimeout",
		func(o server.Options) string {
			return o.ReadTimeout.String()
		},
		func(o *server.Options, co *confOpt) error {
			readTimeout, err := time.ParseDuration(co.value())
			o.ReadTimeout = readTimeout
			return err
		},
	)
	conf.addServerOption(
		optHttpWriteTimeout,
		"maximum duration before timing out writing the response - see http.Server#WriteTimeout",
		func(o server.Options) string {
			return o.WriteTimeout.String()
		},
		func(o *server.Options, co *confOpt) error {
			writeTimeout, err := time.ParseDuration(co.value())
			o.WriteTimeout = writeTimeout
			return err
		},
	)

	conf.setServerOptions(server.NewOptions())
	conf.setStoreOptions(store.NewOptions())
	conf.setValidationOptions(validation.NewOptions())

	return &conf
}

func listConf(w io.Writer, conf *conf) {
	for _, opt := range conf.sortedOpts() {
		value := opt.value()
		if opt.sensitive && value != "" {
			value = "***"
		}
		fmt.Fprintf(w, "%s=%s\n", opt.key, value)
	}
}

func listConfErrors(w io.Writer, conf *conf) int {
	var n int
	for _, opt := range conf.sortedOpts() {
		if opt.err == nil {
			continue
		}

		value := opt.value()
		if value == "" {
			fmt.Fprintf(w, "%s: %v\n", opt.key, opt.err)
		} else {
			fmt.Fprintf(w, "%s=%s: %v\n", opt.key, value, opt.err)
		}
		n++
	}
	return n
}

func listConfOpts(w io.Writer, conf *conf) {
	opts := conf.sortedOpts()

	maxKeyLength := 0
	for _, opt := range opts {
		if len(opt.key) > maxKeyLength {
			maxKeyLength = len(opt.key)
		}
	}

	var sb strings.Builder
	for _, opt := range opts {
		sb.WriteString(opt.key)
		sb.WriteString(strings.Repeat(" ", maxKeyLength-len(opt.key)))
		sb.WriteString("   ")
		sb.WriteString(opt.description)

		if opt.defaultValue != "" {
			sb.WriteString(fmt.Sprintf(" - default: %s", opt.defaultValue))
		}

		sb.WriteRune('\n')
	}

	io.WriteString(w, sb.String())
}

type conf struct {
	envFile envFile
	opts    map[string]*confOpt
}

func (c *conf) addOption(key string, description string) *confOpt {
	co := confOpt{
		env:         c.envFile.env,
		key:         envPrefix + key,
		description: description,
	}

	c.opts[key] = &co
	return &co
}

func (c *conf) addServerOption(
	key string,
	description string,
	getOption func(server.Options) string,
	setOption func(*server.Options, *confOpt) error,
) *confOpt {
	co := c.addOption(key, description)
	co.getServerOption = getOption
	co.setServerOption = setOption
	return co
}

func (c *conf) addStoreOption(
	key string,
	description string,
	getOption func(store.Options) string,
	setOption func(*store.Options, *confOpt) error,
) *confOpt {
	co := c.addOption(key, description)
	co.getStoreOption = getOption
	co.setStoreOption = setOption
	return co
}

func (c *conf) addValidationOption(
	key string,
	description string,
	getOption func(validation.Options) string,
	setOption func(*validation.Options, *confOpt) error,
) *confOpt {
	co := c.addOption(key, description)
	co.getValidationOption = getOption
	co.setValidationOption = setOption
	return co
}

// err returns the errors of all invalid options or nil.
func (c *conf) err() error {
	var err error
	for _, opt := range c.sortedOpts() {
		if opt.err == nil {
			continue
		}

		value := opt.value()
		if value == "" {
			err = multierr.Append(err, fmt.Errorf("%s: %v", opt.key, opt.err))
		} else {
			err = multierr.Append(err, fmt.Errorf("%s=%s: %v", opt.key, value, opt.err))
		}
	}
	return err
}

func (c *conf) getServerOptions(options *server.Options) {
	for _, opt := range c.opts {
		if opt.setServerOption != nil {
			opt.err = opt.setServerOption(options, opt)
		}
	}
}

func (c *conf) getStoreOptions(options *store.Options) {
	for _, opt := range c.opts {
		if opt.setStoreOption != nil {
			opt.err = opt.setStoreOption(options, opt)
		}
	}
}

func (c *conf) getValidationOptions(options *validation.Options) {
	for _, opt := range c.opts {
		if opt.setValidationOption != nil {
			opt.err = opt.setValidationOption(options, opt)
		}
	}
}

// readFile reads option values from a YAML file.
// Keys are option names without prefix, in lower case - e.g. store_url.
// References to environment variables (e.g. ${HOME}) are substituted before the YAML is parsed.
func (c *conf) readFile(fileName string) error {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %v", fileName, err)
	}

	s, err := envsubst.Eval(string(b), func(name string) string {
		return c.envFile.env[name]
	})
	if err != nil {
		return fmt.Errorf("failed to substitute variables of config file %s: %v", fileName, err)
	}

	var values map[string]any
	if err := yaml.Unmarshal([]byte(s), &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %v", fileName, err)
	}

	var errs error
	for _, name := range slices.Sorted(maps.Keys(values)) {
		opt, ok := c.opts[strings.ToUpper(name)]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("config file %s: unknown option %s", fileName, name))
			continue
		}

		if value := values[name]; value != nil {
			opt.fileValue = fmt.Sprint(value)
		}
	}
	return errs
}

func (c *conf) setServerOptions(options server.Options) {
	for _, opt := range c.opts {
		if opt.getServerOption != nil {
			opt.defaultValue = opt.getServerOption(options)
		}
	}
}

func (c *conf) setStoreOptions(options store.Options) {
	for _, opt := range c.opts {
		if opt.getStoreOption != nil {
			opt.defaultValue = opt.getStoreOption(options)
		}
	}
}

func (c *conf) setValidationOptions(options validation.Options) {
	for _, opt := range c.opts {
		if opt.getValidationOption != nil {
			opt.defaultValue = opt.getValidationOption(options)
		}
	}
}

func (c *conf) sortedOpts() []*confOpt {
	opts := slices.Collect(maps.Values(c.opts))

	slices.SortFunc(opts, func(a *confOpt, b *confOpt) int {
		return strings.Compare(a.key, b.key)
	})

	return opts
}

type confOpt struct {
	env env

	key          string
	description  string
	defaultValue string
	fileValue    string
	sensitive    bool // if true, a set value is not listed

	getServerOption     func(server.Options) string
	getStoreOption      func(store.Options) string
	getValidationOption func(validation.Options) string
	setServerOption     func(*server.Options, *confOpt) error
	setStoreOption      func(*store.Options, *confOpt) error
	setValidationOption func(*validation.Options, *confOpt) error

	err error
}

func (o *confOpt) value() string {
	if value := o.env[o.key]; value != "" {
		return value
	}
	if o.fileValue != "" {
		return o.fileValue
	}
	return o.defaultValue
}

type env map[string]string

func (v env) Set(value string) error {
	s := strings.SplitN(value, "=", 2)
	if len(s) != 2 {
		return fmt.Errorf("required format %s", v)
	}
	v[s[0]] = s[1]
	return nil
}

func (v env) String() string {
	return "<key>=<value>"
}

type envFile struct {
	env env
}

// Set reads environment variables from a file, one <key>=<value> per line.
// Empty lines and lines, starting with #, are skipped.
func (v envFile) Set(value string) error {
	file, err := os.Open(value)
	if err != nil {
		return err
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)

	i := 0
	for scanner.Scan() {
		i++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := v.env.Set(line); err != nil {
			return fmt.Errorf("wrong format in line %d: required format %s", i, v.env)
		}
	}

	return scanner.Err()
}

func (v envFile) String() string {
	return "<file>"
}
