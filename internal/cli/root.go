package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uim-go/dbtype"
	"github.com/uim-go/dbtype/log/logrusadapter"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	DatabaseTimezone    string
	UserTimezone        string
	ApplicationTimezone string
	Locale              string
	LocaleParser        bool

	registry *dbtype.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dbtype CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dbtype",
		Short: "Convert values between application and database form",
		Long: `Convert values between their application and database representations.

Values given on the command line are treated as request data: they are marshalled
by the named converter and may then be converted to their stored form.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				f := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}
				return f.Error(ExitCommandError, ErrCodeConfig, fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			registry, err := opts.buildRegistry(cmd)
			if err != nil {
				return opts.formatter(cmd).Error(ExitCommandError, ErrCodeConfig, err)
			}
			opts.registry = registry
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log conversions to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseTimezone, "db-tz", "", "time zone of stored values")
	cmd.PersistentFlags().StringVar(&opts.UserTimezone, "user-tz", "", "time zone of marshalled strings without an offset")
	cmd.PersistentFlags().StringVar(&opts.ApplicationTimezone, "app-tz", "", "time zone of converted values (default local)")
	cmd.PersistentFlags().StringVar(&opts.Locale, "locale", "", "BCP 47 language tag used by the locale parser")
	cmd.PersistentFlags().BoolVar(&opts.LocaleParser, "locale-parser", false, "parse marshalled strings in the locale format")

	cmd.AddCommand(NewMarshalCommand(opts))
	cmd.AddCommand(NewToStorageCommand(opts))
	cmd.AddCommand(NewToApplicationCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewIDCommand(opts))

	return cmd
}

// buildRegistry loads the configuration file, if any, applies flag overrides and
// installs the configured converters in a new registry.
func (opts *RootOptions) buildRegistry(cmd *cobra.Command) (*dbtype.Registry, error) {
	config := &dbtype.Config{}
	if opts.ConfigPath != "" {
		var err error
		config, err = dbtype.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("db-tz") {
		config.DatabaseTimezone = opts.DatabaseTimezone
	}
	if flags.Changed("user-tz") {
		config.UserTimezone = opts.UserTimezone
	}
	if flags.Changed("app-tz") {
		config.ApplicationTimezone = opts.ApplicationTimezone
	}
	if flags.Changed("locale") {
		config.Locale = opts.Locale
	}
	if flags.Changed("locale-parser") {
		config.LocaleParser = opts.LocaleParser
	}

	if opts.Verbose {
		l := logrus.New()
		l.SetOutput(cmd.ErrOrStderr())
		l.SetLevel(logrus.TraceLevel)
		config.Logger = logrusadapter.NewLogger(l)
		config.LogLevel = dbtype.LogLevelTrace.String()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	registry := dbtype.NewRegistry()
	if err := config.Apply(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
