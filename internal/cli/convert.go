package cli

import (
	"errors"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uim-go/dbtype"
)

// NewMarshalCommand creates the marshal command.
func NewMarshalCommand(rootOpts *RootOptions) *cobra.Command {
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "marshal <type> [value]",
		Short: "Marshal request data with a converter",
		Long: `Marshal request data with the converter registered under <type>.

The value is marshalled as text. With --field the fields are marshalled as structured
input instead, e.g. --field year=2024 --field month=1 --field day=5. Input that holds
no value prints null.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, in, raw, err := rootOpts.prepare(cmd, args, fields)
			if err != nil {
				return err
			}

			v, err := c.Marshal(in)
			if err != nil {
				return rootOpts.formatter(cmd).Error(ExitFailure, ErrCodeConversion, err)
			}
			return rootOpts.formatter(cmd).Success(Result{Type: args[0], Input: raw, Value: formatValue(v)})
		},
	}

	cmd.Flags().StringToStringVar(&fields, "field", nil, "structured input field (key=value)")
	return cmd
}

// NewToStorageCommand creates the to-storage command.
func NewToStorageCommand(rootOpts *RootOptions) *cobra.Command {
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "to-storage <type> [value]",
		Short: "Marshal request data and convert it to its stored form",
		Args:  cobra.RangeArgs(1, 2),
		Long: `Marshal request data with the converter registered under <type> and print the value
that would be written to the database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, in, raw, err := rootOpts.prepare(cmd, args, fields)
			if err != nil {
				return err
			}

			f := rootOpts.formatter(cmd)
			v, err := c.Marshal(in)
			if err != nil {
				return f.Error(ExitFailure, ErrCodeConversion, err)
			}
			stored, err := c.ToStorage(v, nil)
			if err != nil {
				return f.Error(ExitFailure, ErrCodeConversion, err)
			}
			return f.Success(Result{Type: args[0], Input: raw, Value: formatValue(stored)})
		},
	}

	cmd.Flags().StringToStringVar(&fields, "field", nil, "structured input field (key=value)")
	return cmd
}

// NewToApplicationCommand creates the to-application command.
func NewToApplicationCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "to-application <type> <stored>",
		Short:         "Convert a stored value to its application form",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, raw, err := rootOpts.prepare(cmd, args, nil)
			if err != nil {
				return err
			}

			f := rootOpts.formatter(cmd)
			v, err := c.ToApplication(raw, nil)
			if err != nil {
				return f.Error(ExitFailure, ErrCodeConversion, err)
			}
			return f.Success(Result{Type: args[0], Input: raw, Value: formatValue(v)})
		},
	}
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "types",
		Short:         "List the registered converter types",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Lines(rootOpts.registry.Names())
		},
	}
}

// NewIDCommand creates the new-id command.
func NewIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "new-id <type>",
		Short:         "Generate a new primary key value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := rootOpts.prepare(cmd, args, nil)
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(Result{Type: args[0], Value: formatValue(c.NewID())})
		},
	}
}

// prepare builds the converter named by args[0] and the input described by args[1]
// and fields.
func (opts *RootOptions) prepare(cmd *cobra.Command, args []string, fields map[string]string) (dbtype.Converter, dbtype.Input, string, error) {
	f := opts.formatter(cmd)

	c, err := opts.registry.Build(args[0])
	if err != nil {
		code := ErrCodeConfig
		if errors.Is(err, dbtype.ErrUnknownType) {
			code = ErrCodeUnknownType
		}
		return nil, dbtype.Input{}, "", f.Error(ExitCommandError, code, err)
	}

	var raw string
	if len(args) > 1 {
		raw = args[1]
	}

	if len(fields) > 0 {
		m := make(map[string]any, len(fields))
		pairs := make([]string, 0, len(fields))
		for k, v := range fields {
			m[k] = v
			pairs = append(pairs, k+"="+v)
		}
		if raw == "" {
			sort.Strings(pairs)
			raw = strings.Join(pairs, ",")
		}
		return c, dbtype.Fields(m), raw, nil
	}

	if len(args) < 2 {
		return c, dbtype.Absent(), raw, nil
	}
	return c, dbtype.Text(raw), raw, nil
}
