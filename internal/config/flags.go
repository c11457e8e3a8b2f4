// Package config holds the options of a live trace session and parses them
// from command-line flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ErrNoCommand is returned when no target program follows the flags.
var ErrNoCommand = errors.New("no command specified")

// flagValues holds raw flag input that needs post-processing in Finalize.
type flagValues struct {
	attributes []string
}

// Flags binds options to a flag set.
type Flags struct {
	opts *Options
	raw  flagValues
	fs   *pflag.FlagSet
}

// BindFlags registers the live command flags on fs, writing into opts.
// Parsing stops at the first positional argument so target flags pass through.
func BindFlags(fs *pflag.FlagSet, opts *Options) *Flags {
	f := &Flags{opts: opts, fs: fs}

	fs.SetInterspersed(false)

	fs.StringVarP(&opts.Filter, "filter", "F", "", "only trace functions matching FILTER")
	fs.IntVarP(&opts.Depth, "depth", "D", DefaultDepth, "trace functions up to DEPTH calls deep")
	fs.BoolVar(&opts.Disabled, "disable", false, "start with tracing disabled")
	fs.DurationVarP(&opts.Threshold, "time-filter", "t", 0, "hide functions running shorter than THRESHOLD")
	fs.BoolVar(&opts.Report, "report", false, "show a report before the replay")
	fs.BoolVar(&opts.ListEvent, "list-event", false, "list available events instead of tracing")
	fs.BoolVar(&opts.Nop, "nop", false, "record only, skip report and replay")
	fs.StringVarP(&opts.LibPath, "libmcount-path", "L", "", "load libmcount from PATH")
	fs.StringVar(&opts.TraceID, "trace-id", "", "expression for the OpenTelemetry trace ID of the session")
	fs.StringVar(&opts.ParentID, "parent-id", "", "expression for the OpenTelemetry parent span ID of the session")
	fs.StringArrayVarP(&f.raw.attributes, "attribute", "a", nil, "custom span attribute NAME=EXPR (repeatable)")
	fs.CountVarP(&opts.Debug, "debug", "v", "print debug messages (repeat for more)")

	return f
}

// Finalize completes the options once flags are parsed. positional holds the
// arguments left after the flags: the target program and its arguments.
// Environment values fill in anything the command line left unset.
func (f *Flags) Finalize(positional []string, envCfg *EnvConfig) error {
	if len(positional) == 0 || positional[0] == "" {
		return fmt.Errorf("%w\nUsage: livetrace [options] [--] <command> [args...]", ErrNoCommand)
	}

	f.opts.Exename = positional[0]
	f.opts.Args = append([]string(nil), positional[1:]...)

	if envCfg == nil {
		envCfg = &EnvConfig{}
	}

	if f.opts.TraceID == "" {
		f.opts.TraceID = envCfg.TraceID
	}
	if f.opts.ParentID == "" {
		f.opts.ParentID = envCfg.ParentID
	}
	if f.opts.LibPath == "" {
		f.opts.LibPath = envCfg.LibPath
	}

	// Environment attributes come first, command-line ones are appended.
	if envCfg.Attributes != "" {
		attrs, err := ParseAttributeString(envCfg.Attributes)
		if err != nil {
			return fmt.Errorf("LIVETRACE_ATTRIBUTES: %w", err)
		}
		f.opts.CustomAttributes = append(f.opts.CustomAttributes, attrs...)
	}
	for _, raw := range f.raw.attributes {
		attr, err := parseAttribute(raw)
		if err != nil {
			return err
		}
		f.opts.CustomAttributes = append(f.opts.CustomAttributes, attr)
	}

	if f.opts.Depth <= 0 {
		return fmt.Errorf("invalid depth %d: must be positive", f.opts.Depth)
	}
	if f.opts.Threshold < 0 {
		return fmt.Errorf("invalid time filter %s: must not be negative", f.opts.Threshold)
	}

	return nil
}

// ParseAttributeString parses "name1=expr1;name2=expr2" into attributes.
// Empty sections are skipped.
func ParseAttributeString(s string) ([]CustomAttribute, error) {
	var attrs []CustomAttribute
	for _, section := range strings.Split(s, ";") {
		if strings.TrimSpace(section) == "" {
			continue
		}
		attr, err := parseAttribute(section)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseAttribute(raw string) (CustomAttribute, error) {
	name, expression, ok := strings.Cut(raw, "=")
	if !ok {
		return CustomAttribute{}, fmt.Errorf("invalid attribute format %q: expected NAME=EXPR", raw)
	}

	name = strings.TrimSpace(name)
	expression = strings.TrimSpace(expression)

	if name == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: name cannot be empty", raw)
	}
	if expression == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: expression cannot be empty", raw)
	}

	return CustomAttribute{Name: name, Expression: expression}, nil
}
