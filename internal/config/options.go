package config

import "time"

// DefaultDepth is the call-depth limit libmcount applies when none is given.
const DefaultDepth = 1024

// InstallLibPath is the directory libmcount was installed into.
// Injected at build time: -ldflags "-X github.com/mrzor/livetrace/internal/config.InstallLibPath=/usr/local/lib/uftrace"
var InstallLibPath = ""

// CustomAttribute represents a user-defined span attribute with an expression.
type CustomAttribute struct {
	Name       string // Attribute name (e.g., "env.name", "pod")
	Expression string // Expression to evaluate (e.g., `env["ENVIRONMENT"]`)
}

// Options is the configuration shared by every phase of a live session.
type Options struct {
	// Capture-only options, consumed by the record phase.
	Filter    string
	Depth     int
	Disabled  bool
	Threshold time.Duration

	// Report runs the report phase between record and replay.
	Report bool
	// ListEvent switches the session to event listing instead of capture.
	ListEvent bool
	// Nop runs the record phase only.
	Nop bool

	// LibPath overrides where libmcount is looked up.
	LibPath string

	// Exename is the target program, Args the arguments passed to it.
	Exename string
	Args    []string

	// DirName is the trace store of the session.
	DirName string

	// DisabledAtStart carries Disabled into replay after ResetCaptureOnly.
	DisabledAtStart bool

	TraceID          string
	ParentID         string
	CustomAttributes []CustomAttribute

	// Debug is the verbosity level (-v count).
	Debug int
}

// NewOptions returns options with their defaults applied.
func NewOptions() *Options {
	return &Options{
		Depth: DefaultDepth,
	}
}

// ResetCaptureOnly clears the options the record phase already applied so
// report and replay do not apply them a second time. The disabled flag is
// kept in DisabledAtStart for the replay display depth.
func (o *Options) ResetCaptureOnly() bool {
	o.DisabledAtStart = o.Disabled

	o.Filter = ""
	o.Depth = DefaultDepth
	o.Disabled = false
	o.Threshold = 0

	return o.DisabledAtStart
}

// FullCommand returns the target program followed by its arguments.
func (o *Options) FullCommand() []string {
	return append([]string{o.Exename}, o.Args...)
}
