// Package procmeta describes the traced program for expression evaluation:
// its command line and the environment it is started with.
package procmeta

import "strings"

// ProcessMetadata holds structured process information for expression evaluation.
type ProcessMetadata struct {
	Exename     string            // Target program as given on the command line
	Environ     map[string]string // Environment the target starts with
	Args        []string          // Command-line arguments, Args[0] is the program
	CmdlineFull string            // Full command line as single string
}

// ForTarget builds the metadata of a target about to be started with
// environ.
func ForTarget(exename string, args []string, environ []string) *ProcessMetadata {
	argv, cmdline := parseCmdline(append([]string{exename}, args...))
	return &ProcessMetadata{
		Exename:     exename,
		Environ:     parseEnviron(environ),
		Args:        argv,
		CmdlineFull: cmdline,
	}
}

// parseEnviron turns KEY=VALUE entries into a map. Entries without a key or
// without "=" are skipped; the last value of a duplicated key wins.
func parseEnviron(raw []string) map[string]string {
	env := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

func parseCmdline(raw []string) ([]string, string) {
	if len(raw) == 0 {
		return nil, ""
	}
	args := append([]string(nil), raw...)
	return args, strings.Join(args, " ")
}
