// Package attributes evaluates user expressions against the traced program
// to label the session span and to join it to an existing trace.
//
// Expressions use the expr language and see four variables:
//   - env: environment the target starts with (map[string]string)
//   - args: target argv, args[0] is the program
//   - cmdline: argv joined with spaces
//   - exe: the target program
//
// Trace IDs that are not 32 hex characters are hashed with SHA-256.
// Invalid parent span IDs leave the session span without a parent.
package attributes
