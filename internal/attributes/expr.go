package attributes

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mrzor/livetrace/internal/procmeta"
)

// typeEnv declares the variable types for compilation.
var typeEnv = map[string]interface{}{
	"env":     map[string]string{},
	"args":    []string{},
	"cmdline": "",
	"exe":     "",
}

func compile(what, source string) (*vm.Program, error) {
	program, err := expr.Compile(source, expr.Env(typeEnv))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s expression: %w", what, err)
	}
	return program, nil
}

func run(program *vm.Program, md *procmeta.ProcessMetadata) (interface{}, error) {
	return expr.Run(program, map[string]interface{}{
		"env":     md.Environ,
		"args":    md.Args,
		"cmdline": md.CmdlineFull,
		"exe":     md.Exename,
	})
}
