package attributes

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/expr-lang/expr/vm"
	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/procmeta"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Evaluator computes custom span attributes.
type Evaluator struct {
	customAttrs []config.CustomAttribute
	programs    []*vm.Program
}

// NewEvaluator compiles every custom attribute expression up front.
func NewEvaluator(customAttrs []config.CustomAttribute) (*Evaluator, error) {
	programs := make([]*vm.Program, len(customAttrs))
	for i, attr := range customAttrs {
		program, err := compile(fmt.Sprintf("attribute %q", attr.Name), attr.Expression)
		if err != nil {
			return nil, err
		}
		programs[i] = program
	}

	return &Evaluator{
		customAttrs: customAttrs,
		programs:    programs,
	}, nil
}

// EvaluateCustomAttributes evaluates the attributes for the target. An
// expression that fails at run time is logged and skipped. A map result
// expands into one attribute per key, named "<name>.<key>".
func (e *Evaluator) EvaluateCustomAttributes(md *procmeta.ProcessMetadata) ([]attribute.KeyValue, error) {
	if len(e.customAttrs) == 0 || md == nil {
		return nil, nil
	}

	var attrs []attribute.KeyValue
	for i, custom := range e.customAttrs {
		output, err := run(e.programs[i], md)
		if err != nil {
			log.Warnf("failed to evaluate expression for attribute %q: %v", custom.Name, err)
			continue
		}

		value := reflect.ValueOf(output)
		if value.Kind() != reflect.Map {
			attrs = append(attrs, attribute.String(custom.Name, fmt.Sprint(output)))
			continue
		}

		keys := value.MapKeys()
		sort.Slice(keys, func(a, b int) bool {
			return fmt.Sprint(keys[a].Interface()) < fmt.Sprint(keys[b].Interface())
		})
		for _, key := range keys {
			name := custom.Name + "." + sanitizeAttributeName(fmt.Sprint(key.Interface()))
			attrs = append(attrs, attribute.String(name, fmt.Sprint(value.MapIndex(key).Interface())))
		}
	}

	return attrs, nil
}

// sanitizeAttributeName replaces non-alphanumeric characters with underscores.
func sanitizeAttributeName(name string) string {
	result := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result[i] = c
		} else {
			result[i] = '_'
		}
	}
	return string(result)
}
