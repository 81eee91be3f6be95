package main

import (
	"fmt"
	"strings"

	"github.com/vertti/ttysplit/pkg/envvar"
)

// flagSet represents a flag that is either set (true) or not set (false).
type flagSet struct {
	name  string
	isSet bool
}

// requireAtMostOne returns an error if more than one of the given flags is set.
func requireAtMostOne(flags ...flagSet) error {
	var set []string
	for _, f := range flags {
		if f.isSet {
			set = append(set, f.name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("only one of %s can be specified", strings.Join(set, ", "))
	}
	return nil
}

// parseAssignments parses repeated KEY=VALUE flag values in order. The value
// may itself contain '='.
func parseAssignments(flag string, values []string) ([]envvar.EnvVar, error) {
	vars := make([]envvar.EnvVar, 0, len(values))
	for _, kv := range values {
		if key, _, ok := strings.Cut(kv, "="); !ok || key == "" {
			return nil, fmt.Errorf("%s: expected KEY=VALUE, got %q", flag, kv)
		}
		v, err := envvar.Parse(kv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flag, err)
		}
		vars = append(vars, v)
	}
	return vars, nil
}
