package command

import "os"

// EnvSource supplies the environment a Builder inherits.
// It is queried once, when the Builder is constructed.
type EnvSource interface {
	Environ() []string
}

// RealEnvSource reads the current process environment.
type RealEnvSource struct{}

func (r *RealEnvSource) Environ() []string {
	return os.Environ()
}

// MapEnvSource serves a fixed environment; useful in tests.
type MapEnvSource map[string]string

func (m MapEnvSource) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}
