// Package env composes the environment handed to the engine process.
package env

import (
	"os"
	"sort"
	"strings"
)

type Var map[string]string

// Env layers variables over an optional copy of the caller's environment.
// Later Set calls win.
type Env struct {
	base Var // cached OS environment; empty when isolated
	vars Var
}

// New returns an Env whose base is the current process environment when
// fromOS is true, and empty otherwise.
func New(fromOS bool) *Env {
	e := &Env{base: make(Var), vars: make(Var)}
	if fromOS {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
				e.base[k] = v
			}
		}
	}
	return e
}

// Set sets K=V. Empty keys are ignored.
func (e *Env) Set(k, v string) {
	if k == "" {
		return
	}
	e.vars[k] = v
}

// SetPairs applies "K=V" entries in order, skipping malformed ones.
func (e *Env) SetPairs(kvs []string) {
	for _, kv := range kvs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			e.Set(k, v)
		}
	}
}

// Unset removes a variable from both layers.
func (e *Env) Unset(k string) {
	delete(e.vars, k)
	delete(e.base, k)
}

// Slice composes base and overrides, expands ${VAR} references against the
// composed map (one pass, no recursion; unknown names stay as written) and
// returns sorted "K=V" entries.
func (e *Env) Slice() []string {
	m := make(Var, len(e.base)+len(e.vars))
	for k, v := range e.base {
		m[k] = v
	}
	for k, v := range e.vars {
		m[k] = v
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+expand(m[k], m))
	}
	return out
}

func expand(s string, m Var) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i+2:], '}')
		if j < 0 {
			break
		}
		name := s[i+2 : i+2+j]
		b.WriteString(s[:i])
		if v, ok := m[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[i : i+3+j])
		}
		s = s[i+3+j:]
	}
	b.WriteString(s)
	return b.String()
}
