package env

import (
	"strings"
	"testing"
)

// FuzzExpandSlice fuzzes SetPairs/Slice with random inputs to ensure no panics
// and that ${VAR} expansion keeps the output sorted.
func FuzzExpandSlice(f *testing.F) {
	// seeds (newline-separated)
	f.Add([]byte("A=1\nB=${A}-x"), []byte("C=${B}-y"))
	f.Add([]byte("FOO=bar"), []byte("FOO=${FOO}"))
	f.Add([]byte("X=$Y"), []byte("Y=${X}"))
	f.Add([]byte("U=${"), []byte("V=${}"))

	f.Fuzz(func(t *testing.T, firstB []byte, secondB []byte) {
		first := splitNZ(string(firstB))
		second := splitNZ(string(secondB))
		if len(first) > 20 {
			first = first[:20]
		}
		if len(second) > 20 {
			second = second[:20]
		}

		e := New(false)
		e.SetPairs(first)
		e.SetPairs(second)
		out := e.Slice()
		for i, kv := range out {
			if !strings.Contains(kv, "=") || strings.HasPrefix(kv, "=") {
				t.Fatalf("bad pair: %q", kv)
			}
			if i > 0 && key(out[i-1]) >= key(kv) {
				t.Fatalf("unsorted output: %q before %q", out[i-1], kv)
			}
		}
		containsDollar := false
		for _, s := range append(append([]string{}, first...), second...) {
			if strings.ContainsRune(s, '$') {
				containsDollar = true
				break
			}
		}
		if !containsDollar {
			for _, kv := range out {
				if strings.Contains(kv, "${") {
					t.Fatalf("unexpected placeholder remains: %q", kv)
				}
			}
		}
	})
}

func key(kv string) string {
	k, _, _ := strings.Cut(kv, "=")
	return k
}

// splitNZ splits s by newlines and returns non-empty trimmed lines.
func splitNZ(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
