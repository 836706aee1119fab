package env

import (
	"reflect"
	"strings"
	"testing"
)

func TestSliceIsolated(t *testing.T) {
	e := New(false)
	e.SetPairs([]string{"B=2", "A=1", "bad", "=empty"})
	e.Set("C", "${A}-${B}-${MISSING}")
	want := []string{"A=1", "B=2", "C=1-2-${MISSING}"}
	if got := e.Slice(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSliceEmpty(t *testing.T) {
	if got := New(false).Slice(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestLaterSetsWin(t *testing.T) {
	t.Setenv("NEXUS_ENV_TEST", "os")
	e := New(true)
	if !contains(e.Slice(), "NEXUS_ENV_TEST=os") {
		t.Fatal("OS base missing")
	}
	e.SetPairs([]string{"NEXUS_ENV_TEST=file"})
	e.Set("NEXUS_ENV_TEST", "flag")
	if !contains(e.Slice(), "NEXUS_ENV_TEST=flag") {
		t.Fatal("override not applied")
	}
	e.Unset("NEXUS_ENV_TEST")
	for _, kv := range e.Slice() {
		if strings.HasPrefix(kv, "NEXUS_ENV_TEST=") {
			t.Fatalf("unset var still present: %s", kv)
		}
	}
}

func TestExpandUsesBase(t *testing.T) {
	t.Setenv("NEXUS_ENV_HOME", "/srv/nexus")
	e := New(true)
	e.Set("ENGINE_DATA", "${NEXUS_ENV_HOME}/data")
	if !contains(e.Slice(), "ENGINE_DATA=/srv/nexus/data") {
		t.Fatal("expansion against OS base failed")
	}
}

func TestExpandUnterminated(t *testing.T) {
	m := Var{"A": "1"}
	cases := map[string]string{
		"${A}${A}": "11",
		"x${A":     "x${A",
		"${}":      "${}",
		"$A":       "$A",
	}
	for in, want := range cases {
		if got := expand(in, m); got != want {
			t.Fatalf("expand(%q) = %q, want %q", in, got, want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
