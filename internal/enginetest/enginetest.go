// Package enginetest provides shell-script stand-ins for the engine binary.
// The scripts need /bin/sh, sed, awk and sort, so callers skip on Windows.
package enginetest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Menu emulates the engine's menu loop closely enough for session tests:
// it keeps its process table in processes.txt next to the script, answers
// every selector of the table and reads stdin to EOF before replying.
const Menu = `dir=$(dirname "$0")
state="$dir/processes.txt"
[ -f "$state" ] || : > "$state"

IFS= read -r sel || exit 0
rest=""
while IFS= read -r line; do
	rest="$rest$line
"
done
body=$(printf '%s' "$rest" | sed '$d')

timeline() {
	t=0
	while read -r id a b p; do
		[ -n "$id" ] || continue
		s=$t
		[ "$a" -gt "$s" ] && s=$a
		e=$((s + b))
		if [ "$1" = pri ]; then
			echo "$id (Pri:$p): $s -> $e"
		else
			echo "$id: $s -> $e | Waiting: $((s - a))"
		fi
		t=$e
	done
}

procs() {
	if [ -n "$body" ]; then
		printf '%s\n' "$body" | sed '1d' | awk '{printf "P%d %s %s %s\n", NR, $1, $2, $3}'
	else
		tr ':' ' ' < "$state" | sort -s -n -k2,2
	fi
}

case "$sel" in
1) echo "Running memory allocation test"; echo "Allocated 3 blocks"; echo "Memory test complete" ;;
2) echo "FCFS Scheduling:"; procs | timeline ;;
3) echo "SJF Scheduling:"; procs | sort -s -n -k3,3 | timeline ;;
4) echo "Priority Scheduling:"; procs | sort -s -n -k4,4 | timeline pri ;;
5) echo "Round Robin Scheduling:"; procs | timeline ;;
6) for alg in FCFS SJF Priority RR; do echo "$alg Scheduling:"; procs | timeline; done ;;
7) echo "File server listening on port 9000"; exec sleep 60 ;;
9) echo PROCESSES_START; cat "$state"; echo PROCESSES_END ;;
10) printf '%s\n' "$body" | { read -r id a b p; echo "P$id:$a:$b:$p" >> "$state"; }; echo "Process added" ;;
11) : > "$state"; echo "All processes cleared" ;;
12) printf 'P1:0:5:2\nP2:2:3:1\nP3:4:2:3\n' > "$state"; echo "Sample processes loaded" ;;
*) echo "Invalid choice: $sel" >&2; exit 2 ;;
esac
echo "Exiting"
`

// Hang prints partial output and never exits on its own.
const Hang = `echo "FCFS Scheduling:"
echo "P1: 0 -> 5"
sleep 60
echo "P2: 5 -> 8"
`

// Crash prints a well-formed block and segment, then exits non-zero.
const Crash = `cat > /dev/null
echo PROCESSES_START
echo P1:0:5:2
echo PROCESSES_END
echo "P1: 0 -> 5"
echo "segmentation fault" >&2
exit 139
`

// Write stores body as an executable script named "engine" in a fresh temp
// dir and returns its path.
func Write(t testing.TB, body string) string {
	t.Helper()
	return WriteIn(t, t.TempDir(), body)
}

// WriteIn is Write with an explicit directory.
func WriteIn(t testing.TB, dir, body string) string {
	t.Helper()
	SkipOnWindows(t)
	path := filepath.Join(dir, "engine")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	return path
}

// SkipOnWindows skips tests that depend on shell scripts.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine scripts require /bin/sh")
	}
}
