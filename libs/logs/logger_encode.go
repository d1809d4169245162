package logs

import (
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
)

// StacktraceField captures the current goroutine stack, one frame line per tab-indented row.
func StacktraceField() zap.Field {
	lines := strings.Split(strings.TrimRight(string(debug.Stack()), "\n"), "\n")
	return zap.String("stacktrace", strings.Join(lines, "\n\t"))
}
