// Package progresslog reports driver progress to stderr with elapsed-time
// prefixes, the way the teacher pipeline's own progress reporter does.
package progresslog

import (
	"fmt"
	"os"
	"time"
)

// Progress reports pipeline progress to stderr with elapsed time.
type Progress struct {
	start   time.Time
	verbose bool
}

// New creates a progress reporter whose clock starts now.
func New(verbose bool) *Progress {
	return &Progress{start: time.Now(), verbose: verbose}
}

// Log prints a progress message with an elapsed-time prefix.
func (p *Progress) Log(format string, args ...any) {
	elapsed := time.Since(p.start)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[%02d:%02d] %s\n", mins, secs, msg)
}

// Verbose prints only when verbose mode is enabled.
func (p *Progress) Verbose(format string, args ...any) {
	if p.verbose {
		p.Log(format, args...)
	}
}

// Warn prints a warning-tagged message unconditionally. It is shaped to
// satisfy the lowering core's warnf callback (func(string, ...any)), so a
// Progress can be passed straight through as lower.RunMethod's logger.
func (p *Progress) Warn(format string, args ...any) {
	p.Log("WARN "+format, args...)
}
