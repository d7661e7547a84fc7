package main

import (
	"strings"

	"github.com/natefinch/atomic"
)

// writeReport atomically writes report text to path, so a reader (a CI
// artifact collector, say) never observes a half-written file.
func writeReport(path, report string) error {
	return atomic.WriteFile(path, strings.NewReader(report))
}
