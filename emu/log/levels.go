package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Level mirrors logrus levels, from the most to the least severe.
type Level uint32

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (lvl Level) String() string {
	return logrus.Level(lvl).String()
}

var disabled bool

// Disable turns off all logging, whatever the level or module. Used by tests
// and benchmarks.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects the log output to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

func init() {
	// Per-module filtering is done by Module.Enabled, logrus must let
	// everything through.
	logrus.SetLevel(logrus.DebugLevel)
}
