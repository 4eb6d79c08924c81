/*
Sets up 4 loggers for messages of various priorities, backed by zerolog.
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger that always emits at one fixed level.
type Logger struct {
	zl    zerolog.Logger
	level zerolog.Level
}

var (
	InfoLog    *Logger // general info
	WarningLog *Logger // something might have gone wrong
	ErrorLog   *Logger // definitely an error, call Fatal() on this one to terminate the program
	TraceLog   *Logger // debugging, messages too detailed to display them all the time
)

func newLogger(w io.Writer, level zerolog.Level) *Logger {
	writer := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return &Logger{zl: zerolog.New(writer).With().Timestamp().Logger().Level(zerolog.TraceLevel), level: level}
}

// Errors go to Stderr, everything else to Stdout.
func init() {
	InfoLog = newLogger(os.Stdout, zerolog.InfoLevel)
	WarningLog = newLogger(os.Stdout, zerolog.WarnLevel)
	ErrorLog = newLogger(os.Stderr, zerolog.ErrorLevel)
	TraceLog = newLogger(os.Stdout, zerolog.TraceLevel)
	SetTraceEnabled(false)
}

// SetTraceEnabled switches trace output on or off.
func SetTraceEnabled(enabled bool) {
	if enabled {
		TraceLog.zl = TraceLog.zl.Level(zerolog.TraceLevel)
	} else {
		TraceLog.zl = TraceLog.zl.Level(zerolog.Disabled)
	}
}

// SetOutput redirects all four loggers to w, mostly used to silence tests.
func SetOutput(w io.Writer) {
	for _, l := range []*Logger{InfoLog, WarningLog, ErrorLog, TraceLog} {
		l.zl = l.zl.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true})
	}
}

// Event starts a structured event at the logger's level.
func (l *Logger) Event() *zerolog.Event {
	return l.zl.WithLevel(l.level)
}

func (l *Logger) Print(v ...interface{}) {
	l.Event().Msg(fmt.Sprint(v...))
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.Event().Msgf(format, v...)
}

// Fatal logs and exits the process with status 1.
func (l *Logger) Fatal(v ...interface{}) {
	l.zl.Fatal().Msg(fmt.Sprint(v...))
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.zl.Fatal().Msgf(format, v...)
}
