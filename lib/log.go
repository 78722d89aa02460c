package lib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogDirectory = "logs"
	LogFileName  = "log"
)

/*
	This file implements a leveled logger (Debug, Info, Warn, Error, Fatal) with colored output.
	Output goes to an explicit writer or, when none is configured, to stdout and an auto-rotating file
	under the data directory.
*/

// LoggerI defines the interface for various logging levels and formatted output
type LoggerI interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
	Print(msg string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Printf(format string, args ...interface{})
	With(module string) LoggerI
}

const (
	DebugLevel int32 = -4
	InfoLevel  int32 = 0
	WarnLevel  int32 = 4
	ErrorLevel int32 = 8
)

var _ LoggerI = &Logger{}

// LoggerConfig holds configuration settings for the logger, including logging level and output writer
type LoggerConfig struct {
	Level int32 `json:"level"`
	Out   io.Writer
}

// Logger is the concrete implementation of LoggerI
type Logger struct {
	config LoggerConfig
	module string // optional tag printed in front of every line
}

// levelStyle pairs a level label with its color
type levelStyle struct {
	label string
	paint func(format string, a ...interface{}) string
}

var (
	debugStyle = levelStyle{"DEBUG", color.BlueString}
	infoStyle  = levelStyle{"INFO", color.GreenString}
	warnStyle  = levelStyle{"WARN", color.YellowString}
	errorStyle = levelStyle{"ERROR", color.RedString}
	fatalStyle = levelStyle{"FATAL", color.RedString}
)

func (l *Logger) Debug(msg string) { l.log(DebugLevel, debugStyle, msg) }
func (l *Logger) Info(msg string)  { l.log(InfoLevel, infoStyle, msg) }
func (l *Logger) Warn(msg string)  { l.log(WarnLevel, warnStyle, msg) }
func (l *Logger) Error(msg string) { l.log(ErrorLevel, errorStyle, msg) }

// Print() logs a message without any specific log level or color
func (l *Logger) Print(msg string) { l.write(msg) }

// Fatal() logs an error message and terminates the program
func (l *Logger) Fatal(msg string) {
	l.write(l.paint(fatalStyle, msg))
	os.Exit(1)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, debugStyle, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, infoStyle, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, warnStyle, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, errorStyle, fmt.Sprintf(format, args...))
}

func (l *Logger) Fatalf(format string, args ...interface{}) { l.Fatal(fmt.Sprintf(format, args...)) }

func (l *Logger) Printf(format string, args ...interface{}) { l.write(fmt.Sprintf(format, args...)) }

// With() returns a logger sharing the same output that tags every line with the module name
func (l *Logger) With(module string) LoggerI {
	return &Logger{config: l.config, module: module}
}

// log() filters by level and writes the colored line
func (l *Logger) log(level int32, style levelStyle, msg string) {
	if l.config.Level > level {
		return
	}
	l.write(l.paint(style, msg))
}

// paint() prefixes the label and module, coloring each line of a multi-line message
func (l *Logger) paint(style levelStyle, msg string) string {
	prefix := style.label + ": "
	if l.module != "" {
		prefix += "[" + l.module + "] "
	}
	lines := strings.Split(prefix+msg, "\n")
	for i, line := range lines {
		lines[i] = style.paint("%s", line)
	}
	return strings.Join(lines, "\n")
}

// write() outputs the log message with a timestamp to the configured writer
func (l *Logger) write(msg string) {
	ts := color.HiBlackString(time.Now().Format(time.StampMilli))
	if _, err := fmt.Fprintf(l.config.Out, "%s %s\n", ts, msg); err != nil {
		fmt.Println("logger write failed:", err.Error())
	}
}

// NewLogger() creates a new Logger instance with the specified configuration and optional data directory path
func NewLogger(config LoggerConfig, dataDirPath ...string) LoggerI {
	if config.Out == nil {
		dir := DefaultDataDirPath()
		if len(dataDirPath) != 0 && dataDirPath[0] != "" {
			dir = dataDirPath[0]
		}
		if err := os.MkdirAll(filepath.Join(dir, LogDirectory), os.ModePerm); err != nil {
			panic(err)
		}
		config.Out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filepath.Join(dir, LogDirectory, LogFileName),
			MaxSize:    1, // megabyte
			MaxBackups: 500,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	return &Logger{config: config}
}

// NewDefaultLogger() creates a Logger with default settings, logging at the Debug level to stdout
func NewDefaultLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: os.Stdout})
}

// NewNullLogger() creates a Logger that discards all log output
func NewNullLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: io.Discard})
}
