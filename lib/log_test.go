package lib

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultLogger(t *testing.T) {
	// pre-define expected
	expected := NewLogger(LoggerConfig{
		Level: DebugLevel,
		Out:   os.Stdout,
	})
	// execute the function call
	got := NewDefaultLogger()
	// compare got vs expected
	require.Equal(t, expected, got)
}

func TestNewNullLogger(t *testing.T) {
	// pre-define expected
	expected := NewLogger(LoggerConfig{
		Level: DebugLevel,
		Out:   io.Discard,
	})
	// execute the function call
	got := NewNullLogger()
	// compare got vs expected
	require.Equal(t, expected, got)
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		level    int32
		log      func(l LoggerI)
		contains string
		empty    bool
	}{
		{
			name:     "debug visible at debug",
			detail:   "the debug line is written when the level is debug",
			level:    DebugLevel,
			log:      func(l LoggerI) { l.Debugf("hop %d", 1) },
			contains: "DEBUG: hop 1",
		},
		{
			name:   "debug hidden at info",
			detail: "the debug line is filtered when the level is info",
			level:  InfoLevel,
			log:    func(l LoggerI) { l.Debug("hidden") },
			empty:  true,
		},
		{
			name:     "error visible at warn",
			detail:   "levels above the configured one are written",
			level:    WarnLevel,
			log:      func(l LoggerI) { l.Error("boom") },
			contains: "ERROR: boom",
		},
		{
			name:     "module tag",
			detail:   "With() prefixes the module name",
			level:    InfoLevel,
			log:      func(l LoggerI) { l.With("router").Info("executed") },
			contains: "INFO: [router] executed",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			test.log(NewLogger(LoggerConfig{Level: test.level, Out: out}))
			if test.empty {
				require.Empty(t, out.String(), test.detail)
				return
			}
			require.Contains(t, out.String(), test.contains, test.detail)
		})
	}
}

func TestLoggerWritesToDataDir(t *testing.T) {
	dataDir := t.TempDir()
	l := NewLogger(LoggerConfig{Level: InfoLevel}, dataDir)
	l.Info("to file")
	_, err := os.Stat(dataDir + "/" + LogDirectory + "/" + LogFileName)
	require.NoError(t, err)
}
