package logger

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", FormatPlain)

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestFormats(t *testing.T) {
	fileLine := regexp.MustCompile(`logger_test\.go:\d+: \[INFO\] hello`)

	var text bytes.Buffer
	InitWithWriter(&text, "info", FormatText)
	Info("hello")
	assert.Regexp(t, fileLine, text.String())

	var plain bytes.Buffer
	InitWithWriter(&plain, "info", FormatPlain)
	Info("hello")
	assert.Contains(t, plain.String(), "[INFO] hello")
	assert.NotRegexp(t, fileLine, plain.String())

	assert.True(t, ValidFormat("TEXT"))
	assert.True(t, ValidFormat("plain"))
	assert.False(t, ValidFormat("json"))
	assert.False(t, ValidFormat(""))
}
