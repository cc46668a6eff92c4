package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "  value ")
	assert.Equal(t, "value", GetEnvString("TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_STRING_UNSET", "default"))

	t.Setenv("TEST_STRING_BLANK", "   ")
	assert.Equal(t, "default", GetEnvString("TEST_STRING_BLANK", "default"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "valid", value: "42", want: 42},
		{name: "negative", value: "-3", want: -3},
		{name: "unset", value: "", want: 7},
		{name: "invalid", value: "abc", want: 7},
		{name: "trailing garbage", value: "12abc", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			assert.Equal(t, tt.want, GetEnvInt("TEST_INT", 7))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{name: "true", value: "true", def: false, want: true},
		{name: "one", value: "1", def: false, want: true},
		{name: "false", value: "FALSE", def: true, want: false},
		{name: "unset", value: "", def: true, want: true},
		{name: "invalid", value: "yes please", def: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, GetEnvBool("TEST_BOOL", tt.def))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("TEST_DURATION", time.Second))
}

func TestInvalidValueIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("TEST_TIMEOUT", "forever")
	assert.Equal(t, 5*time.Second, GetEnvDuration("TEST_TIMEOUT", 5*time.Second))

	out := buf.String()
	assert.Contains(t, out, `"key":"TEST_TIMEOUT"`)
	assert.Contains(t, out, `"value":"forever"`)
	assert.Contains(t, out, `"default":"5s"`)
}
