package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type SessionID string

// Session is a snapshot of one audio-producing process taken at resolution
// time. Volume access goes through the provider that produced it.
type Session struct {
	ID          SessionID
	ProcessName string
	PID         int
	DisplayName string
}

func NormalizeProcessName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(lowered, ".exe")
}

// Label is the process name with its first letter upper-cased.
func (s Session) Label() string {
	first, size := utf8.DecodeRuneInString(s.ProcessName)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + s.ProcessName[size:]
}
