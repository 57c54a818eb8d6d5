package main

import "testing"

func TestDebugLoggingEnabled(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"unset defaults on", "", true},
		{"explicit true", "true", true},
		{"explicit false", "false", false},
		{"zero", "0", false},
		{"off", "off", false},
		{"no with whitespace", "  no  ", false},
		{"uppercase FALSE", "FALSE", false},
		{"garbage stays on", "maybe", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WELLNESSD_DEBUG", tt.value)
			if got := debugLoggingEnabled(); got != tt.want {
				t.Errorf("debugLoggingEnabled() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
