package trace

import (
	"context"
	"regexp"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	re := regexp.MustCompile(`^req-[0-9a-f]{6}$`)
	id := GenerateRequestID()
	if !re.MatchString(id) {
		t.Errorf("GenerateRequestID() = %q", id)
	}
}

func TestExtractOpTag(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/encrypt", "encrypt"},
		{"/api/decrypt/", "decrypt"},
		{"/api/history", "history"},
		{"/health", "health"},
		{"/", "/"},
		{"", "/"},
	}

	for _, tt := range tests {
		if got := ExtractOpTag(tt.path); got != tt.want {
			t.Errorf("ExtractOpTag(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLogPrefix(t *testing.T) {
	if got := LogPrefix(context.Background(), "cache"); got != "[req-??????] [/] [cache]" {
		t.Errorf("empty context prefix = %q", got)
	}

	ctx := WithOpTag(WithRequestID(context.Background(), "req-abcdef"), "encrypt")
	if got := LogPrefix(ctx, "cache"); got != "[req-abcdef] [encrypt] [cache]" {
		t.Errorf("prefix = %q", got)
	}
	if GetRequestID(ctx) != "req-abcdef" || GetOpTag(ctx) != "encrypt" {
		t.Error("context values not preserved")
	}
}
