package s3

import (
	"io"
	"strings"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "1700000000000-1.pdf", want: "1700000000000-1.pdf"},
		{name: "simple prefix", prefix: "resumes", key: "1700000000000-1.pdf", want: "resumes/1700000000000-1.pdf"},
		{name: "prefix trailing slash", prefix: "resumes/", key: "a.docx", want: "resumes/a.docx"},
		{name: "prefix and key slashes", prefix: "/resumes/", key: "/a.docx", want: "resumes/a.docx"},
		{name: "empty key", prefix: "resumes", key: "", want: "resumes"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix("  /uploads/ "); got != "uploads" {
		t.Fatalf("normalizePrefix = %q", got)
	}
}

func TestCountingReader(t *testing.T) {
	c := &countingReader{r: strings.NewReader("hello world")}
	if _, err := io.Copy(io.Discard, c); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if c.n != 11 {
		t.Fatalf("expected 11 bytes counted, got %d", c.n)
	}
}
