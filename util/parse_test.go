package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"65536", 65536},
		{"64KB", 64 * 1024},
		{"64kb", 64 * 1024},
		{" 10 MB ", 10 * 1024 * 1024},
		{"1MiB", 1024 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"512B", 512},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if err != nil {
				t.Fatalf("ParseSize(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseSize_Invalid(t *testing.T) {
	for _, input := range []string{"", "KB", "ten", "-1KB", "1.5MB"} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q): expected error", input)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("s3cret"); got != "***" {
		t.Errorf("Mask = %q", got)
	}
	if got := Mask(""); got != "" {
		t.Errorf("empty secret should stay empty, got %q", got)
	}
}
