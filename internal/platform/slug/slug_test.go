package slug

import "testing"

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Breaking Bad":          "breaking-bad",
		"  The Office (US)  ":   "the-office-us",
		"Ünïcode only ✓":        "n-code-only",
		"":                      "session",
		"!!!":                   "session",
		"a very long show name that keeps going well past the limit": "a-very-long-show-name-that-keeps-going-well-past",
	}
	for in, want := range cases {
		if got := Make(in, "session"); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}
