package cmd

import "testing"

func TestWithDefaultTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		tags []string
		want string
	}{
		{"no defaults", "Fix bug", nil, "Fix bug"},
		{"one default", "Fix bug", []string{"unit-test"}, "Fix bug +unit-test"},
		{"several defaults", "Fix bug", []string{"unit-test", "code-review"}, "Fix bug +unit-test +code-review"},
		{"explicit tag wins", "Fix bug +docs", []string{"unit-test"}, "Fix bug +docs"},
		{"mid-text tag wins", "+docs then more", []string{"unit-test"}, "+docs then more"},
		{"hash tags do not block", "Fix bug #docs", []string{"unit-test"}, "Fix bug #docs +unit-test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withDefaultTags(tt.text, tt.tags); got != tt.want {
				t.Errorf("withDefaultTags(%q, %v) = %q, want %q", tt.text, tt.tags, got, tt.want)
			}
		})
	}
}
