package cli

import "testing"

func TestTermScore(t *testing.T) {
	cases := []struct {
		name, term string
		want       int
	}{
		{"bash", "bash", 8},
		{"bash-completion", "bash", 4},
		{"libfoo", "foo", 2},
		{"myfoobar", "foo", 1},
		{"zzz", "foo", 0},
	}
	for _, c := range cases {
		if got := termScore(c.name, c.term); got != c.want {
			t.Errorf("termScore(%q, %q) = %d, want %d", c.name, c.term, got, c.want)
		}
	}
}

func TestTermScorePriorityExactBeatsPrefix(t *testing.T) {
	// "foo" both equals and would prefix-match itself; exact match wins.
	if got := termScore("foo", "foo"); got != 8 {
		t.Errorf("termScore(%q, %q) = %d, want 8 (exact match priority)", "foo", "foo", got)
	}
}
