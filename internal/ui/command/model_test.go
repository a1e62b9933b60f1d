package command

import "testing"

func TestResolve(t *testing.T) {
	tests := map[string]string{
		"refresh":  "refresh",
		" Ref ":    "refresh",
		"n":        "new",
		"a":        "activity",
		"l":        "logout",
		"":         "",
		"delete":   "",
		"quitting": "",
	}
	for input, want := range tests {
		if got := Resolve(input); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", input, got, want)
		}
	}
}
