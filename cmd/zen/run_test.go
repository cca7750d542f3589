package main

import "testing"

func TestDefaultBinaryName(t *testing.T) {
	cases := map[string]string{
		"hello.zen":       "hello",
		"path/to/app.zen": "app",
		"noext":           "noext",
	}
	for in, want := range cases {
		if got := defaultBinaryName(in); got != want {
			t.Errorf("defaultBinaryName(%q) = %q, want %q", in, got, want)
		}
	}
}
