package main

import (
	"testing"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
)

func TestDefaultParseSourceStubsAsUnsupported(t *testing.T) {
	_, err := ParseSource("foo.zen")
	if err == nil {
		t.Fatal("default ParseSource should return an error")
	}
	rep, ok := zerrors.As(err)
	if !ok {
		t.Fatalf("error is not a *zerrors.Report: %v", err)
	}
	if rep.Code != zerrors.UnsupportedFeature {
		t.Errorf("Code = %q, want %q", rep.Code, zerrors.UnsupportedFeature)
	}
}

func TestDefaultParseFragmentStubsAsUnsupported(t *testing.T) {
	_, err := ParseFragment("let x = 1")
	if err == nil {
		t.Fatal("default ParseFragment should return an error")
	}
	rep, ok := zerrors.As(err)
	if !ok {
		t.Fatalf("error is not a *zerrors.Report: %v", err)
	}
	if rep.Code != zerrors.UnsupportedFeature {
		t.Errorf("Code = %q, want %q", rep.Code, zerrors.UnsupportedFeature)
	}
}

func TestSourceParserAdaptsParseSource(t *testing.T) {
	called := ""
	orig := ParseSource
	defer func() { ParseSource = orig }()
	ParseSource = func(path string) (*zast.Program, error) {
		called = path
		return nil, nil
	}

	var p sourceParser
	_, _ = p.ParseFile("a.b.c.zen")
	if called != "a.b.c.zen" {
		t.Errorf("ParseFile did not delegate to ParseSource, got call with %q", called)
	}
}
