package main

import (
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/zmodule"
)

// ParseSource turns `.zen` source text into a *zast.Program. The lexer
// and surface parser are an external collaborator (§1: out of scope for
// this repository) — this package-level seam is where that component
// plugs in. The default stub reports the boundary explicitly rather
// than silently returning an empty program; an embedder that owns a
// real Zen parser overrides this var before calling into the driver.
var ParseSource = func(path string) (*zast.Program, error) {
	return nil, zerrors.Wrap(zerrors.New(
		zerrors.UnsupportedFeature,
		"parsing \""+path+"\": the lexer/surface parser is an external collaborator not implemented by this module",
		nil,
	))
}

// ParseFragment turns one REPL line/paragraph into a *zast.Program,
// sharing ParseSource's out-of-scope seam: the REPL's "compiles the
// program fragment" contract (§6) needs the same external lexer/parser
// ParseSource does, just fed inline text instead of a file path.
var ParseFragment = func(source string) (*zast.Program, error) {
	return nil, zerrors.Wrap(zerrors.New(
		zerrors.UnsupportedFeature,
		"parsing REPL input: the lexer/surface parser is an external collaborator not implemented by this module",
		nil,
	))
}

// sourceParser adapts ParseSource to zmodule.Parser, so C2's resolver
// can load imported modules through the same seam it loads the root
// file through.
type sourceParser struct{}

func (sourceParser) ParseFile(path string) (*zast.Program, error) { return ParseSource(path) }

var _ zmodule.Parser = sourceParser{}
