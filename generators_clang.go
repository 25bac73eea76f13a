//go:build clang

package main

import (
	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/clanggen"
	"github.com/kbolino/go-includecpp/engine"
)

func init() {
	generators["clang"] = func(_ string, opts cgowrap.Options) engine.Generator {
		return clanggen.New(opts)
	}
}
