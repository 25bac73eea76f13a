package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kbolino/go-includecpp/ccgen"
	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/engine"
)

const defaultGenerator = "cc"

type generatorFactory func(cpp string, opts cgowrap.Options) engine.Generator

// generators is filled in by build-tagged files for optional backends.
var generators = map[string]generatorFactory{
	"cc": func(cpp string, opts cgowrap.Options) engine.Generator {
		return ccgen.New(cpp, opts)
	},
}

func newGenerator(name, cpp string, opts cgowrap.Options) (engine.Generator, error) {
	if name == "" {
		name = defaultGenerator
	}
	factory, ok := generators[name]
	if !ok {
		names := make([]string, 0, len(generators))
		for n := range generators {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown generator '%s' (available: %s)", name, strings.Join(names, ", "))
	}
	log.Debugf("using generator %s", name)
	return factory(cpp, opts), nil
}
