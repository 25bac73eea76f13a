// Command go-includecpp generates cgo bindings for a set of C/C++ headers and
// writes them into the calling package, typically from a go:generate line:
//
//	//go:generate go-includecpp
//	//includecpp: define NK_INCLUDE_FIXED_TYPES
//	//includecpp: header "nuklear.h"
//	//includecpp: include_dir "third_party/nuklear"
//	//includecpp: allow "nk_.*"
//
// Without directives in the source file, the configuration is read from an
// includecpp.toml manifest instead.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/directive"
	"github.com/kbolino/go-includecpp/engine"
	"github.com/kbolino/go-includecpp/manifest"
)

func main() {
	flag.Parse()
	configureLogging(*flagDebug)
	if err := run(optionsFromFlags(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// job is everything a run needs once the configuration sources are merged.
type job struct {
	cfg        engine.Config
	pkg        string
	output     string
	typemap    string
	done       string
	trimPrefix string
	generator  string
}

func run(o options, stdout io.Writer) error {
	j, err := loadJob(o)
	if err != nil {
		return err
	}
	if o.printHeader {
		_, err := io.WriteString(stdout, j.cfg.Header())
		return err
	}

	typeMap := cgowrap.DefaultTypeMap()
	if j.typemap != "" {
		extra, err := cgowrap.ParseTypeMap(j.typemap)
		if err != nil {
			return fmt.Errorf("parsing typemap in file '%s': %w", j.typemap, err)
		}
		typeMap = typeMap.Merge(extra)
	}
	var done map[string]struct{}
	if j.done != "" {
		if done, err = cgowrap.ParseDone(j.done); err != nil {
			return fmt.Errorf("parsing done signatures in file '%s': %w", j.done, err)
		}
	}
	gen, err := newGenerator(j.generator, o.cpp, cgowrap.Options{
		TrimPrefix: j.trimPrefix,
		TypeMap:    typeMap,
		Done:       done,
	})
	if err != nil {
		return err
	}

	res, err := engine.Run(j.cfg, gen, engine.SpliceOptions{
		Package:   j.pkg,
		FileName:  j.output,
		OutputDir: filepath.Dir(j.output),
	})
	if err != nil {
		return err
	}
	if o.stdout {
		_, err := stdout.Write(res.Source)
		return err
	}
	if err := os.WriteFile(j.output, res.Source, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	log.Infof("wrote %s", j.output)
	return nil
}

// loadJob reads the configuration from the source file's directives or from
// a manifest, then layers command line flags, the environment and the
// patterns file on top.
func loadJob(o options) (*job, error) {
	j := &job{}
	if o.source != "" && o.manifest == "" {
		gf, err := directive.ParseGoFile(o.source)
		if err != nil {
			return nil, fmt.Errorf("reading directives from '%s': %w", o.source, err)
		}
		if gf.Directives == 0 {
			return nil, fmt.Errorf("no %s directives in '%s'", directive.Prefix, o.source)
		}
		j.cfg = gf.Config
		if dir := j.cfg.IncludeDir(); dir != "" && !filepath.IsAbs(dir) {
			// include_dir is relative to the file that declares it
			dir = filepath.Join(filepath.Dir(o.source), dir)
			if j.cfg, err = engine.NewConfig(j.cfg.Inclusions(), j.cfg.Allowlist(), dir); err != nil {
				return nil, err
			}
		}
		j.pkg = gf.Package
		j.output = filepath.Join(filepath.Dir(o.source), engine.DefaultOutput)
	} else {
		dir := o.manifest
		if dir == "" {
			dir = "."
		}
		m, err := manifest.FindAndLoad(dir)
		if err != nil {
			return nil, fmt.Errorf("loading manifest: %w", err)
		}
		if m == nil {
			return nil, fmt.Errorf("no source file given and no %s found from '%s'", manifest.FileName, dir)
		}
		if j.cfg, err = m.Config(); err != nil {
			return nil, err
		}
		j.pkg = m.Bindings.Package
		j.output = m.OutputPath()
		j.typemap = m.TypemapPath()
		j.done = m.DonePath()
		j.trimPrefix = m.Bindings.TrimPrefix
		j.generator = m.Bindings.Generator
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&j.output, o.output)
	override(&j.pkg, o.pkg)
	override(&j.typemap, o.typemap)
	override(&j.done, o.done)
	override(&j.trimPrefix, o.trimPrefix)
	override(&j.generator, o.generator)

	var err error
	if o.include != "" {
		if j.cfg, err = engine.NewConfig(j.cfg.Inclusions(), j.cfg.Allowlist(), o.include); err != nil {
			return nil, err
		}
	}
	if j.cfg, err = engine.ApplyEnv(j.cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if o.patterns != "" {
		entries, err := engine.ParsePatterns(o.patterns)
		if err != nil {
			return nil, fmt.Errorf("parsing patterns in file '%s': %w", o.patterns, err)
		}
		if j.cfg, err = engine.WithAllow(j.cfg, entries...); err != nil {
			return nil, err
		}
	}
	if dir := j.cfg.IncludeDir(); dir != "" && !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving include directory '%s': %w", dir, err)
		}
		if j.cfg, err = engine.NewConfig(j.cfg.Inclusions(), j.cfg.Allowlist(), abs); err != nil {
			return nil, err
		}
	}
	return j, nil
}
