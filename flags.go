package main

import (
	"flag"
	"os"
)

var (
	flagSource = flag.String("source", os.Getenv("GOFILE"), "Go source file carrying "+
		"//includecpp: directives; defaults to $GOFILE as set by go generate")
	flagManifest = flag.String("manifest", "", "directory to search upward for includecpp.toml; "+
		"used instead of directives when set or when no source file is given")
	flagOutput  = flag.String("o", "", "output file; defaults to zz_includecpp.go next to the source file")
	flagPackage = flag.String("package", "", "package clause of the output; defaults to the source file's package")
	flagCPP     = flag.String("cpp", "cpp", "path to the C preprocessor")
	flagDebug   = flag.Bool("debug", false, "enable debug logging")
	flagDone    = flag.String("done", "", "path to file containing function signatures that have already been "+
		"written by hand; empty lines ignored, comment lines start with #; no receiver names, parameter names, "+
		"newlines, trailing commas, or return names")
	flagInclude  = flag.String("include", "", "include directory, replacing the configured one")
	flagPatterns = flag.String("patterns", "", "path to file containing regexps to match against C "+
		"type and function names, one per line; empty lines ignored, comment lines start with #, and negated "+
		"lines with !; patterns must match entire name")
	flagTypemap = flag.String("typemap", "", "path to file containing type mappings from C to Go and cgo; "+
		"one mapping per line; CSV format 'ctype,gotype,cgotype'; empty lines ignored, comment lines start with #")
	flagTrimPrefix  = flag.String("trim-prefix", "", "prefix removed from C names before converting them to Go names")
	flagGenerator   = flag.String("generator", "", "binding generator: cc (default), or clang when built with -tags clang")
	flagPrintHeader = flag.Bool("print-header", false, "print the assembled header and exit")
	flagStdout      = flag.Bool("stdout", false, "write the generated file to standard output")
)

// options is the parsed command line.
type options struct {
	source      string
	manifest    string
	output      string
	pkg         string
	cpp         string
	done        string
	include     string
	patterns    string
	typemap     string
	trimPrefix  string
	generator   string
	printHeader bool
	stdout      bool
}

func optionsFromFlags() options {
	source := *flagSource
	if flag.NArg() > 0 {
		source = flag.Arg(0)
	}
	return options{
		source:      source,
		manifest:    *flagManifest,
		output:      *flagOutput,
		pkg:         *flagPackage,
		cpp:         *flagCPP,
		done:        *flagDone,
		include:     *flagInclude,
		patterns:    *flagPatterns,
		typemap:     *flagTypemap,
		trimPrefix:  *flagTrimPrefix,
		generator:   *flagGenerator,
		printHeader: *flagPrintHeader,
		stdout:      *flagStdout,
	}
}
