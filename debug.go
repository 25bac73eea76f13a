package main

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("includecpp")

// configureLogging sends log output to stderr, so -stdout output stays clean.
// Debug output includes the full header and the raw generator output.
func configureLogging(debug bool) {
	verbosity := 0
	if debug {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
}
