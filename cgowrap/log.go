package cgowrap

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("includecpp.cgowrap")
