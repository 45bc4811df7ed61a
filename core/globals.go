package core

import (
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/internal/outwriter"
)

// Writer renders the results of every Execute function.
var Writer contract.OutputWriter = outwriter.NewOutWriter()
