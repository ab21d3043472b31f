package nutriguide

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump writes v to stderr prefixed with the caller location.
func Dump(v ...any) {
	_, file, line, _ := runtime.Caller(1)
	fdump(os.Stderr, fmt.Sprintf("%s:%d:", file, line), v...)
}

// Fdump writes v to w with sorted map keys so repeated dumps of equal values compare equal.
func Fdump(w io.Writer, v ...any) {
	fdump(w, "", v...)
}

func fdump(w io.Writer, prefix string, v ...any) {
	if prefix != "" {
		fmt.Fprintln(w, prefix)
	}
	dumpConfig.Fdump(w, v...)
}
