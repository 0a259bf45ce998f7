package commands

import (
	"fmt"
	"os"
)

var debugMode bool

func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// debugf never receives secret material, only lengths and modes.
func debugf(format string, args ...interface{}) {
	if debugMode {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}
