package compiler

import "log"

// DebugMode enables DebugLogPrintf output.
var DebugMode bool

func DebugLogPrintf(format string, args ...interface{}) {
	if DebugMode {
		log.Printf("[debug] "+format, args...)
	}
}
