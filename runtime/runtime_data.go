// Package runtime carries the C++ support code generated programs link
// against.
package runtime

import _ "embed"

// HeaderPath is where generated code includes the runtime header from.
const HeaderPath = "j2c/runtime.h"

// SourcePath is the runtime implementation, relative to the runtime root.
const SourcePath = "j2c/runtime.cpp"

//go:embed std/cpp/j2c/runtime.h
var RuntimeHeader string

//go:embed std/cpp/j2c/runtime.cpp
var RuntimeSource string

// Files maps every runtime file to its content.
func Files() map[string]string {
	return map[string]string{
		HeaderPath: RuntimeHeader,
		SourcePath: RuntimeSource,
	}
}
