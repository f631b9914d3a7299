package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"j2cgen/compiler"
	"j2cgen/resolved"
	j2crt "j2cgen/runtime"

	"golang.org/x/tools/txtar"
)

// writeRuntime copies the embedded C++ runtime below dir.
func writeRuntime(dir string) (int64, error) {
	var n int64
	for rel, content := range j2crt.Files() {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return n, fmt.Errorf("failed to create runtime directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return n, fmt.Errorf("failed to write runtime file %s: %w", rel, err)
		}
		compiler.DebugLogPrintf("Runtime file written: %s", path)
		n += int64(len(content))
	}
	return n, nil
}

// loadProgram reads a resolved document, or a txtar bundle of documents
// sharing one set of bindings, and returns the top-level units in order.
func loadProgram(path string, u *resolved.Universe) ([]*resolved.TypeDecl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := resolved.NewDecoder(u)
	if !strings.HasSuffix(path, ".txtar") {
		p, err := dec.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return p.Units, nil
	}
	return decodeArchive(txtar.Parse(data), dec)
}

func decodeArchive(ar *txtar.Archive, dec *resolved.Decoder) ([]*resolved.TypeDecl, error) {
	var units []*resolved.TypeDecl
	for _, f := range ar.Files {
		if !strings.HasSuffix(f.Name, ".json") {
			compiler.DebugLogPrintf("Skipping archive member: %s", f.Name)
			continue
		}
		p, err := dec.Decode(bytes.NewReader(f.Data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		units = append(units, p.Units...)
	}
	return units, nil
}
