package engine

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ParsePatterns reads allowlist entries from a file, one regexp per line.
// Empty lines are ignored, comment lines start with # and negated lines with
// !. Patterns must match the entire name and apply to both types and
// functions.
func ParsePatterns(fileName string) ([]AllowEntry, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()
	return ReadPatterns(file)
}

func ReadPatterns(r io.Reader) ([]AllowEntry, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	var entries []AllowEntry
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		negate := false
		if len(line) == 0 || line[0] == '#' {
			continue
		} else if line[0] == '!' {
			negate = true
			line = bytes.TrimSpace(line[1:])
		}
		if err := CheckPattern(string(line)); err != nil {
			return nil, fmt.Errorf("compiling line %d: %w", lineNum, err)
		}
		entries = append(entries, AllowEntry{
			Pattern: string(line),
			Negate:  negate,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return entries, nil
}

// WithAllow returns a copy of cfg with entries appended to its allowlist.
func WithAllow(cfg Config, entries ...AllowEntry) (Config, error) {
	allow := append(cfg.Allowlist(), entries...)
	return NewConfig(cfg.Inclusions(), allow, cfg.IncludeDir())
}
