package cgowrap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ParseDone reads a file of function signatures that have already been
// written by hand, one per line. Empty lines are ignored and comment lines
// start with #. Signatures carry no parameter names, e.g.
// "func Area(*Point, int32) int32".
func ParseDone(fileName string) (map[string]struct{}, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()
	return ReadDone(file)
}

func ReadDone(r io.Reader) (map[string]struct{}, error) {
	scanner := bufio.NewScanner(r)
	done := make(map[string]struct{})
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		done[string(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return done, nil
}
