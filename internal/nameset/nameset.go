// Package nameset reads newline-separated name lists.
package nameset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"code.selman.me/uniqname/naming"
)

// maxLine bounds a single name; longer lines are an error.
const maxLine = 1 << 20

// Lines returns the non-empty lines of r. A trailing "\r" is dropped; other
// whitespace is part of the name.
func Lines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var out []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("nameset: read: %w", err)
	}
	return out, nil
}

// Read collects the names in r into a set.
func Read(r io.Reader) (naming.Names, error) {
	lines, err := Lines(r)
	if err != nil {
		return nil, err
	}
	return naming.NewNames(lines...), nil
}

// ReadInto adds the names in r to set.
func ReadInto(set naming.Names, r io.Reader) error {
	lines, err := Lines(r)
	if err != nil {
		return err
	}
	for _, l := range lines {
		set.Add(l)
	}
	return nil
}

// ReadFile adds the names in path to set. "-" reads stdin.
func ReadFile(set naming.Names, path string) error {
	if path == "-" {
		return ReadInto(set, os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("nameset: open %s: %w", path, err)
	}
	defer f.Close()
	if err := ReadInto(set, f); err != nil {
		return fmt.Errorf("nameset: %s: %w", path, err)
	}
	return nil
}
