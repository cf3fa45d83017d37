package main

import (
	"path/filepath"
	"strings"
)

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
