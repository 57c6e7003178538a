package generator

import (
	"fmt"
	"slices"
)

// Registry maps generator names to generator factory functions
var Registry = map[string]func() Generator{
	"prose": func() Generator { return &ProseGenerator{Vocabulary: portuguese, Punctuation: typographic} },
	"ascii": func() Generator { return &ProseGenerator{Vocabulary: english, Punctuation: plain} },
	"edge":  func() Generator { return &ProseGenerator{Vocabulary: tricky, Punctuation: typographic, MaxWords: 6} },
}

// Get returns a generator by name
func Get(name string) (Generator, error) {
	factory, exists := Registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return factory(), nil
}

// List returns all available generator names, sorted
func List() []string {
	var names []string
	for name := range Registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
