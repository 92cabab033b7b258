package codegen

import "sort"

// Factory maps target identifiers to generator constructors. Unknown
// targets yield nil; the caller decides whether that is fatal.
type Factory struct {
	constructors map[string]func() Generator
}

// NewFactory returns a factory with the built-in targets registered.
func NewFactory() *Factory {
	f := &Factory{constructors: make(map[string]func() Generator)}
	f.Register("evm", func() Generator { return NewSolidityGenerator() })
	f.Register("solana", func() Generator { return NewAnchorGenerator() })
	return f
}

// Register adds or overrides a target.
func (f *Factory) Register(target string, constructor func() Generator) {
	f.constructors[target] = constructor
}

// Create instantiates the generator for a target, or nil when the
// target is unknown.
func (f *Factory) Create(target string) Generator {
	constructor, ok := f.constructors[target]
	if !ok {
		return nil
	}
	return constructor()
}

// Targets lists the registered target identifiers, sorted.
func (f *Factory) Targets() []string {
	targets := make([]string, 0, len(f.constructors))
	for t := range f.constructors {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
