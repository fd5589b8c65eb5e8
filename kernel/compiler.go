package kernel

import (
	"fmt"

	"github.com/nlsolve/scalargraph/canon"
	"github.com/nlsolve/scalargraph/graph"
)

// cachedTape pairs a compiled Tape with the Key it was compiled from, so
// a Hash bucket with more than one entry (a hash collision) can still be
// disambiguated by an exact string compare.
type cachedTape struct {
	key  string
	hash uint64
	tape *Tape
}

// Compiler is a process-local, single-session cache from canonical
// structure to compiled Tape. It is owned by a residualset.CompiledResidualSet
// (or a caller driving the kernel package directly); releasing it
// releases every Tape it produced. Not safe for concurrent use — the
// engine's whole concurrency model is single-threaded (spec §5).
type Compiler struct {
	buckets map[uint64][]*cachedTape
}

// NewCompiler returns an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{buckets: make(map[uint64][]*cachedTape)}
}

// Compile canonicalizes root against paramSlot and returns a Specialized
// Kernel bound to it, reusing an already-cached Tape when root's
// structure has been seen before and compiling (and caching) a new one
// otherwise.
func (c *Compiler) Compile(root *graph.Node, paramSlot map[*graph.Node]int) *Specialized {
	sig := canon.Canonicalize(root, paramSlot)
	return &Specialized{tape: c.tapeFor(sig), externals: sig.Externals, key: sig.Key}
}

func (c *Compiler) tapeFor(sig canon.Signature) *Tape {
	for _, entry := range c.buckets[sig.Hash] {
		if entry.key == sig.Key {
			return entry.tape
		}
	}
	tape := &Tape{program: sig.Program}
	c.buckets[sig.Hash] = append(c.buckets[sig.Hash], &cachedTape{key: sig.Key, hash: sig.Hash, tape: tape})
	return tape
}

// KernelCount returns the number of distinct Tapes compiled so far — the
// residualset diagnostic's numerator-free half of kernel_reuse_factor.
func (c *Compiler) KernelCount() int {
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

// CheckSignature reports whether root's current canonical structure still
// matches the Tape backing an already-compiled Specialized kernel. Lazy
// mode (component E) calls this before reusing a previously bound kernel
// for a given residual slot; a non-nil error means the residual function
// produced a differently-shaped graph on this call and the slot must be
// recompiled via Compile.
func CheckSignature(k *Specialized, root *graph.Node, paramSlot map[*graph.Node]int) error {
	sig := canon.Canonicalize(root, paramSlot)
	if sig.Key != k.key {
		return fmt.Errorf("%w: %q != %q", ErrSignatureMismatch, sig.Key, k.key)
	}
	return nil
}
