// Package canon computes a canonical structural signature for a scalar
// graph node: a content-addressed key such that two nodes with equal
// signatures compute the same function shape, regardless of which specific
// parameter slots or constant values they close over. Reordering the
// operands of a commutative op leaves the signature unchanged when the
// operands' shapes differ; operands of tying shape keep their written
// order (see Canonicalize). This is what lets the kernel compiler (package kernel) reuse
// one compiled routine across many residuals that share structure but
// differ in which parameters (and which constant data) they reference —
// e.g. a per-vertex mesh energy repeated over hundreds of vertices.
package canon

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/nlsolve/scalargraph/graph"
	"github.com/nlsolve/scalargraph/ops"
)

// ExternalKind distinguishes the two kinds of leaf a compiled kernel reads
// at evaluation time.
type ExternalKind int

const (
	// ParamExternal reads its value from the outer parameter vector, at
	// Slot, on every evaluation (it changes across solver iterations).
	ParamExternal ExternalKind = iota
	// ConstExternal is captured once, from the node's Data at compile
	// time, and never re-read (constants don't change during a solve).
	ConstExternal
)

// External describes one position in a compiled kernel's flat input
// vector, in the order established by Signature.Externals.
type External struct {
	Kind  ExternalKind
	Slot  int     // outer parameter-vector index; meaningful iff Kind == ParamExternal.
	Value float64 // captured constant value; meaningful iff Kind == ConstExternal.
}

// Signature is a node's canonical form. Key is the deterministic,
// human-inspectable string form; Hash is a 64-bit structural hash of Key
// for fast cache lookups. Externals is the ordered, deduplicated list of
// leaves touched by an in-order traversal of the canonical
// (commutativity-sorted) form — the compiled kernel's calling convention.
// LeafIndex maps each leaf node reachable from the canonicalized root to
// its position in Externals; it is specific to the *graph.Node instance
// just canonicalized and is not part of the cacheable key. Program is the
// canonical straight-line instruction sequence. Two roots with equal Key
// produce Programs that compute the same value and gradient; they can
// differ only in whether a repeated subexpression that is one shared node
// in one graph and separate nodes in the other is emitted once or once per
// occurrence. So the kernel compiler can cache a compiled tape by Hash/Key and reuse it
// across any number of structurally-equal roots, supplying only each
// root's own Externals as the per-instance binding.
type Signature struct {
	Key       string
	Hash      uint64
	Externals []External
	LeafIndex map[*graph.Node]int
	Program   []Instruction
}

// OperandKind distinguishes where an Instruction's operand value comes
// from at evaluation time.
type OperandKind int

const (
	// ExternalOperand reads Externals[Index].
	ExternalOperand OperandKind = iota
	// TempOperand reads the result of Program[Index], which is always an
	// earlier instruction (Program is already in dependency order).
	TempOperand
)

// Operand is one input reference of an Instruction.
type Operand struct {
	Kind  OperandKind
	Index int
}

// Instruction is one op in the canonical straight-line program: compute
// Op over Operands (resolved per ExternalOperand/TempOperand), using
// Payload for ops that need extra scalar constants (PowConst's exponent,
// Clamp's bounds). Instructions are listed in dependency order: every
// operand referencing a TempOperand names an earlier index.
type Instruction struct {
	Op       ops.Code
	Payload  []float64
	Operands []Operand
}

// cnode is the canonicalized, commutativity-sorted tree built internally
// by Canonicalize.
type cnode struct {
	shapeKey string      // content-only key, blind to leaf identity; sort key only
	key      string      // final canonical key, embedding local ids; set by assignIDs
	leaf     *graph.Node // non-nil for Param/Const leaves
	localID  int         // assigned by canonical (post-sort) traversal order, leaves only
	assigned bool
	children []*cnode  // already in canonical (shape-sorted) order
	op       ops.Code  // non-leaf only
	payload  []float64 // non-leaf only
}

// Canonicalize computes root's canonical Signature. paramSlot maps each
// Param node reachable from root to its position in the caller's ordered
// parameter vector; every Param node reachable from root must have an
// entry, or Canonicalize panics (the parameter vector is a programming
// contract, not user input).
func Canonicalize(root *graph.Node, paramSlot map[*graph.Node]int) Signature {
	memo := make(map[*graph.Node]*cnode)

	// buildShape computes, for every reachable node, a content-only shape
	// key that does not depend on which specific Param/Const leaf is
	// involved (every Param leaf shapes as "P", every Const leaf as "K")
	// and sorts each commutative op's children by that shape key. Because
	// the sort key never embeds a local id, children of different shape
	// end up in the same order however the operands were originally
	// written — unlike sorting by a key that already has ids baked in,
	// which is circular: the id ordering would depend on the very
	// traversal order the sort is supposed to fix. Children whose shape
	// keys tie keep their written order (the sort is stable), and the
	// shape key ignores which leaves repeat, so Add(Mul(a,b), Mul(c,c))
	// and Add(Mul(c,c), Mul(a,b)) receive different keys.
	var buildShape func(n *graph.Node) *cnode
	buildShape = func(n *graph.Node) *cnode {
		if c, ok := memo[n]; ok {
			return c
		}
		var c *cnode
		switch n.Op {
		case ops.Param:
			c = &cnode{shapeKey: "P", leaf: n}
		case ops.Const:
			c = &cnode{shapeKey: "K", leaf: n}
		default:
			children := make([]*cnode, len(n.Inputs))
			for i, in := range n.Inputs {
				children[i] = buildShape(in)
			}
			if ops.Commutative(n.Op) {
				sort.SliceStable(children, func(i, j int) bool { return children[i].shapeKey < children[j].shapeKey })
			}
			childShapeKeys := make([]string, len(children))
			for i, ch := range children {
				childShapeKeys[i] = ch.shapeKey
			}
			c = &cnode{
				shapeKey: fmt.Sprintf("%s%s[%s]", n.Op, payloadKey(n.Payload), strings.Join(childShapeKeys, ",")),
				children: children,
				op:       n.Op,
				payload:  n.Payload,
			}
		}
		memo[n] = c
		return c
	}
	top := buildShape(root)

	// assignIDs walks the already shape-sorted tree and hands out local
	// ids in that canonical order, then builds the final key (the shape
	// key's sibling, but with "P"/"K" replaced by "P(id)"/"K(id)"). Shared
	// subexpressions (same *cnode reached twice) are assigned once.
	nextLocalID := 0
	var assignIDs func(c *cnode)
	assignIDs = func(c *cnode) {
		if c.assigned {
			return
		}
		if c.leaf != nil {
			id := nextLocalID
			nextLocalID++
			c.localID = id
			if c.leaf.Op == ops.Param {
				c.key = fmt.Sprintf("P(%d)", id)
			} else {
				c.key = fmt.Sprintf("K(%d)", id)
			}
			c.assigned = true
			return
		}
		for _, ch := range c.children {
			assignIDs(ch)
		}
		childKeys := make([]string, len(c.children))
		for i, ch := range c.children {
			childKeys[i] = ch.key
		}
		c.key = fmt.Sprintf("%s%s[%s]", c.op, payloadKey(c.payload), strings.Join(childKeys, ","))
		c.assigned = true
	}
	assignIDs(top)

	var externals []External
	leafIndex := make(map[*graph.Node]int)
	localIDToExternal := make(map[int]int) // by localID, leaves only
	var collect func(c *cnode)
	collect = func(c *cnode) {
		if c.leaf != nil {
			if _, ok := localIDToExternal[c.localID]; ok {
				return
			}
			var ext External
			if c.leaf.Op == ops.Param {
				slot, ok := paramSlot[c.leaf]
				if !ok {
					panic("canon: parameter node has no slot in the supplied parameter vector")
				}
				ext = External{Kind: ParamExternal, Slot: slot}
			} else {
				ext = External{Kind: ConstExternal, Value: c.leaf.Data}
			}
			localIDToExternal[c.localID] = len(externals)
			leafIndex[c.leaf] = len(externals)
			externals = append(externals, ext)
			return
		}
		for _, ch := range c.children {
			collect(ch)
		}
	}
	collect(top)

	var program []Instruction
	progIndex := make(map[*cnode]int)
	var emit func(c *cnode) Operand
	emit = func(c *cnode) Operand {
		if c.leaf != nil {
			return Operand{Kind: ExternalOperand, Index: localIDToExternal[c.localID]}
		}
		if idx, ok := progIndex[c]; ok {
			return Operand{Kind: TempOperand, Index: idx}
		}
		operands := make([]Operand, len(c.children))
		for i, ch := range c.children {
			operands[i] = emit(ch)
		}
		idx := len(program)
		program = append(program, instructionOf(c, operands))
		progIndex[c] = idx
		return Operand{Kind: TempOperand, Index: idx}
	}
	emit(top)

	h := fnv.New64a()
	h.Write([]byte(top.key))

	return Signature{Key: top.key, Hash: h.Sum64(), Externals: externals, LeafIndex: leafIndex, Program: program}
}

// instructionOf builds the tape Instruction for a non-leaf cnode from the
// op/payload stashed on it at build time, rather than re-parsing the key.
func instructionOf(c *cnode, operands []Operand) Instruction {
	return Instruction{Op: c.op, Payload: c.payload, Operands: operands}
}

func payloadKey(payload []float64) string {
	if len(payload) == 0 {
		return ""
	}
	parts := make([]string, len(payload))
	for i, p := range payload {
		parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
