// Package regexast implements the regex surface tree (L1) recognized by the
// schema language: literals, byte classes, concatenation, alternation,
// bounded/unbounded repetition, and named captures. Nodes live in a flat
// arena indexed by NodeID (the Design Notes' "arena + index" guidance,
// the same shape as tnfa's State/StateID arena) so the tree never
// hands out pointers that could dangle across a Clone.
package regexast

import "fmt"

// NodeID indexes a Node within an Ast's arena.
type NodeID uint32

// InvalidNode is the sentinel "no such node" ID.
const InvalidNode NodeID = 0xFFFFFFFF

// NodeKind discriminates the node shapes of table 4.1.
type NodeKind uint8

const (
	// Literal matches a single byte exactly.
	Literal NodeKind = iota
	// Group matches one byte against a set of inclusive ranges, optionally
	// negated. Wildcard marks a `.`-originated group, which is later
	// narrowed to exclude the schema's delimiter bytes.
	Group
	// Cat is concatenation: Left then Right.
	Cat
	// Or is alternation: Left or Right.
	Or
	// Mult is bounded/unbounded repetition of Child.
	Mult
	// Capture names a subtree as a schema capture group.
	Capture
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case Literal:
		return "Literal"
	case Group:
		return "Group"
	case Cat:
		return "Cat"
	case Or:
		return "Or"
	case Mult:
		return "Mult"
	case Capture:
		return "Capture"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// ByteRange is an inclusive byte range [Lo, Hi].
type ByteRange struct {
	Lo, Hi byte
}

// Contains reports whether b falls within the range.
func (r ByteRange) Contains(b byte) bool { return b >= r.Lo && b <= r.Hi }

// Node is one arena entry. Only the fields relevant to Kind are meaningful.
type Node struct {
	Kind NodeKind

	// Literal
	Byte byte

	// Group
	Ranges   []ByteRange
	Negate   bool
	Wildcard bool

	// Cat, Or
	Left, Right NodeID

	// Mult
	Child     NodeID
	Min, Max  int
	Unbounded bool // see DESIGN.md "Open Question decisions": disambiguates Max==0

	// Capture
	Name string
}

// Ast is an arena of Nodes plus the ID of its root.
type Ast struct {
	nodes []Node
	root  NodeID
}

// New creates an empty Ast.
func New() *Ast {
	return &Ast{nodes: make([]Node, 0, 16), root: InvalidNode}
}

// Root returns the tree's root node ID.
func (a *Ast) Root() NodeID { return a.root }

// SetRoot sets the tree's root node ID.
func (a *Ast) SetRoot(id NodeID) { a.root = id }

// Node returns the node for id. Panics if id is out of range: callers only
// ever pass IDs this same Ast handed out.
func (a *Ast) Node(id NodeID) *Node {
	return &a.nodes[id]
}

// add appends a node and returns its ID.
func (a *Ast) add(n Node) NodeID {
	id := NodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return id
}

// NewLiteral adds a Literal node.
func (a *Ast) NewLiteral(b byte) NodeID {
	return a.add(Node{Kind: Literal, Byte: b})
}

// NewGroup adds a Group node over the given ranges.
func (a *Ast) NewGroup(ranges []ByteRange, negate bool) NodeID {
	cp := make([]ByteRange, len(ranges))
	copy(cp, ranges)
	return a.add(Node{Kind: Group, Ranges: cp, Negate: negate})
}

// NewWildcard adds a Group node standing in for `.`, to be narrowed by
// RemoveDelimitersFromWildcard before NFA construction.
func (a *Ast) NewWildcard() NodeID {
	return a.add(Node{Kind: Group, Wildcard: true})
}

// NewCat adds a Cat node.
func (a *Ast) NewCat(left, right NodeID) NodeID {
	return a.add(Node{Kind: Cat, Left: left, Right: right})
}

// NewOr adds an Or node.
func (a *Ast) NewOr(left, right NodeID) NodeID {
	return a.add(Node{Kind: Or, Left: left, Right: right})
}

// NewMult adds a Mult node. Pass unbounded=true for "max repetitions
// unspecified" ({n,}, *, +); in that case max is ignored.
func (a *Ast) NewMult(child NodeID, min, max int, unbounded bool) NodeID {
	return a.add(Node{Kind: Mult, Child: child, Min: min, Max: max, Unbounded: unbounded})
}

// NewCapture adds a Capture node.
func (a *Ast) NewCapture(name string, child NodeID) NodeID {
	return a.add(Node{Kind: Capture, Name: name, Child: child})
}

// Clone deep-copies the subtree rooted at id into dst, returning the new
// root's ID in dst. dst may be a different Ast (used when folding several
// parsed rules' ASTs together is undesirable; in practice each rule keeps
// its own Ast and CompileRule allocates its tags from the shared
// TagAllocator as it walks it).
func Clone(dst *Ast, src *Ast, id NodeID) NodeID {
	if id == InvalidNode {
		return InvalidNode
	}
	n := *src.Node(id)
	switch n.Kind {
	case Cat, Or:
		n.Left = Clone(dst, src, n.Left)
		n.Right = Clone(dst, src, n.Right)
	case Mult, Capture:
		n.Child = Clone(dst, src, n.Child)
	}
	if n.Ranges != nil {
		cp := make([]ByteRange, len(n.Ranges))
		copy(cp, n.Ranges)
		n.Ranges = cp
	}
	return dst.add(n)
}
