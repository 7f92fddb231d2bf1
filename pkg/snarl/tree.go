package snarl

import (
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// ID indexes a structure in a [Tree] arena.
type ID int32

// None marks a missing parent or a link that is not a snarl.
const None ID = -1

// Kind distinguishes the two structure kinds of the snarl tree.
type Kind uint8

const (
	// KindChain is an ordered run of boundaries joined by bridges and snarls.
	KindChain Kind = iota
	// KindSnarl is a 2-edge-connected region between two boundary sides.
	KindSnarl
)

// String returns "chain" or "snarl".
func (k Kind) String() string {
	if k == KindSnarl {
		return "snarl"
	}
	return "chain"
}

// Class describes the interior of a snarl.
type Class uint8

const (
	// ClassNone is used for chains.
	ClassNone Class = iota
	// ClassSimple snarls have only bridges inside their branches.
	ClassSimple
	// ClassNested snarls contain further snarls.
	ClassNested
	// ClassComplex snarls could not be decomposed into chains, or contain a
	// cycle through their boundary. They carry no exact distances.
	ClassComplex
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassSimple:
		return "simple"
	case ClassNested:
		return "nested"
	case ClassComplex:
		return "complex"
	}
	return "none"
}

// Role describes how a chain hangs off its parent.
type Role uint8

const (
	// RoleRoot is the chain spanning a connected component; it has no ports.
	RoleRoot Role = iota
	// RoleTip hangs off a single side of its parent.
	RoleTip
	// RoleBranch runs between the two boundaries of its parent snarl.
	RoleBranch
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleTip:
		return "tip"
	case RoleBranch:
		return "branch"
	}
	return "root"
}

// Link joins two consecutive chain boundaries. It is either a bridge edge of
// the side graph or a snarl entered at the first boundary and left at the
// second.
type Link struct {
	Edge  int32 `json:"edge"`
	Snarl ID    `json:"snarl"`
}

// IsSnarl reports whether the link is a snarl rather than a bridge.
func (l Link) IsSnarl() bool { return l.Snarl != None }

// Structure is one record of the snarl tree arena. Fields that do not apply
// to a kind are left empty.
type Structure struct {
	Kind      Kind    `json:"kind"`
	Class     Class   `json:"class,omitempty"`
	Role      Role    `json:"role,omitempty"`
	Parent    ID      `json:"parent"`
	Children  []ID    `json:"children,omitempty"`
	Ports     []int32 `json:"ports,omitempty"`
	Component int32   `json:"component"`
	Depth     int32   `json:"depth"`

	// Chains
	Boundaries []int32 `json:"boundaries,omitempty"`
	Links      []Link  `json:"links,omitempty"`

	// Snarls: Direct holds the edges owned by the snarl itself. For a
	// complex snarl that is every edge of its interior, and Vertices lists
	// every side inside it.
	Direct   []int32 `json:"direct,omitempty"`
	Vertices []int32 `json:"vertices,omitempty"`
	Reason   string  `json:"reason,omitempty"`

	// Extent of a snarl: sides, total edge weight and heaviest edge.
	Size     int32 `json:"size,omitempty"`
	Weight   int64 `json:"weight,omitempty"`
	Heaviest int64 `json:"heaviest,omitempty"`
}

// IsComplex reports whether the structure is a complex snarl.
func (s *Structure) IsComplex() bool { return s.Kind == KindSnarl && s.Class == ClassComplex }

// Tree is the snarl tree of a graph: a rooted forest with one root chain per
// connected component, stored as a flat arena.
//
// A Tree is immutable once built and safe for concurrent reads.
type Tree struct {
	Structures []Structure `json:"structures"`
	Roots      []ID        `json:"roots"`
	Owner      []ID        `json:"owner"`

	sides *SideGraph
}

// Sides returns the side graph the tree was built on.
func (t *Tree) Sides() *SideGraph { return t.sides }

// Len returns the number of structures.
func (t *Tree) Len() int { return len(t.Structures) }

// At returns the structure with the given id.
func (t *Tree) At(id ID) *Structure { return &t.Structures[id] }

// Parent returns the parent of a structure, or [None] for roots.
func (t *Tree) Parent(id ID) ID { return t.Structures[id].Parent }

// Children returns the children of a structure.
func (t *Tree) Children(id ID) []ID { return t.Structures[id].Children }

// Ports returns the sides through which a structure connects to the rest of
// the graph.
func (t *Tree) Ports(id ID) []vgraph.Side {
	ports := t.Structures[id].Ports
	out := make([]vgraph.Side, len(ports))
	for i, v := range ports {
		out[i] = t.sides.Side(v)
	}
	return out
}

// OwnerOf returns the innermost structure owning a node, or [None] if the
// node is unknown.
func (t *Tree) OwnerOf(node vgraph.NodeID) ID {
	i, ok := t.sides.NodeIndex(node)
	if !ok {
		return None
	}
	return t.Owner[i]
}

// Depth returns the nesting depth of a structure; roots have depth 0.
func (t *Tree) Depth(id ID) int { return int(t.Structures[id].Depth) }

// Component returns the connected component a structure belongs to.
func (t *Tree) Component(id ID) int { return int(t.Structures[id].Component) }

// SideVertex returns the side graph vertex of a side, or -1.
func (t *Tree) SideVertex(s vgraph.Side) int32 { return t.sides.Vertex(s) }

// VertexSide returns the side a side graph vertex stands for.
func (t *Tree) VertexSide(v int32) vgraph.Side { return t.sides.Side(v) }

// Ancestors returns id followed by each of its ancestors up to the root.
func (t *Tree) Ancestors(id ID) []ID {
	var out []ID
	for ; id != None; id = t.Structures[id].Parent {
		out = append(out, id)
	}
	return out
}

// Counts summarises the tree.
type Counts struct {
	Components int `json:"components"`
	Chains     int `json:"chains"`
	Snarls     int `json:"snarls"`
	Simple     int `json:"simple"`
	Nested     int `json:"nested"`
	Complex    int `json:"complex"`
	MaxDepth   int `json:"max_depth"`
}

// Counts returns structure counts by kind and class.
func (t *Tree) Counts() Counts {
	c := Counts{Components: len(t.Roots)}
	for i := range t.Structures {
		s := &t.Structures[i]
		c.MaxDepth = max(c.MaxDepth, int(s.Depth))
		if s.Kind == KindChain {
			c.Chains++
			continue
		}
		c.Snarls++
		switch s.Class {
		case ClassSimple:
			c.Simple++
		case ClassNested:
			c.Nested++
		case ClassComplex:
			c.Complex++
		}
	}
	return c
}

// Restore reattaches persisted arena data to the side graph it was built
// from. The caller is responsible for checking that the graph is the same.
func Restore(sides *SideGraph, structures []Structure, roots []ID, owner []ID) *Tree {
	return &Tree{Structures: structures, Roots: roots, Owner: owner, sides: sides}
}
