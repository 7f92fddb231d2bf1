package vgraph

import "fmt"

// NodeID identifies a node in a variation graph.
type NodeID int64

// End names one of the two ends of a node.
type End uint8

const (
	// Head is the end a forward traversal enters through.
	Head End = iota
	// Tail is the end a forward traversal leaves through.
	Tail
)

// String returns "head" or "tail".
func (e End) String() string {
	if e == Tail {
		return "tail"
	}
	return "head"
}

// Side is one end of a node. Edges attach to sides and snarls are bounded by
// them.
type Side struct {
	Node NodeID `json:"node"`
	End  End    `json:"end"`
}

// Flip returns the opposite end of the same node.
func (s Side) Flip() Side {
	if s.End == Head {
		return Side{Node: s.Node, End: Tail}
	}
	return Side{Node: s.Node, End: Head}
}

// String formats the side as "12h" or "12t".
func (s Side) String() string {
	if s.End == Tail {
		return fmt.Sprintf("%dt", s.Node)
	}
	return fmt.Sprintf("%dh", s.Node)
}

// Less orders sides by node and then by end.
func (s Side) Less(o Side) bool {
	if s.Node != o.Node {
		return s.Node < o.Node
	}
	return s.End < o.End
}

// Direction is the direction of travel relative to a position's strand.
type Direction uint8

const (
	// Forward walks along the strand of the position.
	Forward Direction = iota
	// Backward walks against the strand of the position.
	Backward
)

// String returns "forward" or "backward".
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Position is an oriented point on a node.
//
// Offset is measured along the strand given by Reverse and lies in
// [0, length]. Two positions are equal only if all three fields match, so
// {n, false, 0} and {n, true, length} are distinct positions at the same
// point.
type Position struct {
	Node    NodeID `json:"node"`
	Reverse bool   `json:"reverse,omitempty"`
	Offset  int64  `json:"offset"`
}

// Pos is shorthand for a forward-strand position.
func Pos(node NodeID, offset int64) Position {
	return Position{Node: node, Offset: offset}
}

// Forward returns the offset measured from the node's head, given the node
// length.
func (p Position) Forward(length int64) int64 {
	if p.Reverse {
		return length - p.Offset
	}
	return p.Offset
}

// Flip returns the same point read on the opposite strand.
func (p Position) Flip(length int64) Position {
	return Position{Node: p.Node, Reverse: !p.Reverse, Offset: length - p.Offset}
}

// ExitSide returns the side a walk leaves through when it moves along the
// position's strand.
func (p Position) ExitSide() Side {
	if p.Reverse {
		return Side{Node: p.Node, End: Head}
	}
	return Side{Node: p.Node, End: Tail}
}

// String formats the position as "12+3" or "12-3".
func (p Position) String() string {
	strand := '+'
	if p.Reverse {
		strand = '-'
	}
	return fmt.Sprintf("%d%c%d", p.Node, strand, p.Offset)
}

// Adapter is the read-only graph capability the index consumes. None of its
// results may change while an index built from it is in use.
type Adapter interface {
	// HasNode reports whether id names a node.
	HasNode(id NodeID) bool
	// Length returns the sequence length of a node.
	Length(id NodeID) int64
	// FollowEdges returns the sides entered by leaving a node through s.
	FollowEdges(s Side) []Side
	// Nodes returns every node identifier in ascending order.
	Nodes() []NodeID
}
