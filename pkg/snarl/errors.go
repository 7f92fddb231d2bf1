package snarl

import (
	"fmt"

	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// MalformedGraphError reports a graph the decomposer refuses to index: an
// edge leading to a node that does not exist, an edge visible from only one
// of its sides, or a negative node length. It is fatal for the build; no
// partial tree is ever returned alongside it.
type MalformedGraphError struct {
	Node   vgraph.NodeID // Node the problem was found on
	Side   vgraph.Side   // Side the offending edge leaves from, if any
	Target vgraph.Side   // Side the offending edge points to, if any
	Reason string
}

// Error implements the error interface.
func (e *MalformedGraphError) Error() string {
	if e.Side == (vgraph.Side{}) && e.Target == (vgraph.Side{}) {
		return fmt.Sprintf("malformed graph: node %d: %s", e.Node, e.Reason)
	}
	return fmt.Sprintf("malformed graph: edge %s-%s: %s", e.Side, e.Target, e.Reason)
}

// Code returns the error code for this error type.
func (e *MalformedGraphError) Code() errors.Code {
	return errors.ErrCodeMalformedGraph
}
