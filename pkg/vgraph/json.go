package vgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/distindex/pkg/errors"
)

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID     NodeID `json:"id"`
	Length int64  `json:"length"`
}

type jsonEdge struct {
	From jsonSide `json:"from"`
	To   jsonSide `json:"to"`
}

type jsonSide struct {
	Node NodeID `json:"node"`
	End  string `json:"end"`
}

func (s jsonSide) side() (Side, error) {
	switch s.End {
	case "head", "h":
		return Side{Node: s.Node, End: Head}, nil
	case "tail", "t":
		return Side{Node: s.Node, End: Tail}, nil
	}
	return Side{}, fmt.Errorf("side of node %d: invalid end %q", s.Node, s.End)
}

// ReadJSON decodes a graph from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": 1, "length": 4}, {"id": 2, "length": 3}],
//	  "edges": [{"from": {"node": 1, "end": "tail"}, "to": {"node": 2, "end": "head"}}]
//	}
//
// Ends are "head" or "tail" (or "h" and "t"). ReadJSON returns an error if
// the JSON is malformed, a node is duplicated or has a negative length, or
// an edge references an unknown node. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var data jsonGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}

	g := New()
	for _, n := range data.Nodes {
		if err := g.AddNode(n.ID, n.Length); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", n.ID)
		}
	}
	for _, e := range data.Edges {
		from, err := e.From.side()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge")
		}
		to, err := e.To.side()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge")
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s-%s", from, to)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes any adapter in the format accepted by [ReadJSON].
// Nodes and edges are written in sorted order so the output is stable.
func WriteJSON(a Adapter, w io.Writer) error {
	var data jsonGraph
	data.Nodes = []jsonNode{}
	data.Edges = []jsonEdge{}
	for _, id := range a.Nodes() {
		data.Nodes = append(data.Nodes, jsonNode{ID: id, Length: a.Length(id)})
	}
	for _, e := range CollectEdges(a) {
		data.Edges = append(data.Edges, jsonEdge{
			From: jsonSide{Node: e[0].Node, End: e[0].End.String()},
			To:   jsonSide{Node: e[1].Node, End: e[1].End.String()},
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
