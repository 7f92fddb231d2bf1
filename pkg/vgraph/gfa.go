package vgraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/distindex/pkg/errors"
)

// ReadGFA builds a graph from the S (segment) and L (link) records of a GFA1
// stream. Other record types are ignored.
//
// Segment names must be integers. The node length is the length of the
// sequence field, or the LN:i: tag when the sequence is "*". A link
// "L a + b - *" leaves a through its tail (its head for "-") and enters b
// through its tail (its head for "+"). Records may appear in any order.
func ReadGFA(r io.Reader) (*Graph, error) {
	type link struct {
		from, to Side
		line     int
	}

	g := New()
	var links []link

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: segment needs name and sequence", lineNo)
			}
			id, err := parseSegmentName(fields[1])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
			}
			length, err := segmentLength(fields[2], fields[3:])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
			}
			if err := g.AddNode(id, length); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: segment %d", lineNo, id)
			}
		case "L":
			if len(fields) < 5 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: link needs two oriented segments", lineNo)
			}
			from, err := parseSegmentName(fields[1])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
			}
			to, err := parseSegmentName(fields[3])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
			}
			fromSide, err := leavingSide(from, fields[2])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
			}
			toSide, err := leavingSide(to, fields[4])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", lineNo)
			}
			// Entering b forward is the opposite end from leaving it forward.
			links = append(links, link{from: fromSide, to: toSide.Flip(), line: lineNo})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read")
	}

	for _, l := range links {
		if err := g.AddEdge(l.from, l.to); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: link %s-%s", l.line, l.from, l.to)
		}
	}
	return g, nil
}

// ImportGFA reads a GFA file at path.
func ImportGFA(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadGFA(f)
}

func parseSegmentName(s string) (NodeID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("segment name %q is not an integer", s)
	}
	return NodeID(id), nil
}

func segmentLength(seq string, tags []string) (int64, error) {
	if seq != "*" {
		return int64(len(seq)), nil
	}
	for _, tag := range tags {
		if v, ok := strings.CutPrefix(tag, "LN:i:"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid LN tag %q", tag)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("segment without sequence needs an LN:i: tag")
}

func leavingSide(id NodeID, orient string) (Side, error) {
	switch orient {
	case "+":
		return Side{Node: id, End: Tail}, nil
	case "-":
		return Side{Node: id, End: Head}, nil
	}
	return Side{}, fmt.Errorf("invalid orientation %q", orient)
}
