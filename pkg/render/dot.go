package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/snarl"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Options configures snarl tree diagrams.
type Options struct {
	// Detailed adds ports, extent and complex reasons to the labels.
	// When false, only the kind, class and identifier are shown.
	Detailed bool
}

// ToDOT converts a snarl tree to Graphviz DOT format. Chains are boxes and
// snarls ellipses, complex snarls filled; edges run from each structure to
// its children. The result can be rendered with [RenderSVG].
func ToDOT(t *snarl.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph snarls {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for i := range t.Len() {
		id := snarl.ID(i)
		label := fmtLabel(t, id, opts.Detailed)
		fmt.Fprintf(&buf, "  s%d [%s];\n", id, strings.Join(fmtAttrs(t.At(id), label), ", "))
	}

	buf.WriteString("\n")
	for i := range t.Len() {
		for _, c := range t.Children(snarl.ID(i)) {
			fmt.Fprintf(&buf, "  s%d -> s%d;\n", i, c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(t *snarl.Tree, id snarl.ID, detailed bool) string {
	st := t.At(id)
	head := fmt.Sprintf("%s %d", st.Kind, id)
	if st.Kind == snarl.KindSnarl {
		head = fmt.Sprintf("%s snarl %d", st.Class, id)
	} else if st.Role != snarl.RoleRoot {
		head = fmt.Sprintf("%s chain %d", st.Role, id)
	}
	if !detailed {
		return head
	}

	parts := []string{head}
	if ports := t.Ports(id); len(ports) > 0 {
		parts = append(parts, "ports: "+fmtSides(ports))
	}
	switch st.Kind {
	case snarl.KindChain:
		parts = append(parts, fmt.Sprintf("boundaries: %d", len(st.Boundaries)))
	case snarl.KindSnarl:
		parts = append(parts, fmt.Sprintf("sides: %d, weight: %d", st.Size, st.Weight))
		if st.Reason != "" {
			parts = append(parts, st.Reason)
		}
	}
	return strings.Join(parts, "\n")
}

func fmtSides(sides []vgraph.Side) string {
	out := make([]string, len(sides))
	for i, s := range sides {
		out[i] = s.String()
	}
	return strings.Join(out, " ")
}

func fmtAttrs(st *snarl.Structure, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case st.Kind == snarl.KindChain:
		attrs = append(attrs, "shape=box", "style=rounded")
	case st.IsComplex():
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=lightgrey")
	default:
		attrs = append(attrs, "shape=ellipse")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose viewBox starts
// at the origin and whose size matches it, so the diagram scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
