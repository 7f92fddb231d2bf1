// Package render draws snarl trees as Graphviz diagrams.
//
// [ToDOT] produces DOT source in which chains are boxes, snarls are
// ellipses and complex snarls are filled grey. Every structure points to
// its children:
//
//	dot := render.ToDOT(ix.Tree(), render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [RenderSVG] runs the WebAssembly build of Graphviz bundled with
// goccy/go-graphviz, so no system installation is needed.
package render
