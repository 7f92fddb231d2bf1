package snarl

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Option configures [Decompose].
type Option func(*decomposer)

// WithLogger sets the logger used for debug output. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(d *decomposer) {
		if l != nil {
			d.logger = l
		}
	}
}

// Decompose validates g and builds its snarl tree. A graph with an edge to an
// unknown node, an edge visible from only one side, or a negative length
// fails with a [*MalformedGraphError] and no tree.
func Decompose(g vgraph.Adapter, opts ...Option) (*Tree, error) {
	sg, err := NewSideGraph(g)
	if err != nil {
		return nil, err
	}
	return DecomposeSides(sg, opts...)
}

// DecomposeSides builds the snarl tree of an already validated side graph.
func DecomposeSides(sg *SideGraph, opts ...Option) (*Tree, error) {
	d := &decomposer{
		sg:      sg,
		logger:  log.Default(),
		claimed: make([]ID, sg.VertexCount()),
	}
	for _, opt := range opts {
		opt(d)
	}
	for i := range d.claimed {
		d.claimed[i] = None
	}
	return d.run()
}

type decomposer struct {
	sg      *SideGraph
	logger  *log.Logger
	structs []Structure
	roots   []ID

	claimed []ID    // vertex -> first structure claiming it
	claims  []int32 // claim log, undone on rollback

	queue   []pendingTip
	tipsAt  []tipAttach
	current int32 // component being decomposed
}

// pendingTip is an off-path subtree of a bridge tree still to be laid out
// as a tip chain.
type pendingTip struct {
	bt   *bridgeTree
	rt   rooting
	lead treeEdge
}

type tipAttach struct {
	id     ID
	attach int32
}

type mark struct{ structs, claims, queue int }

func (d *decomposer) mark() mark {
	return mark{len(d.structs), len(d.claims), len(d.queue)}
}

func (d *decomposer) rollback(m mark) {
	d.structs = d.structs[:m.structs]
	for _, v := range d.claims[m.claims:] {
		d.claimed[v] = None
	}
	d.claims = d.claims[:m.claims]
	d.queue = d.queue[:m.queue]
}

func (d *decomposer) claim(v int32, id ID) {
	if d.claimed[v] != None {
		return
	}
	d.claimed[v] = id
	d.claims = append(d.claims, v)
}

func (d *decomposer) add(s Structure) ID {
	s.Component = d.current
	id := ID(len(d.structs))
	d.structs = append(d.structs, s)
	return id
}

func (d *decomposer) run() (*Tree, error) {
	n := int32(d.sg.VertexCount())
	all := make([]int32, n)
	for i := range all {
		all[i] = int32(i)
	}
	edges := make([]int32, len(d.sg.Edges))
	for i := range edges {
		edges[i] = int32(i)
	}
	whole := newSubgraph(d.sg, all, edges)
	comp, count := whole.components(nil)

	compVerts := make([][]int32, count)
	compEdges := make([][]int32, count)
	for i, c := range comp {
		compVerts[c] = append(compVerts[c], whole.verts[i])
	}
	for _, id := range edges {
		c := comp[whole.pos[d.sg.Edges[id].U]]
		compEdges[c] = append(compEdges[c], id)
	}

	for c := range count {
		d.current = int32(c)
		d.component(newSubgraph(d.sg, compVerts[c], compEdges[c]))
		for head := 0; head < len(d.queue); head++ {
			d.tip(d.queue[head])
		}
		d.queue = d.queue[:0]
	}

	for _, t := range d.tipsAt {
		parent := d.claimed[t.attach]
		if parent == None {
			return nil, errors.New(errors.ErrCodeInternal, "tip at %s has no owner", d.sg.Side(t.attach))
		}
		d.structs[t.id].Parent = parent
		d.structs[parent].Children = append(d.structs[parent].Children, t.id)
	}

	tree := &Tree{Structures: d.structs, Roots: d.roots, sides: d.sg}
	if err := d.finish(tree); err != nil {
		return nil, err
	}

	if d.logger.GetLevel() <= log.DebugLevel {
		c := tree.Counts()
		d.logger.Debug("decomposed graph",
			"components", c.Components,
			"chains", c.Chains,
			"snarls", c.Snarls,
			"complex", c.Complex,
			"depth", c.MaxDepth)
		for i := range tree.Structures {
			if s := &tree.Structures[i]; s.IsComplex() {
				d.logger.Debug("complex snarl", "id", i, "entry", d.sg.Side(s.Ports[0]), "exit", d.sg.Side(s.Ports[1]), "reason", s.Reason)
			}
		}
	}
	return tree, nil
}

// finish assigns depths and node owners.
func (d *decomposer) finish(t *Tree) error {
	queue := slices.Clone(t.Roots)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s := &t.Structures[id]
		slices.Sort(s.Children)
		for _, c := range s.Children {
			t.Structures[c].Depth = s.Depth + 1
			queue = append(queue, c)
		}
	}

	nodes := int32(len(d.sg.Nodes))
	t.Owner = make([]ID, nodes)
	for i := range t.Owner {
		t.Owner[i] = None
	}
	own := func(edge int32, id ID) {
		if edge >= 0 && edge < nodes {
			t.Owner[edge] = id
		}
	}
	for i := range t.Structures {
		s := &t.Structures[i]
		for _, l := range s.Links {
			if !l.IsSnarl() {
				own(l.Edge, ID(i))
			}
		}
		for _, e := range s.Direct {
			own(e, ID(i))
		}
	}
	for i, o := range t.Owner {
		if o == None {
			return errors.New(errors.ErrCodeInternal, "node %d has no owner", d.sg.Nodes[i])
		}
	}
	return nil
}

// component lays out the root chain of one connected component.
func (d *decomposer) component(sub *subgraph) {
	bt := newBridgeTree(sub)

	root, rank := int32(-1), 3
	for c := range int32(len(bt.verts)) {
		if len(bt.adj[c]) > 1 {
			continue
		}
		r := 2
		if bt.trivial(c) {
			r = 1
			if d.sg.IsTip(bt.verts[c][0]) {
				r = 0
			}
		}
		if r < rank {
			root, rank = c, r
		}
	}

	rt := bt.root(root)
	comps, bridges := bt.heavyPath(rt, root, -1)
	start := bt.verts[root][0]
	if !bt.trivial(root) && len(bridges) > 0 && start == bridges[0].near {
		start = bt.verts[root][1]
	}
	id := d.chain(chainPlan{
		bt:      bt,
		rt:      rt,
		role:    RoleRoot,
		start:   start,
		lead:    noEdge,
		comps:   comps,
		bridges: bridges,
		end:     -1,
	}, None)
	d.roots = append(d.roots, id)
}

// tip lays out a pending off-path subtree as a tip chain. Its parent is the
// structure that ends up owning the attachment side, resolved once all
// claims are known.
func (d *decomposer) tip(p pendingTip) {
	comps, bridges := p.bt.heavyPath(p.rt, p.lead.to, p.lead.far)
	id := d.chain(chainPlan{
		bt:      p.bt,
		rt:      p.rt,
		role:    RoleTip,
		start:   p.lead.near,
		lead:    p.lead,
		comps:   comps,
		bridges: bridges,
		end:     -1,
	}, None)
	d.tipsAt = append(d.tipsAt, tipAttach{id: id, attach: p.lead.near})
}

var noEdge = treeEdge{edge: -1}

// chainPlan is a path through a bridge tree to be laid out as a chain.
type chainPlan struct {
	bt      *bridgeTree
	rt      rooting
	role    Role
	start   int32      // first boundary
	lead    treeEdge   // bridge from start into comps[0], if any
	comps   []int32    // components along the path
	bridges []treeEdge // bridges[i] joins comps[i] to comps[i+1]
	end     int32      // exit side in the last component, -1 to pick one
}

// chain creates the chain for p. Boundaries are claimed before any of its
// snarls is decomposed, and off-path subtrees are queued as tips.
func (d *decomposer) chain(p chainPlan, parent ID) ID {
	var ports []int32
	switch p.role {
	case RoleTip:
		ports = []int32{p.start}
	case RoleBranch:
		ports = []int32{p.start, p.end}
	}
	id := d.add(Structure{Kind: KindChain, Role: p.role, Parent: parent, Ports: ports})

	boundaries := []int32{p.start}
	var links []Link
	cur := p.start
	if p.lead.edge >= 0 {
		boundaries = append(boundaries, p.lead.far)
		links = append(links, Link{Edge: p.lead.edge, Snarl: None})
		cur = p.lead.far
	}

	type pendingSnarl struct {
		link  int
		comp  int32
		entry int32
		exit  int32
	}
	var snarls []pendingSnarl
	for i, c := range p.comps {
		exit := p.end
		if i < len(p.bridges) {
			exit = p.bridges[i].near
		} else if exit < 0 {
			exit = p.bt.exit(c, cur)
		}
		if !p.bt.trivial(c) {
			snarls = append(snarls, pendingSnarl{link: len(links), comp: c, entry: cur, exit: exit})
			boundaries = append(boundaries, exit)
			links = append(links, Link{Edge: -1, Snarl: None})
		}
		if i < len(p.bridges) {
			boundaries = append(boundaries, p.bridges[i].far)
			links = append(links, Link{Edge: p.bridges[i].edge, Snarl: None})
			cur = p.bridges[i].far
		}
	}
	for _, v := range boundaries {
		d.claim(v, id)
	}

	for _, ps := range snarls {
		verts, edges := p.bt.verts[ps.comp], p.bt.edges[ps.comp]
		sid := d.add(Structure{
			Kind:   KindSnarl,
			Parent: id,
			Ports:  []int32{ps.entry, ps.exit},
		})
		d.extent(sid, verts, edges)
		links[ps.link].Snarl = sid
		d.structs[id].Children = append(d.structs[id].Children, sid)
		d.snarl(sid, verts, edges)
	}

	for i, c := range p.comps {
		for _, te := range p.bt.adj[c] {
			if te.edge == p.rt.up[c].edge {
				continue
			}
			if i < len(p.bridges) && te.edge == p.bridges[i].edge {
				continue
			}
			d.queue = append(d.queue, pendingTip{bt: p.bt, rt: p.rt, lead: te})
		}
	}

	s := &d.structs[id]
	s.Boundaries = boundaries
	s.Links = links
	return id
}

func (d *decomposer) extent(id ID, verts, edges []int32) {
	var sum, heaviest int64
	for _, e := range edges {
		w := d.sg.Edges[e].W
		sum = satAdd(sum, w)
		heaviest = max(heaviest, w)
	}
	s := &d.structs[id]
	s.Size = int32(len(verts))
	s.Weight = sum
	s.Heaviest = heaviest
}

// snarl decomposes the interior of a snarl into branch chains, or marks it
// complex and undoes everything the attempt created.
func (d *decomposer) snarl(id ID, verts, edges []int32) {
	m := d.mark()
	reason := d.split(id, verts, edges)
	if reason == "" {
		return
	}
	d.rollback(m)
	s := &d.structs[id]
	s.Class = ClassComplex
	s.Reason = reason
	s.Children = nil
	s.Direct = slices.Clone(edges)
	s.Vertices = slices.Clone(verts)
	for _, v := range verts {
		d.claim(v, id)
	}
}

// split tries to decompose a snarl into branches between its two
// boundaries. It returns the reason the snarl is complex, or "".
func (d *decomposer) split(id ID, verts, edges []int32) string {
	e, x := d.structs[id].Ports[0], d.structs[id].Ports[1]
	if e == x {
		return "single boundary"
	}
	terminal := func(v int32) bool { return v == e || v == x }

	var inner []int32
	for _, v := range verts {
		if !terminal(v) {
			inner = append(inner, v)
		}
	}
	var innerEdges, direct []int32
	for _, ei := range edges {
		ed := d.sg.Edges[ei]
		switch {
		case terminal(ed.U) && terminal(ed.V):
			direct = append(direct, ei)
		case !terminal(ed.U) && !terminal(ed.V):
			innerEdges = append(innerEdges, ei)
		}
	}

	in := newSubgraph(d.sg, inner, innerEdges)
	comp, count := in.components(nil)
	branchVerts := make([][]int32, count)
	branchEdges := make([][]int32, count)
	touchE := make([]bool, count)
	touchX := make([]bool, count)
	for i, v := range in.verts {
		branchVerts[comp[i]] = append(branchVerts[comp[i]], v)
	}
	for _, ei := range edges {
		ed := d.sg.Edges[ei]
		if terminal(ed.U) && terminal(ed.V) {
			continue
		}
		v := ed.U
		if terminal(v) {
			v = ed.V
		}
		b := comp[in.pos[v]]
		branchEdges[b] = append(branchEdges[b], ei)
		touchE[b] = touchE[b] || ed.U == e || ed.V == e
		touchX[b] = touchX[b] || ed.U == x || ed.V == x
	}
	for b := range count {
		if !touchE[b] || !touchX[b] {
			return "branch reaches only one boundary"
		}
	}
	if count == 1 && len(direct) == 0 {
		return "irreducible"
	}
	if d.boundaryCycle(verts, edges, e, x) {
		return "cycle through boundary"
	}

	nested := false
	for b := range count {
		bv := append(slices.Clone(branchVerts[b]), e, x)
		bt := newBridgeTree(newSubgraph(d.sg, bv, branchEdges[b]))
		root := bt.compOf(e)
		rt := bt.root(root)

		var comps []int32
		var bridges []treeEdge
		for c := bt.compOf(x); c != root; c = rt.up[c].to {
			up := rt.up[c]
			comps = append(comps, c)
			bridges = append(bridges, treeEdge{edge: up.edge, near: up.far, far: up.near, to: c})
		}
		comps = append(comps, root)
		slices.Reverse(comps)
		slices.Reverse(bridges)

		cid := d.chain(chainPlan{
			bt:      bt,
			rt:      rt,
			role:    RoleBranch,
			start:   e,
			lead:    noEdge,
			comps:   comps,
			bridges: bridges,
			end:     x,
		}, id)
		d.structs[id].Children = append(d.structs[id].Children, cid)
		for _, l := range d.structs[cid].Links {
			nested = nested || l.IsSnarl()
		}
	}

	s := &d.structs[id]
	s.Direct = direct
	s.Class = ClassSimple
	if nested {
		s.Class = ClassNested
	}
	return ""
}

// boundaryCycle reports whether an oriented walk inside the snarl can
// return along an edge incident to one of its boundaries. Walks alternate
// between node edges and link edges; reversing loops on a side count as
// links.
func (d *decomposer) boundaryCycle(verts, edges []int32, e, x int32) bool {
	sub := newSubgraph(d.sg, verts, edges)
	loops := make([]bool, len(sub.verts))
	for i, v := range sub.verts {
		loops[i] = d.sg.Loops[v]
	}

	// State 2v+k: at local vertex v, having arrived over a node edge (k=0)
	// or a link edge (k=1).
	kind := func(node bool) int32 {
		if node {
			return 0
		}
		return 1
	}
	seen := make([]bool, 2*len(sub.verts))
	var stack []int32
	reaches := func(from, to int32) bool {
		clear(seen)
		stack = append(stack[:0], from)
		seen[from] = true
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if s == to {
				return true
			}
			v, k := s/2, s%2
			next := func(t int32) {
				if !seen[t] {
					seen[t] = true
					stack = append(stack, t)
				}
			}
			for _, ei := range sub.adj[v] {
				ed := sub.edge(ei)
				if kind(ed.Node) == k {
					continue
				}
				next(2*sub.other(ei, v) + kind(ed.Node))
			}
			if k == 0 && loops[v] {
				next(2*v + 1)
			}
		}
		return false
	}

	for ei := range int32(len(sub.edges)) {
		ed := sub.edge(ei)
		if ed.U != e && ed.U != x && ed.V != e && ed.V != x {
			continue
		}
		u, v, k := sub.pos[ed.U], sub.pos[ed.V], kind(ed.Node)
		if reaches(2*v+k, 2*u+1-k) || reaches(2*u+k, 2*v+1-k) {
			return true
		}
	}
	return false
}

// rooting orients a bridge tree away from a root component.
type rooting struct {
	up   []treeEdge // bridge towards the root, seen from the component
	size []int32    // components in the subtree
}

func (t *bridgeTree) root(r int32) rooting {
	n := len(t.verts)
	rt := rooting{up: make([]treeEdge, n), size: make([]int32, n)}
	for i := range rt.up {
		rt.up[i] = noEdge
	}
	seen := make([]bool, n)
	order := []int32{r}
	seen[r] = true
	for i := 0; i < len(order); i++ {
		c := order[i]
		for _, te := range t.adj[c] {
			if seen[te.to] {
				continue
			}
			seen[te.to] = true
			rt.up[te.to] = treeEdge{edge: te.edge, near: te.far, far: te.near, to: c}
			order = append(order, te.to)
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		c := order[i]
		rt.size[c]++
		if up := rt.up[c]; up.edge >= 0 {
			rt.size[up.to] += rt.size[c]
		}
	}
	return rt
}

// heavyPath follows the largest child subtree from c down to a leaf. At a
// snarl, children attached away from the entry side are preferred so the
// snarl gets two distinct boundaries.
func (t *bridgeTree) heavyPath(rt rooting, c, entry int32) ([]int32, []treeEdge) {
	comps := []int32{c}
	var bridges []treeEdge
	for {
		var best treeEdge
		found := false
		for _, te := range t.adj[c] {
			if te.edge == rt.up[c].edge {
				continue
			}
			if !found || heavier(rt, te, best, entry) {
				best, found = te, true
			}
		}
		if !found {
			return comps, bridges
		}
		bridges = append(bridges, best)
		comps = append(comps, best.to)
		c, entry = best.to, best.far
	}
}

func heavier(rt rooting, a, b treeEdge, entry int32) bool {
	if (a.near == entry) != (b.near == entry) {
		return b.near == entry
	}
	if rt.size[a.to] != rt.size[b.to] {
		return rt.size[a.to] > rt.size[b.to]
	}
	return a.edge < b.edge
}

// exit picks the second boundary of a snarl that ends a chain: the other
// side of the entry node when it lies inside, otherwise its smallest other
// side.
func (t *bridgeTree) exit(c, entry int32) int32 {
	if t.trivial(c) {
		return entry
	}
	if f := Flip(entry); t.has(f) && t.compOf(f) == c {
		return f
	}
	for _, v := range t.verts[c] {
		if v != entry {
			return v
		}
	}
	return entry
}

func (t *bridgeTree) has(v int32) bool {
	_, ok := t.sub.pos[v]
	return ok
}

func satAdd(a, b int64) int64 {
	if s := a + b; s >= a {
		return s
	}
	return int64(^uint64(0) >> 1)
}
