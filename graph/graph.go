// Package graph provides reachability analysis over a process document.
package graph

import "github.com/gclaussn/go-procdoc/model"

// New creates a snapshot of the document's elements and connections.
// Connections, whose source or target element does not exist, are ignored.
func New(d *model.Document) *Graph {
	elements := d.Elements()

	g := Graph{
		ids:      make([]string, len(elements)),
		types:    make(map[string]model.ElementType, len(elements)),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}

	for i, e := range elements {
		g.ids[i] = e.Id
		g.types[e.Id] = e.Type
	}

	for _, c := range d.Connections() {
		if _, ok := g.types[c.Source]; !ok {
			continue
		}
		if _, ok := g.types[c.Target]; !ok {
			continue
		}
		g.outgoing[c.Source] = append(g.outgoing[c.Source], c.Target)
		g.incoming[c.Target] = append(g.incoming[c.Target], c.Source)
	}

	return &g
}

// A Graph is an immutable snapshot of a document, used to determine which elements are reachable.
type Graph struct {
	ids      []string // element IDs in insertion order
	types    map[string]model.ElementType
	outgoing map[string][]string // mapping between element ID and target element IDs
	incoming map[string][]string // mapping between element ID and source element IDs
}

// IsEmpty determines if the graph has no elements.
func (g *Graph) IsEmpty() bool {
	return len(g.ids) == 0
}

// StartSeeds returns the IDs of all start elements and elements without incoming connections.
func (g *Graph) StartSeeds() []string {
	var seeds []string
	for _, id := range g.ids {
		if g.types[id] == model.ElementStart || len(g.incoming[id]) == 0 {
			seeds = append(seeds, id)
		}
	}
	return seeds
}

// EndSeeds returns the IDs of all end elements and elements without outgoing connections.
func (g *Graph) EndSeeds() []string {
	var seeds []string
	for _, id := range g.ids {
		if g.types[id] == model.ElementEnd || len(g.outgoing[id]) == 0 {
			seeds = append(seeds, id)
		}
	}
	return seeds
}

// Forward returns the IDs of all elements, which are reachable from a start seed.
func (g *Graph) Forward() Set {
	return bfs(g.StartSeeds(), g.outgoing)
}

// Backward returns the IDs of all elements, from which an end seed is reachable.
func (g *Graph) Backward() Set {
	return bfs(g.EndSeeds(), g.incoming)
}

// Unreachable returns the IDs of all elements, which are not reachable from a start seed, in insertion order.
func (g *Graph) Unreachable() []string {
	forward := g.Forward()

	var ids []string
	for _, id := range g.ids {
		if !forward.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// DeadEnds returns the IDs of all elements with at least one outgoing connection, from which no end seed is reachable, in insertion order.
func (g *Graph) DeadEnds() []string {
	backward := g.Backward()

	var ids []string
	for _, id := range g.ids {
		if len(g.outgoing[id]) != 0 && !backward.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func bfs(seeds []string, adjacency map[string][]string) Set {
	visited := make(Set, len(seeds))

	queue := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if !visited.Has(id) {
			visited[id] = struct{}{}
			queue = append(queue, id)
		}
	}

	for len(queue) != 0 {
		id := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[id] {
			if !visited.Has(next) {
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}

	return visited
}

// Set is a set of element IDs.
type Set map[string]struct{}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}
