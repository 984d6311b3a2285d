// Package cycles finds elementary dependency cycles in a depgraph.Graph.
package cycles

import (
	"fmt"
	"strings"

	"monosplit/internal/depgraph"
)

// DefaultMaxListed is how many cycles Summary lists before collapsing the rest.
const DefaultMaxListed = 10

// Remediation is appended to every summary that reports cycles.
const Remediation = "Break cycles before splitting repos (usually by extracting interfaces/models downward)."

// NoCycles is the summary line for an acyclic graph.
const NoCycles = "No internal dependency cycles detected."

// Cycle is a node sequence whose last element repeats the first.
type Cycle []depgraph.NodeID

// Report holds the deduplicated cycles in order of first discovery.
type Report struct {
	Cycles []Cycle
	g      *depgraph.Graph
}

type frame struct {
	node depgraph.NodeID
	next int
}

// Detect runs a depth-first search from every unvisited node in node order.
// Reaching a node that is on the current path records the sub-path from that
// node to the current one, closed by the repeated node.
func Detect(g *depgraph.Graph) *Report {
	n := g.Len()
	visited := make([]bool, n)
	// pos is the index of a node in the current path, -1 when off the stack.
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}

	seen := make(map[string]bool)
	r := &Report{g: g}

	for start := range n {
		if visited[start] {
			continue
		}
		path := []depgraph.NodeID{depgraph.NodeID(start)}
		stack := []frame{{node: depgraph.NodeID(start)}}
		visited[start] = true
		pos[start] = 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := g.Successors(top.node)
			if top.next >= len(succ) {
				pos[top.node] = -1
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			next := succ[top.next]
			top.next++

			switch {
			case !visited[next]:
				visited[next] = true
				pos[next] = len(path)
				path = append(path, next)
				stack = append(stack, frame{node: next})
			case pos[next] >= 0:
				c := make(Cycle, 0, len(path)-pos[next]+1)
				c = append(c, path[pos[next]:]...)
				c = append(c, next)
				key := strings.Join(g.GAVs(c), "->")
				if !seen[key] {
					seen[key] = true
					r.Cycles = append(r.Cycles, c)
				}
			}
		}
	}
	return r
}

// Len returns the number of distinct cycles.
func (r *Report) Len() int { return len(r.Cycles) }

// Artifacts renders a cycle by artifact id.
func (r *Report) Artifacts(c Cycle) []string { return r.g.Artifacts(c) }

// GAVs renders a cycle by full coordinate.
func (r *Report) GAVs(c Cycle) []string { return r.g.GAVs(c) }

// Summary renders the cycle findings as markdown list lines, listing at most
// max cycles. A max below 1 uses DefaultMaxListed.
func (r *Report) Summary(max int) string {
	if max < 1 {
		max = DefaultMaxListed
	}
	if len(r.Cycles) == 0 {
		return "- " + NoCycles
	}

	lines := []string{"- ⚠️ Detected internal dependency cycle(s):"}
	for i, c := range r.Cycles {
		if i == max {
			break
		}
		lines = append(lines, "  - "+strings.Join(r.Artifacts(c), " -> "))
	}
	if extra := len(r.Cycles) - max; extra > 0 {
		lines = append(lines, fmt.Sprintf("  - (and %d more)", extra))
	}
	lines = append(lines, "  - "+Remediation)
	return strings.Join(lines, "\n")
}
