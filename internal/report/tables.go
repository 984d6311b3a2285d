package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"monosplit/internal/analysis"
)

// File names written into the output directory.
const (
	ModulesFile  = "modules.csv"
	DepsFile     = "deps.csv"
	OverlapFile  = "code_overlap.csv"
	GraphFile    = "graph.dot"
	ProposalFile = "proposal.md"
	JSONFile     = "analysis.json"
	YAMLFile     = "analysis.yaml"
)

// WriteModulesCSV writes one row per module in GAV order.
func WriteModulesCSV(w io.Writer, res *analysis.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"artifact", "groupId", "artifactId", "version", "packaging", "moduleDir", "pomPath"}); err != nil {
		return err
	}
	for _, rec := range res.Graph.Nodes() {
		err := cw.Write([]string{
			rec.GAV(),
			rec.Coordinate.GroupID,
			rec.ArtifactID(),
			rec.Coordinate.Version,
			rec.Packaging,
			res.Rel(rec.Dir),
			res.Rel(rec.Path),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDepsCSV writes one row per distinct edge ordered by (from GAV, to GAV).
// Paths are the module directories.
func WriteDepsCSV(w io.Writer, res *analysis.Result) error {
	g := res.Graph
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "fromPath", "toPath"}); err != nil {
		return err
	}
	for _, e := range g.UniqueEdges() {
		from, to := g.Node(e.From), g.Node(e.To)
		if err := cw.Write([]string{from.GAV(), to.GAV(), res.Rel(from.Dir), res.Rel(to.Dir)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOverlapCSV writes the source overlap rows as scanned.
func WriteOverlapCSV(w io.Writer, res *analysis.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "name", "moduleCount", "modules"}); err != nil {
		return err
	}
	for _, r := range res.Overlap {
		if err := cw.Write([]string{r.Kind, r.Name, strconv.Itoa(r.ModuleCount), r.Modules}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDOT writes the graph with nodes n0..nN in GAV order, labeled by
// artifact and packaging.
func WriteDOT(w io.Writer, res *analysis.Result) error {
	g := res.Graph
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  rankdir=\"LR\";\n")
	b.WriteString("  node [shape=box];\n")
	for i, rec := range g.Nodes() {
		label := dotEscape(rec.ArtifactID()) + `\n(` + dotEscape(rec.Packaging) + ")"
		fmt.Fprintf(&b, "  n%d [label=\"%s\"];\n", i, label)
	}
	for _, e := range g.UniqueEdges() {
		fmt.Fprintf(&b, "  n%d -> n%d;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
