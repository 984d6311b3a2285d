package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"monosplit/internal/analysis"
	"monosplit/internal/depgraph"
	"monosplit/internal/descriptor"
	"monosplit/internal/overlap"
)

// Snapshot is the structured export of one analysis run.
type Snapshot struct {
	RunID      string    `json:"runId" yaml:"runId"`
	Root       string    `json:"root" yaml:"root"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	DurationMs int64     `json:"durationMs" yaml:"durationMs"`

	Summary      Summary        `json:"summary" yaml:"summary"`
	Modules      []ModuleEntry  `json:"modules" yaml:"modules"`
	Edges        []EdgeEntry    `json:"edges" yaml:"edges"`
	Applications []AppEntry     `json:"applications" yaml:"applications"`
	Shared       []LibraryEntry `json:"shared" yaml:"shared"`
	HighFanIn    []LibraryEntry `json:"highFanIn" yaml:"highFanIn"`
	Cycles       [][]string     `json:"cycles" yaml:"cycles"`
	Overlap      []overlap.Row  `json:"overlap,omitempty" yaml:"overlap,omitempty"`
	Failed       []string       `json:"failed,omitempty" yaml:"failed,omitempty"`
	Ignored      []string       `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	Warnings     []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Summary holds the headline counts of a run.
type Summary struct {
	Descriptors  int            `json:"descriptors" yaml:"descriptors"`
	Modules      int            `json:"modules" yaml:"modules"`
	Applications int            `json:"applications" yaml:"applications"`
	Shared       int            `json:"shared" yaml:"shared"`
	HighFanIn    int            `json:"highFanIn" yaml:"highFanIn"`
	Cycles       int            `json:"cycles" yaml:"cycles"`
	Passes       int            `json:"resolutionPasses" yaml:"resolutionPasses"`
	Filled       int            `json:"filledFields" yaml:"filledFields"`
	Dependencies depgraph.Stats `json:"dependencies" yaml:"dependencies"`
}

// ModuleEntry is one module row.
type ModuleEntry struct {
	GAV        string          `json:"gav" yaml:"gav"`
	GroupID    string          `json:"groupId,omitempty" yaml:"groupId,omitempty"`
	ArtifactID string          `json:"artifactId" yaml:"artifactId"`
	Version    string          `json:"version,omitempty" yaml:"version,omitempty"`
	Packaging  string          `json:"packaging" yaml:"packaging"`
	Kind       descriptor.Kind `json:"kind" yaml:"kind"`
	Role       string          `json:"role" yaml:"role"`
	FanIn      int             `json:"fanIn" yaml:"fanIn"`
	ModuleDir  string          `json:"moduleDir" yaml:"moduleDir"`
	PomPath    string          `json:"pomPath" yaml:"pomPath"`
}

// EdgeEntry is one distinct dependency edge.
type EdgeEntry struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	FromPath string `json:"fromPath" yaml:"fromPath"`
	ToPath   string `json:"toPath" yaml:"toPath"`
}

// AppEntry is one application with its closure and exclusive modules.
type AppEntry struct {
	GAV       string   `json:"gav" yaml:"gav"`
	Reason    string   `json:"reason" yaml:"reason"`
	Closure   []string `json:"closure" yaml:"closure"`
	Exclusive []string `json:"exclusive" yaml:"exclusive"`
}

// LibraryEntry is a shared or high-fan-in library with the artifacts that use it.
type LibraryEntry struct {
	GAV    string   `json:"gav" yaml:"gav"`
	UsedBy []string `json:"usedBy" yaml:"usedBy"`
}

// NewSnapshot flattens res into its export form.
func NewSnapshot(res *analysis.Result) *Snapshot {
	g := res.Graph
	p := res.Proposal
	s := &Snapshot{
		RunID:      res.RunID,
		Root:       res.Root,
		StartedAt:  res.StartedAt,
		DurationMs: res.Duration.Milliseconds(),
		Summary: Summary{
			Descriptors:  len(res.Found),
			Modules:      g.Len(),
			Applications: len(p.Applications),
			Shared:       len(p.Shared),
			HighFanIn:    len(p.HighFanIn),
			Cycles:       res.Cycles.Len(),
			Passes:       res.Resolution.Passes,
			Filled:       res.Resolution.Filled,
			Dependencies: g.Stats(),
		},
		Modules:      make([]ModuleEntry, 0, g.Len()),
		Edges:        []EdgeEntry{},
		Applications: []AppEntry{},
		Shared:       []LibraryEntry{},
		HighFanIn:    []LibraryEntry{},
		Cycles:       [][]string{},
		Overlap:      res.Overlap,
	}

	for i, rec := range g.Nodes() {
		id := depgraph.NodeID(i)
		s.Modules = append(s.Modules, ModuleEntry{
			GAV:        rec.GAV(),
			GroupID:    rec.Coordinate.GroupID,
			ArtifactID: rec.ArtifactID(),
			Version:    rec.Coordinate.Version,
			Packaging:  rec.Packaging,
			Kind:       rec.Kind(),
			Role:       p.Role(id),
			FanIn:      g.FanIn(id),
			ModuleDir:  res.Rel(rec.Dir),
			PomPath:    res.Rel(rec.Path),
		})
	}
	for _, e := range g.UniqueEdges() {
		from, to := g.Node(e.From), g.Node(e.To)
		s.Edges = append(s.Edges, EdgeEntry{From: from.GAV(), To: to.GAV(), FromPath: res.Rel(from.Dir), ToPath: res.Rel(to.Dir)})
	}
	for _, app := range p.Applications {
		s.Applications = append(s.Applications, AppEntry{
			GAV:       g.Node(app.Node).GAV(),
			Reason:    string(app.Reason),
			Closure:   nonNil(g.GAVs(app.Closure)),
			Exclusive: nonNil(g.GAVs(p.Exclusive[app.Node])),
		})
	}
	for _, l := range p.Shared {
		s.Shared = append(s.Shared, LibraryEntry{GAV: g.Node(l.Node).GAV(), UsedBy: p.SortedArtifacts(l.Apps)})
	}
	for _, l := range p.HighFanIn {
		s.HighFanIn = append(s.HighFanIn, LibraryEntry{GAV: g.Node(l.Node).GAV(), UsedBy: p.SortedArtifacts(l.Dependents)})
	}
	for _, c := range res.Cycles.Cycles {
		s.Cycles = append(s.Cycles, res.Cycles.GAVs(c))
	}
	for _, f := range res.Failed {
		s.Failed = append(s.Failed, res.Rel(f))
	}
	for _, f := range res.Ignored {
		s.Ignored = append(s.Ignored, res.Rel(f))
	}
	if res.Warnings != nil {
		for _, w := range res.Warnings.Errors {
			s.Warnings = append(s.Warnings, w.Error())
		}
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// EncodeJSON writes s as indented JSON.
func EncodeJSON(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

// EncodeJSONZstd writes s as zstd-compressed JSON.
func EncodeJSONZstd(w io.Writer, s *Snapshot) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := EncodeJSON(zw, s); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DecodeJSONZstd reads a snapshot written by EncodeJSONZstd.
func DecodeJSONZstd(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var s Snapshot
	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeYAML writes s as YAML.
func EncodeYAML(w io.Writer, s *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
