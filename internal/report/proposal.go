package report

import (
	"fmt"
	"strings"

	"monosplit/internal/analysis"
	"monosplit/internal/classify"
)

// Proposal renders the split recommendation as markdown.
func Proposal(res *analysis.Result) string {
	p := res.Proposal
	g := res.Graph
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if n := len(p.Applications); n > 0 {
		add("# Proposed %d-Repo Model (Based on POM dependency graph)\n", n+1)
	} else {
		add("# Proposed Repo Model (Based on POM dependency graph)\n")
	}

	if len(p.Applications) == 0 {
		add("⚠️ No WAR/EAR modules detected. You may have standalone WAR projects without a reactor parent.\n")
	} else {
		add("## Detected Applications (WAR/EAR)\n")
		for _, app := range p.Applications {
			rec := g.Node(app.Node)
			line := fmt.Sprintf("- **%s** (%s): `%s`", rec.ArtifactID(), rec.Packaging, res.Rel(rec.Dir))
			if app.Reason != classify.ReasonPackaging {
				line += fmt.Sprintf(" _(detected by %s)_", app.Reason)
			}
			lines = append(lines, line)
		}
	}

	add("\n## Shared library candidates (best for `common-platform` repo)\n")
	if len(p.Shared) == 0 && len(p.HighFanIn) == 0 {
		add("- (None detected via internal Maven modules.)")
		add("  - This often means shared code is duplicated inside the apps, not extracted into JAR modules.")
		add("  - Use `%s` to spot common packages/classes to extract.\n", OverlapFile)
	} else {
		if len(p.Shared) > 0 {
			add("\n**Used by 2+ apps (strong signal):**")
			for _, s := range p.Shared {
				add("- %s: used by %s", g.Node(s.Node).GAV(), strings.Join(p.SortedArtifacts(s.Apps), ", "))
			}
		}
		if len(p.HighFanIn) > 0 {
			add("\n**High fan-in libs (2+ internal dependents):**")
			for _, f := range p.HighFanIn {
				add("- %s: internal dependents %s", g.Node(f.Node).GAV(), strings.Join(p.SortedArtifacts(f.Dependents), ", "))
			}
		}
	}

	add("\n## App-specific module candidates (can live with each app repo)\n")
	for _, app := range p.Applications {
		add("\n### %s\n", g.Node(app.Node).ArtifactID())
		mods := p.Exclusive[app.Node]
		if len(mods) == 0 {
			add("- (No app-exclusive internal modules detected.)")
			continue
		}
		for _, m := range mods {
			rec := g.Node(m)
			add("- %s: `%s`", rec.GAV(), res.Rel(rec.Dir))
		}
	}

	add("\n## Recommended Repo Split\n")
	add("### Repo A: `common-platform` (publish Maven artifacts)\n")
	add("- Move all **shared** modules (above) into this repo.")
	add("- Add a **BOM** (recommended) to centralize versions for all apps.")
	add("- CI publishes artifacts to Nexus/Artifactory/GitHub Packages.\n")

	if len(p.Applications) == 0 {
		add("### Application repos\n")
		add("- One repo per deployable application once applications are identified.\n")
	} else {
		names := make([]string, len(p.Applications))
		for i, app := range p.Applications {
			names[i] = "`" + g.Node(app.Node).ArtifactID() + "`"
		}
		add("### Application repos: %s\n", strings.Join(names, ", "))
		add("- Each repo contains one WAR (and any app-exclusive modules).")
		add("- Each imports `platform-bom` (or uses a shared parent POM) and depends on `common-*`.\n")
	}

	add("## Notes / Risks Detected\n")
	lines = append(lines, res.CycleSummary())
	if n := len(res.Failed); n > 0 {
		add("- %d descriptor(s) could not be parsed and were skipped.", n)
	}
	if n := len(res.Resolution.MissingParents); n > 0 {
		add("- %d module(s) declare a parent that is not in this tree; their coordinates may be incomplete.", n)
	}
	if n := len(res.Ignored); n > 0 {
		add("- %d module(s) were excluded by the declaration file.", n)
	}

	if n := len(p.Applications); n > 3 {
		add("\nℹ️ Detected **%d** app-like modules. Same pattern applies: 1 common repo + 1 repo per WAR.\n", n)
	}

	return strings.Join(lines, "\n") + "\n"
}
