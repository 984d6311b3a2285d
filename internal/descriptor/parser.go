package descriptor

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"monosplit/internal/errors"
)

// pomXML mirrors the subset of the POM read by the analyzer. Tags carry no
// namespace, so elements match by local name whatever xmlns the file uses.
type pomXML struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Parent       *parentXML      `xml:"parent"`
	Modules      []string        `xml:"modules>module"`
	Dependencies []dependencyXML `xml:"dependencies>dependency"`
}

type parentXML struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type dependencyXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Type       string `xml:"type"`
	Optional   string `xml:"optional"`
}

// ParseFile reads and parses the descriptor at path. The returned record's
// Path and Dir are absolute.
func ParseFile(path string) (*Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Parse(abs, data)
}

// Parse parses descriptor content. path is recorded as given and its
// directory becomes the module directory.
func Parse(path string, data []byte) (*Record, error) {
	var doc pomXML
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Maven tolerates any declared encoding; content is read as UTF-8 regardless.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	if err := decodeDocument(dec, &doc); err != nil {
		return nil, errors.New(errors.DescriptorMalformed, "failed to parse "+path, err)
	}

	rec := &Record{
		Path: path,
		Dir:  filepath.Dir(path),
		Coordinate: Coordinate{
			GroupID:    text(doc.GroupID),
			ArtifactID: text(doc.ArtifactID),
			Version:    text(doc.Version),
		},
		Packaging: text(doc.Packaging),
	}
	if rec.Packaging == "" {
		rec.Packaging = DefaultPackaging
	}

	if doc.Parent != nil {
		rec.Parent = &ParentRef{
			GroupID:      text(doc.Parent.GroupID),
			ArtifactID:   text(doc.Parent.ArtifactID),
			Version:      text(doc.Parent.Version),
			RelativePath: text(doc.Parent.RelativePath),
		}
	}

	for _, m := range doc.Modules {
		if m = text(m); m != "" {
			rec.Modules = append(rec.Modules, m)
		}
	}

	for _, d := range doc.Dependencies {
		dep := Dependency{
			GroupID:    text(d.GroupID),
			ArtifactID: text(d.ArtifactID),
			Version:    text(d.Version),
			Scope:      text(d.Scope),
			Type:       text(d.Type),
		}
		if opt := text(d.Optional); opt != "" {
			v := strings.EqualFold(opt, "true")
			dep.Optional = &v
		}
		rec.Dependencies = append(rec.Dependencies, dep)
	}

	return rec, nil
}

// decodeDocument decodes the single root element into doc. Only whitespace,
// comments, processing instructions and directives may surround it.
func decodeDocument(dec *xml.Decoder, doc *pomXML) error {
	root := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if !root {
				return fmt.Errorf("no root element")
			}
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root {
				return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
			}
			if err := dec.DecodeElement(doc, &t); err != nil {
				return err
			}
			root = true
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("unexpected text %q outside root element", truncate(string(bytes.TrimSpace(t)), 20))
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func text(s string) string {
	return strings.TrimSpace(s)
}
