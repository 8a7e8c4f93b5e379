// Package manifest reads YAML reference lists. A manifest plays the part of
// the analyzed host file: it names the sequences to composite and the options
// to composite them with.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
	"github.com/autobrr/go-mediainfo-refs/internal/references"
)

// Manifest is the decoded form of a reference list.
type Manifest struct {
	// Title is copied to the General stream when set.
	Title     string            `yaml:"title"`
	Config    references.Config `yaml:"config"`
	Sequences []Sequence        `yaml:"sequences"`
}

type Sequence struct {
	Kind      string            `yaml:"kind"`
	ID        *uint64           `yaml:"id"`
	Files     []string          `yaml:"files"`
	Main      bool              `yaml:"main"`
	Source    string            `yaml:"source"`
	FrameRate float64           `yaml:"frame_rate"`
	Infos     map[string]string `yaml:"infos"`
	Resources []Resource        `yaml:"resources"`
}

type Resource struct {
	Files              []string `yaml:"files"`
	EditRate           float64  `yaml:"edit_rate"`
	EditsBefore        int64    `yaml:"edits_before"`
	EditsAfter         *int64   `yaml:"edits_after"`
	EditsAfterDuration *int64   `yaml:"edits_after_duration"`
}

// Extensions lists the file extensions read as manifests.
var Extensions = []string{".yaml", ".yml"}

// IsManifest reports whether path names a manifest by its extension.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest over the default configuration.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{Config: references.DefaultConfig()}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.Config.Normalize()
	return m, nil
}

// LoadConfigFile loads compositor options from a YAML file.
func LoadConfigFile(path string) (references.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return references.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := references.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return references.Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

func (m *Manifest) Validate() error {
	var problems []string
	if len(m.Sequences) == 0 {
		problems = append(problems, "no sequences")
	}
	for i, seq := range m.Sequences {
		if _, ok := mediainfo.ParseStreamKind(seq.Kind); !ok || strings.EqualFold(seq.Kind, "General") {
			problems = append(problems, fmt.Sprintf("sequence %d: invalid kind %q", i, seq.Kind))
		}
		if len(seq.Files) == 0 && len(seq.Resources) == 0 {
			problems = append(problems, fmt.Sprintf("sequence %d: no files", i))
		}
		for j, res := range seq.Resources {
			if len(res.Files) == 0 {
				problems = append(problems, fmt.Sprintf("sequence %d resource %d: no files", i, j))
			}
			if res.EditRate < 0 {
				problems = append(problems, fmt.Sprintf("sequence %d resource %d: negative edit rate", i, j))
			}
			if res.EditsBefore < 0 {
				problems = append(problems, fmt.Sprintf("sequence %d resource %d: negative edits_before", i, j))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("manifest validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// References converts the manifest entries into compositor sequences.
func (m *Manifest) References() []*references.Sequence {
	out := make([]*references.Sequence, 0, len(m.Sequences))
	for _, entry := range m.Sequences {
		kind, _ := mediainfo.ParseStreamKind(entry.Kind)
		id := references.NoID
		if entry.ID != nil {
			id = *entry.ID
		}
		seq := references.NewSequence(kind, id, entry.Files...)
		seq.IsMain = entry.Main
		seq.Source = entry.Source
		seq.FrameRate = entry.FrameRate
		for name, value := range entry.Infos {
			seq.Infos[name] = value
		}
		for _, r := range entry.Resources {
			res := references.NewResource(r.Files...)
			res.EditRate = r.EditRate
			res.IgnoreEditsBefore = r.EditsBefore
			if r.EditsAfter != nil {
				res.IgnoreEditsAfter = *r.EditsAfter
			}
			if r.EditsAfterDuration != nil {
				res.IgnoreEditsAfterDuration = *r.EditsAfterDuration
			}
			seq.Resources = append(seq.Resources, res)
		}
		out = append(out, seq)
	}
	return out
}
