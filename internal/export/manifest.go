package export

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/address-mapper/internal/mapper"
)

// ManifestName is the manifest entry inside the archive.
const ManifestName = "manifest.yaml"

// Manifest describes a run. It is bundled with the archive.
type Manifest struct {
	RunID       string    `yaml:"run_id"`
	CreatedAt   time.Time `yaml:"created_at"`
	Source      string    `yaml:"source"`
	Policy      string    `yaml:"policy"`
	Documents   int       `yaml:"documents"`
	Pages       int       `yaml:"pages"`
	Addresses   int       `yaml:"addresses"`
	Annotations int       `yaml:"annotations"`
	Mapped      int       `yaml:"mapped"`
	Files       []string  `yaml:"files,omitempty"`
}

// NewManifest builds a manifest for a finished pipeline run with a fresh run ID.
func NewManifest(source string, policy mapper.Policy, stats mapper.Stats, records int) Manifest {
	return Manifest{
		RunID:       uuid.New().String(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Source:      source,
		Policy:      policy.String(),
		Documents:   stats.Documents,
		Pages:       stats.Pages,
		Addresses:   records,
		Annotations: stats.Annotations,
		Mapped:      stats.Geocoded,
	}
}

// Marshal encodes the manifest as YAML.
func (m Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, eris.Wrap(err, "export: encode manifest")
	}
	return data, nil
}
