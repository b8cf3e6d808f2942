// Package catalog holds the immutable evaluation summaries of the trained
// classifiers and their feature importances. A catalog is loaded once at
// startup and handed to the components that need it.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ahab-backend/internal/models"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.toml
var defaultCatalogTOML []byte

// ErrUnknownModel is returned when a model key is not in the catalog
var ErrUnknownModel = errors.New("unknown model")

// document is the on-disk shape of a catalog
type document struct {
	BestModel  string                     `json:"best_model" toml:"best_model" yaml:"best_model"`
	SavedModel string                     `json:"saved_model" toml:"saved_model" yaml:"saved_model"`
	Reference  models.ReferenceDataset    `json:"reference" toml:"reference" yaml:"reference"`
	Models     []models.ModelResult       `json:"models" toml:"models" yaml:"models"`
	Features   []models.FeatureImportance `json:"features" toml:"features" yaml:"features"`
}

// Catalog is a read-only view over a validated document
type Catalog struct {
	doc   document
	index map[string]int
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	var doc document
	if _, err := toml.Decode(string(defaultCatalogTOML), &doc); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return build(doc)
}

// Load reads a catalog file. An empty path yields the embedded default.
// The format follows the extension: .toml, .yaml/.yml or .json.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes catalog data in the format named by ext
func Parse(data []byte, ext string) (*Catalog, error) {
	var doc document
	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	return build(doc)
}

func build(doc document) (*Catalog, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(doc.Models))
	for i, m := range doc.Models {
		if _, dup := index[m.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate model key %q", m.Key)
		}
		index[m.Key] = i
	}
	for _, key := range []string{doc.BestModel, doc.SavedModel} {
		if _, ok := index[key]; !ok {
			return nil, fmt.Errorf("catalog: %w %q", ErrUnknownModel, key)
		}
	}
	if doc.Reference.Confirmed > doc.Reference.Total {
		return nil, fmt.Errorf("catalog: reference confirmed count %d exceeds total %d",
			doc.Reference.Confirmed, doc.Reference.Total)
	}

	return &Catalog{doc: doc, index: index}, nil
}

// Model looks up a model by key
func (c *Catalog) Model(key string) (models.ModelResult, error) {
	i, ok := c.index[key]
	if !ok {
		return models.ModelResult{}, fmt.Errorf("%w %q", ErrUnknownModel, key)
	}
	return c.doc.Models[i], nil
}

// Models returns every model in catalog order
func (c *Catalog) Models() []models.ModelResult {
	out := make([]models.ModelResult, len(c.doc.Models))
	copy(out, c.doc.Models)
	return out
}

// Keys returns the model keys in catalog order
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.doc.Models))
	for i, m := range c.doc.Models {
		keys[i] = m.Key
	}
	return keys
}

// Best is the highest-scoring model shown as the headline result
func (c *Catalog) Best() models.ModelResult {
	return c.doc.Models[c.index[c.doc.BestModel]]
}

// Saved is the model that was persisted for the demo
func (c *Catalog) Saved() models.ModelResult {
	return c.doc.Models[c.index[c.doc.SavedModel]]
}

// Reference describes the labelled dataset behind the summaries
func (c *Catalog) Reference() models.ReferenceDataset {
	return c.doc.Reference
}

// Features returns all feature importances, most important first
func (c *Catalog) Features() []models.FeatureImportance {
	out := make([]models.FeatureImportance, len(c.doc.Features))
	copy(out, c.doc.Features)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}

// TopFeatures returns at most n features, most important first.
// n <= 0 returns all of them.
func (c *Catalog) TopFeatures(n int) []models.FeatureImportance {
	all := c.Features()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[:n]
}
