package taxonomy

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Taxonomies []Taxonomy `json:"taxonomies" yaml:"taxonomies"`
}

// LoadFS walks the provided filesystem and parses JSON/YAML taxonomy files in
// lexical path order. When fsys is nil or holds no taxonomy files, the
// returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTaxonomyFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("taxonomy: walk: %w", err)
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return nil, err
		}

		for idx, raw := range doc.Taxonomies {
			tax := normaliseTaxonomy(raw)
			if tax.Name == "" {
				return nil, fmt.Errorf("taxonomy: file %s entry %d has an empty name", path, idx)
			}
			if previous, exists := seen[tax.Name]; exists {
				return nil, fmt.Errorf("taxonomy: duplicate taxonomy %q (files %s and %s)", tax.Name, previous, path)
			}
			if err := validateSeeds(tax, path); err != nil {
				return nil, err
			}
			seen[tax.Name] = path
			store.add(tax)
		}
	}

	return store, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("taxonomy: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("taxonomy: parse %s: invalid JSON or YAML", source)
}

func validateSeeds(tax Taxonomy, source string) error {
	names := make(map[string]struct{}, len(tax.Terms))
	for _, seed := range tax.Terms {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			return fmt.Errorf("taxonomy: file %s taxonomy %q declares a term with an empty name", source, tax.Name)
		}
		names[name] = struct{}{}
	}
	for _, seed := range tax.Terms {
		parent := strings.TrimSpace(seed.Parent)
		if parent == "" {
			continue
		}
		if !tax.Hierarchical {
			return fmt.Errorf("taxonomy: file %s taxonomy %q is flat but term %q has a parent", source, tax.Name, seed.Name)
		}
		if _, ok := names[parent]; !ok {
			return fmt.Errorf("taxonomy: file %s taxonomy %q term %q references unknown parent %q", source, tax.Name, seed.Name, parent)
		}
	}
	return nil
}

func isTaxonomyFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
