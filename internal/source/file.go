package source

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/peerscore/schema"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FileSource reads companies from a JSON or YAML file. The file holds either
// a list of companies or an object with a "companies" list.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads the file and returns the companies matching ids, or all of them.
func (s *FileSource) Load(ctx context.Context, ids []string) ([]schema.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", s.path)
	}

	var records []companyRecord
	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".json":
		records, err = decodeJSON(raw)
	case ".yaml", ".yml":
		records, err = decodeYAML(raw)
	default:
		return nil, eris.Errorf("source: unsupported file type %q (expected .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: decode %s", s.path)
	}

	companies := make([]schema.Company, 0, len(records))
	for i, r := range records {
		c := r.toCompany()
		if c.ID == "" {
			return nil, eris.Errorf("source: company at index %d has no id", i)
		}
		companies = append(companies, c)
	}
	return filterByID(companies, ids), nil
}

// Close is a no-op for files.
func (s *FileSource) Close() error { return nil }

func decodeJSON(raw []byte) ([]companyRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []companyRecord
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapper struct {
		Companies []companyRecord `json:"companies"`
	}
	if err := dec.Decode(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Companies, nil
}

func decodeYAML(raw []byte) ([]companyRecord, error) {
	var records []companyRecord
	if err := yaml.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapper struct {
		Companies []companyRecord `yaml:"companies"`
	}
	if err := yaml.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Companies, nil
}
