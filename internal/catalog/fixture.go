package catalog

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// FieldDef is one row of the static field catalogue.
type FieldDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit,omitempty"`
}

// TemplateDef is one default-attribute template keyed by form name.
// Versions maps schema version to the field list; the empty key is the
// catalogue default.
type TemplateDef struct {
	FormName string              `json:"form_name"`
	Versions map[string][]string `json:"versions"`
}

// Static is an in-memory Catalog backed by fixture data. It also serves
// as the test double for the SQL-backed catalogue.
type Static struct {
	fields    map[string]FieldDef
	choices   map[int]string
	templates map[string]map[string][]string
}

// NewStatic builds a Static catalogue from already-loaded rows.
func NewStatic(fields []FieldDef, choices map[int]string, templates []TemplateDef) *Static {
	s := &Static{
		fields:    make(map[string]FieldDef, len(fields)),
		choices:   make(map[int]string, len(choices)),
		templates: make(map[string]map[string][]string, len(templates)),
	}
	for _, f := range fields {
		s.fields[f.Name] = f
	}
	for code, label := range choices {
		s.choices[code] = label
	}
	for _, t := range templates {
		s.templates[t.FormName] = t.Versions
	}
	return s
}

// fixtureFile is the JSON shape of a catalogue fixture on disk.
type fixtureFile struct {
	Fields    []FieldDef     `json:"fields"`
	Choices   map[int]string `json:"choices"`
	Templates []TemplateDef  `json:"templates"`
}

// LoadStaticFromFile reads a catalogue fixture JSON file.
func LoadStaticFromFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read fixture")
	}

	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal fixture")
	}

	return NewStatic(f.Fields, f.Choices, f.Templates), nil
}

// FieldDescription implements Catalog. A miss returns "".
func (s *Static) FieldDescription(_ context.Context, name string) (string, error) {
	return s.fields[name].Description, nil
}

// FieldUnit implements Catalog. A miss returns "".
func (s *Static) FieldUnit(_ context.Context, name string) (string, error) {
	return s.fields[name].Unit, nil
}

// ChoiceLabel implements Catalog. A miss returns "".
func (s *Static) ChoiceLabel(_ context.Context, code int) (string, error) {
	return s.choices[code], nil
}

// DefaultTemplate implements Catalog. Falls back from the requested
// schema version to the catalogue default before failing.
func (s *Static) DefaultTemplate(_ context.Context, formName, schemaVersion string) ([]string, error) {
	versions, ok := s.templates[formName]
	if !ok {
		return nil, eris.Wrapf(ErrTemplateNotFound, "form %q", formName)
	}
	if fields, ok := versions[schemaVersion]; ok {
		return fields, nil
	}
	if fields, ok := versions[""]; ok {
		return fields, nil
	}
	return nil, eris.Wrapf(ErrTemplateNotFound, "form %q version %q", formName, schemaVersion)
}

// FormNames returns the form names with templates, for catalogue validation.
func (s *Static) FormNames() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}
