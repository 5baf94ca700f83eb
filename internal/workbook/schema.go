// Package workbook assembles a company's disclosure history into the
// per-sheet wide tables the output sink writes.
package workbook

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// GroupKind discriminates how a field group is extracted.
type GroupKind string

const (
	// GroupPlain pulls a flat list of named fields.
	GroupPlain GroupKind = "plain"
	// GroupRepeat expands a repeatable sub-form with positional numbering.
	GroupRepeat GroupKind = "repeat"
	// GroupCategory expands a multi-category sub-form with category
	// discriminators embedded in the keys.
	GroupCategory GroupKind = "category"
)

// FieldGroup is one extraction pass contributing to a sheet.
type FieldGroup struct {
	Kind          GroupKind `yaml:"kind"`
	Fields        []string  `yaml:"fields,omitempty"`
	Strict        bool      `yaml:"strict,omitempty"`
	Form          string    `yaml:"form,omitempty"`
	CategoryField string    `yaml:"category_field,omitempty"`
	GroupToken    string    `yaml:"group_token,omitempty"`
}

// SheetSchema declares one wide sheet: its extraction passes, whether it
// carries Restated_<year> columns, and the placeholder text shown when
// the company has no data for it at all.
type SheetSchema struct {
	Name        string       `yaml:"name"`
	Groups      []FieldGroup `yaml:"groups"`
	Restated    bool         `yaml:"restated,omitempty"`
	Placeholder string       `yaml:"placeholder"`
}

// Schema is the full workbook layout. The two append-only sheets
// (restatements, target progress) are fixed; this only declares the
// year-merged wide sheets.
type Schema struct {
	Sheets             []SheetSchema `yaml:"sheets"`
	TargetProgressForm string        `yaml:"target_progress_form"`
}

// LoadSchema reads a workbook schema override from a YAML file.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, eris.Wrap(err, "workbook: read schema")
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, eris.Wrap(err, "workbook: unmarshal schema")
	}
	if s.TargetProgressForm == "" {
		s.TargetProgressForm = DefaultSchema().TargetProgressForm
	}
	return s, nil
}

// DefaultSchema is the built-in workbook layout.
func DefaultSchema() Schema {
	return Schema{
		TargetProgressForm: "target_progress_dict",
		Sheets: []SheetSchema{
			{
				Name:        "Metadata",
				Placeholder: "No Reporting Metadata Available.",
				Groups: []FieldGroup{
					{Kind: GroupPlain, Strict: true, Fields: []string{
						"reporting_boundary",
						"consolidation_approach",
						"reporting_framework",
						"base_year",
						"public_report_url",
					}},
				},
			},
			{
				Name:        "Emissions",
				Restated:    true,
				Placeholder: "No Emissions Data Available.",
				Groups: []FieldGroup{
					{Kind: GroupPlain, Fields: []string{
						"total_s1_emissions_ghg",
						"total_s2_emissions_lb_ghg",
						"total_s2_emissions_mb_ghg",
						"total_s3_emissions_ghg",
						"ghg_intensity_revenue",
						"energy_consumption_total",
					}},
					{Kind: GroupRepeat, Form: "s1_emissions_exclusion_dict"},
					{Kind: GroupCategory, Form: "s3_emissions_breakdown_dict",
						CategoryField: "s3_category", GroupToken: "s3"},
				},
			},
			{
				Name:        "Financed Emissions",
				Restated:    true,
				Placeholder: "No Financed Emissions Data Available.",
				Groups: []FieldGroup{
					{Kind: GroupPlain, Fields: []string{
						"total_financed_emissions_ghg",
						"financed_emissions_coverage_pct",
						"pcaf_data_quality_score",
					}},
					{Kind: GroupRepeat, Form: "financed_emissions_breakdown_dict"},
				},
			},
			{
				Name:        "Assurance",
				Placeholder: "No Assurance Data Available.",
				Groups: []FieldGroup{
					{Kind: GroupRepeat, Form: "assurance_dict"},
				},
			},
			{
				Name:        "Targets",
				Restated:    true,
				Placeholder: "No Emissions Reduction Target Data Available.",
				Groups: []FieldGroup{
					{Kind: GroupRepeat, Form: "target_dict"},
				},
			},
			{
				Name:        "Target Validation",
				Placeholder: "No Target Validation Data Available.",
				Groups: []FieldGroup{
					{Kind: GroupPlain, Strict: true, Fields: []string{
						"target_validation_provider",
						"target_validation_status",
						"target_validation_date",
					}},
				},
			},
		},
	}
}

// FormNames returns every sub-form name the schema references, for
// catalogue validation.
func (s Schema) FormNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, sheet := range s.Sheets {
		for _, g := range sheet.Groups {
			add(g.Form)
		}
	}
	add(s.TargetProgressForm)
	return names
}
