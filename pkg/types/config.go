// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "path/filepath"

// CollisionPolicy selects what happens when two rows of the same run derive
// the same document filename within a category.
type CollisionPolicy string

const (
	// CollisionOverwrite lets the later row replace the earlier document.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionSuffix writes the later row under name_2, name_3, ...
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionReject fails the later row and keeps the earlier document.
	CollisionReject CollisionPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p CollisionPolicy) Valid() bool {
	switch p {
	case CollisionOverwrite, CollisionSuffix, CollisionReject:
		return true
	}
	return false
}

// ConversionConfig holds settings for the document emission stage.
type ConversionConfig struct {
	// DocumentsDir is the root of the document tree (one subdirectory per category).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir" mapstructure:"documents_dir"`

	// Extension is the document file extension without the dot (default "yml").
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`

	// Collision selects the filename collision policy (default overwrite).
	Collision CollisionPolicy `json:"collision" yaml:"collision" mapstructure:"collision"`
}

// IndexConfig holds settings for the catalog indexing stage.
type IndexConfig struct {
	// DocumentsDir is the document tree scanned for each category.
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir" mapstructure:"documents_dir"`

	// IndexesDir receives one {category}.json artifact per category.
	IndexesDir string `json:"indexes_dir" yaml:"indexes_dir" mapstructure:"indexes_dir"`
}

// GenerationConfig describes the external site generation command.
type GenerationConfig struct {
	// Command is the executable to run (default "node").
	Command string `json:"command" yaml:"command" mapstructure:"command"`

	// Args are passed to Command (default ["scripts/generate-from-yaml.js"]).
	Args []string `json:"args" yaml:"args" mapstructure:"args"`

	// WorkDir is the directory the command runs in (default: project root).
	WorkDir string `json:"work_dir" yaml:"work_dir" mapstructure:"work_dir"`

	// Skip disables the generation step.
	Skip bool `json:"skip" yaml:"skip" mapstructure:"skip"`
}

// CatalogConfig holds settings for the SQLite catalog database.
type CatalogConfig struct {
	// DBPath is the SQLite database file.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// IndexesDir is where index artifacts are read from during ingest.
	IndexesDir string `json:"indexes_dir" yaml:"indexes_dir" mapstructure:"indexes_dir"`

	// MaxResults is the default search result limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Sync loads the catalog database at the end of a convert run.
	Sync bool `json:"sync" yaml:"sync" mapstructure:"sync"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	ProjectRoot string           `json:"project_root" yaml:"project_root" mapstructure:"project_root"`
	Conversion  ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Index       IndexConfig      `json:"index" yaml:"index" mapstructure:"index"`
	Generation  GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Catalog     CatalogConfig    `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// Default directory layout, relative to the project root.
const (
	DefaultDocumentsDir = "data-layer"
	DefaultIndexesDir   = "static/indexes"
	DefaultCatalogDB    = "catalog/catalog.db"
	DefaultExtension    = "yml"
	DefaultGenerator    = "node"
	DefaultGenScript    = "scripts/generate-from-yaml.js"
)

// DefaultPipelineConfig returns the layout the site generator expects under root.
func DefaultPipelineConfig(root string) PipelineConfig {
	if root == "" {
		root = "."
	}
	docs := filepath.Join(root, DefaultDocumentsDir)
	indexes := filepath.Join(root, DefaultIndexesDir)
	return PipelineConfig{
		ProjectRoot: root,
		Conversion: ConversionConfig{
			DocumentsDir: docs,
			Extension:    DefaultExtension,
			Collision:    CollisionOverwrite,
		},
		Index: IndexConfig{
			DocumentsDir: docs,
			IndexesDir:   indexes,
		},
		Generation: GenerationConfig{
			Command: DefaultGenerator,
			Args:    []string{DefaultGenScript},
			WorkDir: root,
		},
		Catalog: CatalogConfig{
			DBPath:     filepath.Join(root, DefaultCatalogDB),
			IndexesDir: indexes,
			MaxResults: 20,
		},
	}
}
