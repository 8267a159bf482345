package model

import (
	"gorm.io/gorm"

	"forge/pkg/pipeline"
)

// Pipeline is one stored version of a pipeline definition. Updating a
// pipeline inserts a new row with the next version; the newest version
// per name is the active one.
type Pipeline struct {
	gorm.Model
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_name_version"`
	Description string `gorm:"type:text"`
	Version     int    `gorm:"not null;uniqueIndex:idx_name_version"`
	Config      string `gorm:"type:text;not null"`
}

// Spec parses and validates the stored YAML config.
func (p *Pipeline) Spec() (*pipeline.Spec, error) {
	return pipeline.Parse(p.Config)
}
