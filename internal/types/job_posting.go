// Package types provides type definitions for structured data used throughout the jobfit pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// JobPosting is one discovered job listing normalized into the pipeline's
// input shape. It is supplied by the discovery collaborator and never
// mutated by the pipeline.
type JobPosting struct {
	ID          string    `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Company     string    `json:"company" validate:"required"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description" validate:"required,min=1"`
	SourceURL   string    `json:"source_url,omitempty" validate:"omitempty,url"`
	CapturedAt  time.Time `json:"captured_at,omitempty"`
}

var postingValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the posting carries every essential field.
// Location and capture time are optional; a missing description is a hard
// input-validation failure and the posting is rejected before classification.
func (p *JobPosting) Validate() error {
	if err := postingValidator.Struct(p); err != nil {
		return fmt.Errorf("invalid job posting: %w", err)
	}
	return nil
}
