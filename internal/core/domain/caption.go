package domain

import (
	"errors"
	"strings"
)

var ErrGenerationFailed = errors.New("failed to generate caption")

// CaptionRequest is the transient input for caption generation.
type CaptionRequest struct {
	DogName         string
	GroomingService string
	Notes           string
	Tags            string
}

// Validate checks the required fields.
func (r CaptionRequest) Validate() error {
	if strings.TrimSpace(r.DogName) == "" {
		return errors.Join(ErrValidation, errors.New("dog name is required"))
	}
	if strings.TrimSpace(r.GroomingService) == "" {
		return errors.Join(ErrValidation, errors.New("grooming service is required"))
	}
	return nil
}
