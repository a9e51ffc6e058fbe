package server

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AnalyzeRequest is the body for POST /api/analyze.
type AnalyzeRequest struct {
	Symbol string `json:"symbol" validate:"required,alphanum,min=1,max=12"`
	Force  bool   `json:"force"`
}

// Validate checks the request and normalizes the symbol.
func (r *AnalyzeRequest) Validate() error {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid analyze request: %w", err)
	}
	return nil
}

// ScoreRequest is the body for POST /api/score.
type ScoreRequest struct {
	Symbol string `json:"symbol" validate:"required,alphanum,min=1,max=12"`
	Force  bool   `json:"force"`
}

// Validate checks the request and normalizes the symbol.
func (r *ScoreRequest) Validate() error {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid score request: %w", err)
	}
	return nil
}
