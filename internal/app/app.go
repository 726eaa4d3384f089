// Package app assembles the parsing pipeline from configuration. Both the
// HTTP server and the command-line tool build their pipeline here.
package app

import (
	"errors"
	"fmt"
	"log"

	"labparse/internal/catalog"
	"labparse/internal/config"
	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/pipeline"
	"labparse/internal/port"

	// Register AI providers with the parser factory.
	_ "labparse/internal/parser/claude"
	_ "labparse/internal/parser/gemini"
	_ "labparse/internal/parser/ollama"
	_ "labparse/internal/parser/openai"
)

// LoadCatalog returns the spreadsheet catalog when a path is configured,
// otherwise the built-in one.
func LoadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.XLSXPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadXLSX(cfg.XLSXPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", cfg.XLSXPath, err)
	}
	return cat, nil
}

// NewExtractor builds the configured AI extractor. It returns nil without
// error when no provider is configured.
func NewExtractor(cfg *config.AIConfig) (port.ReportExtractor, error) {
	resolved := cfg.Resolve()
	ai, err := parser.NewExtractor(resolved)
	if errors.Is(err, domain.ErrAINotConfigured) {
		log.Printf("app: AI extraction disabled, no provider configured")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating AI extractor: %w", err)
	}
	log.Printf("app: AI extraction enabled provider=%s model=%s", resolved.Provider, resolved.Model)
	return ai, nil
}

// NewPipeline loads the catalog and AI extractor described by cfg.
func NewPipeline(cfg *config.Config) (*pipeline.Orchestrator, error) {
	cat, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	ai, err := NewExtractor(&cfg.AI)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cat, ai), nil
}
