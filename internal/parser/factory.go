package parser

import (
	"fmt"
	"sync"

	"labparse/internal/config"
	"labparse/internal/domain"
	"labparse/internal/port"
)

// ProviderFactory creates a ReportExtractor from a resolved provider config.
type ProviderFactory func(cfg *config.AIParserConfig) (port.ReportExtractor, error)

// registry of provider factories, populated by init() in each provider
// package or explicitly via RegisterProvider.
var (
	mu        sync.RWMutex
	providers = map[domain.AIProvider]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name domain.AIProvider, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// NewExtractor creates the ReportExtractor for a resolved config. A nil
// config means no provider is configured.
func NewExtractor(cfg *config.AIParserConfig) (port.ReportExtractor, error) {
	if cfg == nil {
		return nil, domain.ErrAINotConfigured
	}
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, cfg.Provider)
	}
	return factory(cfg)
}
