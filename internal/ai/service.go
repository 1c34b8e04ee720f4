package ai

import (
	"fmt"

	"hirelens/internal/config"
	"hirelens/internal/errors"
	"hirelens/internal/observability"
)

// NewProvider creates the completion provider configured for one operation
func NewProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger, metrics *observability.Metrics) (Provider, error) {
	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	switch cfg.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(cfg, operationType, logger, metrics)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create AI provider", err)
		}
		return provider, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}
