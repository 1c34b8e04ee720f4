package agents

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"hirelens/internal/ai"
	"hirelens/internal/errors"
)

const resumePreamble = "\n\nAnalyze the following resume:\n\n"

var errEmptyReply = stderrors.New("empty response from model")

// AgentInvoker runs one persona over one resume text
type AgentInvoker interface {
	Invoke(ctx context.Context, persona Persona, augmentedText string) (string, error)
}

// BuildPrompt joins a persona instruction and the resume text
func BuildPrompt(instruction, augmentedText string) string {
	return instruction + resumePreamble + augmentedText
}

// Invoker sends persona prompts to the completion provider. Each call
// is made exactly once; retries are the provider's concern.
type Invoker struct {
	provider ai.Provider
	timeout  time.Duration
	logger   *errors.Logger
}

var _ AgentInvoker = (*Invoker)(nil)

// NewInvoker creates an invoker with a per-call timeout. A zero timeout
// leaves the caller's deadline in charge.
func NewInvoker(provider ai.Provider, timeout time.Duration, logger *errors.Logger) *Invoker {
	return &Invoker{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Invoke returns the model's reply verbatim. Any failure, including a
// blank reply, is a model invocation error.
func (i *Invoker) Invoke(ctx context.Context, persona Persona, augmentedText string) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	completion, err := i.provider.Complete(ctx, BuildPrompt(persona.Instruction, augmentedText))
	if err != nil {
		return "", errors.NewModelInvocationError(persona.ID, err)
	}
	if completion == nil || strings.TrimSpace(completion.Text) == "" {
		return "", errors.NewModelInvocationError(persona.ID, errEmptyReply)
	}

	if completion.TokenUsage != nil {
		i.logger.Debug("Agent completion received",
			"agent_id", persona.ID,
			"model", completion.Model,
			"input_tokens", completion.TokenUsage.InputTokens,
			"output_tokens", completion.TokenUsage.OutputTokens)
	}

	return completion.Text, nil
}
