package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"reikningar/internal/core"
	"reikningar/internal/log"
)

// Assistant answers questions about the user's finances, carrying the
// conversation across calls.
type Assistant struct {
	Completer    Completer
	History      *History
	SystemPrompt string
	MaxTurns     int
	MaxRecords   int
	Logger       *log.Logger

	mu sync.Mutex
}

// New returns an Assistant with an empty history and default bounds.
func New(c Completer, logger *log.Logger) *Assistant {
	if logger == nil {
		logger = log.Discard()
	}
	return &Assistant{
		Completer:    c,
		History:      &History{},
		SystemPrompt: SystemPrompt,
		MaxTurns:     DefaultMaxTurns,
		MaxRecords:   DefaultMaxRecords,
		Logger:       logger.WithComponent(log.ComponentAssistant),
	}
}

// Ask appends question to the history, sends the grounded prompt and records
// the reply. When the completion fails the question is removed again so the
// history only holds answered turns.
func (a *Assistant) Ask(ctx context.Context, question string, bills []core.Bill, txs []core.Transaction) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", core.ErrMalformedInput)
	}
	if a.Completer == nil {
		return "", errors.New("assistant has no completer")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	userTurn := Turn{Role: RoleUser, Content: question}
	a.History.Append(userTurn)

	prompt := BuildPrompt(a.SystemPrompt, BuildContext(bills, txs, a.MaxRecords), a.History.Turns(), a.MaxTurns)
	a.Logger.DebugContext(ctx, "Sending prompt",
		log.FieldOperation, log.OpAsk,
		"prompt_bytes", len(prompt),
		"turns", a.History.Len(),
	)

	reply, err := a.Completer.Complete(ctx, prompt)
	if err != nil {
		a.History.dropLast(userTurn)
		a.Logger.ErrorContext(ctx, "Completion failed", log.FieldOperation, log.OpAsk, log.FieldError, err.Error())
		return "", err
	}

	a.History.Append(Turn{Role: RoleAssistant, Content: reply})
	return reply, nil
}
