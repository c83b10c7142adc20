package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
)

type Sender interface {
	SendChat(ctx context.Context, stats json.RawMessage, conversation []domain.ChatTurn) ([]byte, error)
}

// TurnObserver is called for every turn appended by Send, in order
type TurnObserver func(turn domain.ChatTurn)

// Widget is the chat attached to one page session.
// At most one message is in flight at a time.
type Widget struct {
	sender Sender
	log    Log

	lock       sync.Mutex
	awaiting   bool
	generation uint64
}

func NewWidget(sender Sender) *Widget {
	return &Widget{sender: sender}
}

func (w *Widget) Turns() []domain.ChatTurn {
	return w.log.Turns()
}

func (w *Widget) Awaiting() bool {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.awaiting
}

func assistantTurnFor(body []byte, err error) domain.ChatTurn {
	if err == nil {
		return domain.ChatTurn{Role: domain.ChatRoleAssistant, Text: DecodeReply(body).Text()}
	}

	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		return domain.ChatTurn{
			Role: domain.ChatRoleAssistant,
			Text: fmt.Sprintf("Error: %d %s", backendErr.StatusCode, backendErr.Body),
		}
	}

	return domain.ChatTurn{
		Role: domain.ChatRoleAssistant,
		Text: fmt.Sprintf("Request failed: %s", err.Error()),
	}
}

// Send appends the user turn, sends the whole conversation with stats as context
// and appends exactly one assistant turn with the reply or the failure.
// Blank messages are ignored. Returns the turns appended by this call.
func (w *Widget) Send(ctx context.Context, text string, stats json.RawMessage, observe TurnObserver) ([]domain.ChatTurn, error) {
	if observe == nil {
		observe = func(domain.ChatTurn) {}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if len(stats) == 0 {
		return nil, domain.ErrNoRecapContext
	}

	w.lock.Lock()
	if w.awaiting {
		w.lock.Unlock()
		return nil, domain.ErrAwaitingReply
	}
	w.awaiting = true
	generation := w.generation

	userTurn := domain.ChatTurn{Role: domain.ChatRoleUser, Text: text}
	w.log.Append(userTurn)
	conversation := w.log.Turns()
	w.lock.Unlock()

	observe(userTurn)

	// The reply belongs to the session, not to the request that asked for it
	body, err := w.sender.SendChat(context.WithoutCancel(ctx), stats, conversation)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Chat request failed", slog.String("error", err.Error()))
	}
	assistantTurn := assistantTurnFor(body, err)

	w.lock.Lock()
	if w.generation != generation {
		w.lock.Unlock()
		logging.FromContext(ctx).InfoContext(ctx, "Dropping chat reply after reset")
		return nil, nil
	}
	w.awaiting = false
	w.log.Append(assistantTurn)
	w.lock.Unlock()

	observe(assistantTurn)

	return []domain.ChatTurn{userTurn, assistantTurn}, nil
}

// Reset empties the log. A reply still in flight is discarded when it arrives.
func (w *Widget) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.generation++
	w.awaiting = false
	w.log.reset()
}
