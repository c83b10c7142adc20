package app

import (
	"context"
	"encoding/json"

	"github.com/Amund211/riftrewind/internal/chat"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/session"
)

// SendChatMessage sends text to the chat of the session, using the session's current recap as context.
// Returns the turns appended to the chat.
type SendChatMessage func(ctx context.Context, sess *session.Session, text string, observe chat.TurnObserver) ([]domain.ChatTurn, error)

func BuildSendChatMessage() SendChatMessage {
	return func(ctx context.Context, sess *session.Session, text string, observe chat.TurnObserver) ([]domain.ChatTurn, error) {
		var stats json.RawMessage
		if recap, ok := sess.Current(); ok {
			stats = recap.Payload
		}

		return sess.Chat.Send(ctx, text, stats, observe)
	}
}
