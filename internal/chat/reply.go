package chat

import (
	"encoding/json"
	"strings"
)

type ReplyKind int

const (
	ReplyNone ReplyKind = iota
	ReplyConversation
	ReplyMessageString
	ReplyMessageContent
	ReplyText
	ReplyResponse
	ReplyError
)

const NoResponseText = "(No response)"

func (k ReplyKind) String() string {
	switch k {
	case ReplyConversation:
		return "conversation"
	case ReplyMessageString:
		return "message"
	case ReplyMessageContent:
		return "message.content"
	case ReplyText:
		return "text"
	case ReplyResponse:
		return "response"
	case ReplyError:
		return "error"
	default:
		return "none"
	}
}

// Reply is a decoded chat backend reply.
// The zero value is ReplyNone.
type Reply struct {
	kind ReplyKind
	text string
}

func (r Reply) Kind() ReplyKind {
	return r.kind
}

// Text is the assistant text to display, or NoResponseText when nothing was recognized
func (r Reply) Text() string {
	if r.kind == ReplyNone {
		return NoResponseText
	}
	return r.text
}

type contentPart struct {
	Text string `json:"text"`
}

type conversationEntry struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Text    string          `json:"text"`
}

type rawReply struct {
	Success      *bool           `json:"success"`
	Error        json.RawMessage `json:"error"`
	Conversation json.RawMessage `json:"conversation"`
	Message      json.RawMessage `json:"message"`
	Text         json.RawMessage `json:"text"`
	Response     json.RawMessage `json:"response"`
}

func joinContent(raw json.RawMessage) string {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	texts := make([]string, 0, len(parts))
	for _, rawPart := range parts {
		var part contentPart
		if err := json.Unmarshal(rawPart, &part); err != nil {
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func fromConversation(raw json.RawMessage) string {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		return ""
	}

	// The backend echoes the conversation it was sent, so only a trailing assistant entry is a reply
	var entry conversationEntry
	if err := json.Unmarshal(entries[len(entries)-1], &entry); err != nil {
		return ""
	}
	if entry.Role != "assistant" {
		return ""
	}
	if text := joinContent(entry.Content); text != "" {
		return text
	}
	return entry.Text
}

// DecodeReply recognizes the reply shapes the chat backend is known to send.
// An explicit `"success": false` is an error reply.
// Otherwise shapes are tried in order and the first one yielding text wins.
func DecodeReply(body []byte) Reply {
	var raw rawReply
	if err := json.Unmarshal(body, &raw); err != nil {
		return Reply{kind: ReplyNone}
	}

	if raw.Success != nil && !*raw.Success {
		message := asString(raw.Error)
		if message == "" {
			message = "the chat backend did not answer"
		}
		return Reply{kind: ReplyError, text: "Error: " + message}
	}

	if text := fromConversation(raw.Conversation); text != "" {
		return Reply{kind: ReplyConversation, text: text}
	}

	if text := asString(raw.Message); text != "" {
		return Reply{kind: ReplyMessageString, text: text}
	}

	var message struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw.Message, &message); err == nil {
		if text := joinContent(message.Content); text != "" {
			return Reply{kind: ReplyMessageContent, text: text}
		}
	}

	if text := asString(raw.Text); text != "" {
		return Reply{kind: ReplyText, text: text}
	}

	if text := asString(raw.Response); text != "" {
		return Reply{kind: ReplyResponse, text: text}
	}

	return Reply{kind: ReplyNone}
}
