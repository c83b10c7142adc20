package domain

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role ChatRole
	Text string
}
