package chat

import (
	"slices"
	"sync"

	"github.com/Amund211/riftrewind/internal/domain"
)

// Log is an append-only, ordered list of chat turns
type Log struct {
	lock  sync.Mutex
	turns []domain.ChatTurn
}

func (l *Log) Append(turn domain.ChatTurn) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.turns = append(l.turns, turn)
}

// Turns returns a copy of the log
func (l *Log) Turns() []domain.ChatTurn {
	l.lock.Lock()
	defer l.lock.Unlock()

	return slices.Clone(l.turns)
}

func (l *Log) Len() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return len(l.turns)
}

func (l *Log) reset() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.turns = nil
}
