// Package events carries domain events from the game engine to presentation layers.
//
// Subscribers receive events on a buffered channel. Publishing never blocks: a subscriber
// whose buffer is full misses the event, so a stalled view cannot hold up gameplay.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Subject names an event kind.
type Subject string

const (
	RoundStarted        Subject = "round.started"
	GuessScored         Subject = "guess.scored"
	RoundWon            Subject = "round.won"
	RoundLost           Subject = "round.lost"
	AchievementUnlocked Subject = "achievement.unlocked"
	LeaderboardChanged  Subject = "leaderboard.changed"
	AccountCreated      Subject = "account.created"
	AccountRemoved      Subject = "account.removed"
	PlayerLogin         Subject = "player.login"
	PlayerLogout        Subject = "player.logout"
)

// Event is one domain occurrence. Payload is a subject-specific value safe to encode as JSON.
type Event struct {
	Subject  Subject   `json:"subject"`
	Username string    `json:"username,omitempty"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

// Bus fans events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

// NewBus returns a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given channel buffer.
// The returned cancel func unregisters it and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			log.Warn().Int("subscriber", id).Str("subject", string(e.Subject)).Msg("event dropped, subscriber full")
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
