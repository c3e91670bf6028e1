package domain

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single entry in a chat transcript. Messages are appended in
// chronological order and never changed afterwards.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Text    string    `json:"text"`
	Intent  string    `json:"intent,omitempty"`
	IsError bool      `json:"isError,omitempty"`
	At      time.Time `json:"at"`
}

// HasIntent reports whether the backend attached an intent label.
func (m Message) HasIntent() bool {
	return m.Intent != ""
}

// HistoryEntry is one prior turn as returned by the backend history endpoint.
type HistoryEntry struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
	Intent  string `json:"intent,omitempty"`
}

// SpeakerUser is the history speaker value for user-authored turns.
// Every other speaker ("assistant", "bot", ...) is treated as the bot.
const SpeakerUser = "user"

// RoleForSpeaker maps a history speaker onto a transcript role.
func RoleForSpeaker(speaker string) Role {
	if speaker == SpeakerUser {
		return RoleUser
	}
	return RoleBot
}
