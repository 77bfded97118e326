// README: Archived itinerary generated for a conversation.
package itinerary

import "time"

type Record struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UID            string    `json:"uid,omitempty"`
	Destination    string    `json:"destination"`
	Prompt         string    `json:"-"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
