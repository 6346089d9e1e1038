package models

import "time"

// State is the stage of a multi-turn conversation with one traveler.
type State string

const (
	StateNew             State = "new"
	StateGreeted         State = "greeted"
	StateCategorized     State = "categorized"
	StateDetailsReceived State = "details_received"
	StateAwaitingPayment State = "awaiting_payment"
	StatePaid            State = "paid"
)

// Category is one of the fixed travel-emergency problem types.
// The empty string means the conversation has not been categorized yet.
type Category string

const (
	CategoryFlight  Category = "flight"
	CategoryLuggage Category = "luggage"
	CategoryHotel   Category = "hotel"
	CategoryVisa    Category = "visa"
	CategoryMedical Category = "medical"
	CategoryScam    Category = "scam"
)

// Conversation tracks one sender's progress through the rescue flow.
type Conversation struct {
	Sender        string    `json:"sender"`
	State         State     `json:"state"`
	Category      Category  `json:"category,omitempty"`
	MessageCount  int       `json:"message_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}
