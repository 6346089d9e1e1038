package classifier

import (
	"strings"

	"github.com/fixotrip/rescue-bot/internal/models"
)

// Classifier assigns a problem category to free-form message text.
type Classifier interface {
	Classify(text string) (models.Category, bool)
}

// CategoryDefinition couples a category with its trigger keywords and the
// scripted reply sent back when the category matches.
type CategoryDefinition struct {
	Category models.Category
	Keywords []string
	Response string
}

// Categories is the fixed, ordered category table. Order matters: when a
// message contains keywords from several categories, the first entry here
// wins, so this must stay a slice rather than a map.
var Categories = []CategoryDefinition{
	{
		Category: models.CategoryFlight,
		Keywords: []string{"flight", "cancelled", "canceled", "delayed", "airline", "boarding", "missed flight", "connection", "layover", "airport"},
		Response: `✈️ *Flight Emergency*

I can help with flight issues! To assist you quickly, please share:

1️⃣ Airline name
2️⃣ Flight number
3️⃣ Date of flight
4️⃣ What happened (cancelled/delayed/denied boarding)
5️⃣ Where are you now?

Once I have these details, I'll find the best solution for you.

💰 *Fee: $19 via PayPal (only if we can help)*`,
	},
	{
		Category: models.CategoryLuggage,
		Keywords: []string{"luggage", "baggage", "bag", "lost", "delayed bag", "suitcase", "missing luggage"},
		Response: `🧳 *Lost/Delayed Luggage*

Sorry about your luggage! To help you:

1️⃣ Which airline?
2️⃣ Flight number
3️⃣ Do you have a PIR number? (Property Irregularity Report from the airline)
4️⃣ What was in the bag? (brief description)
5️⃣ Where are you staying?

I'll guide you through getting compensation and tracking your bag.

💰 *Fee: $19 via PayPal (only if we can help)*`,
	},
	{
		Category: models.CategoryHotel,
		Keywords: []string{"hotel", "airbnb", "booking", "reservation", "room", "accommodation", "check-in", "overbooked"},
		Response: `🏨 *Hotel/Accommodation Problem*

I can help resolve this! Please tell me:

1️⃣ Hotel/Airbnb name
2️⃣ Booking platform (Booking.com, Airbnb, direct, etc.)
3️⃣ Check-in date
4️⃣ What's the problem?
5️⃣ Do you have a confirmation number?

I'll help you get a solution or refund.

💰 *Fee: $19 via PayPal (only if we can help)*`,
	},
	{
		Category: models.CategoryVisa,
		Keywords: []string{"visa", "immigration", "passport", "border", "denied entry", "customs"},
		Response: `🛂 *Visa/Immigration Issue*

This can be stressful. Please share:

1️⃣ Your nationality
2️⃣ Which country are you trying to enter?
3️⃣ What happened at immigration?
4️⃣ Do you have a valid visa/travel authorization?

I'll advise on your options.

💰 *Fee: $19 via PayPal (only if we can help)*`,
	},
	{
		Category: models.CategoryMedical,
		Keywords: []string{"sick", "hospital", "doctor", "medical", "emergency", "injured", "pharmacy", "medicine"},
		Response: `🏥 *Medical Emergency*

If this is a life-threatening emergency, please call local emergency services first!

For non-urgent medical help, tell me:

1️⃣ Where are you? (city/country)
2️⃣ What's the medical issue?
3️⃣ Do you have travel insurance?

I'll help you find medical care and navigate insurance.

💰 *Fee: $19 via PayPal (only if we can help)*`,
	},
	{
		Category: models.CategoryScam,
		Keywords: []string{"scam", "scammed", "stolen", "robbed", "theft", "pickpocket", "fraud"},
		Response: `🚨 *Scam/Theft Report*

I'm sorry this happened. Let me help:

1️⃣ Where are you? (city/country)
2️⃣ What happened?
3️⃣ What was taken? (passport, money, cards, etc.)
4️⃣ Have you contacted local police?

I'll guide you through reporting and recovery.

💰 *Fee: $19 via PayPal (only if we can help)*`,
	},
}

// ResponseFor returns the scripted reply for a category.
func ResponseFor(category models.Category) (string, bool) {
	for _, def := range Categories {
		if def.Category == category {
			return def.Response, true
		}
	}
	return "", false
}

// KeywordClassifier matches messages against the fixed keyword table.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify returns the first category in declaration order with any keyword
// appearing as a case-insensitive substring of text.
func (c *KeywordClassifier) Classify(text string) (models.Category, bool) {
	lower := strings.ToLower(text)
	for _, def := range Categories {
		for _, keyword := range def.Keywords {
			if strings.Contains(lower, keyword) {
				return def.Category, true
			}
		}
	}
	return "", false
}
