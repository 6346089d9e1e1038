package intent

import "strings"

var greetings = []string{"hi", "hello", "hey", "help", "halo", "hai", "hola", "start", "menu"}

var paymentConfirmations = []string{"paid", "done", "sent", "transferred", "sudah bayar", "sudah transfer"}

// IsGreeting reports whether the message is a greeting token, alone or
// followed by a space or comma.
func IsGreeting(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, g := range greetings {
		if lower == g || strings.HasPrefix(lower, g+" ") || strings.HasPrefix(lower, g+",") {
			return true
		}
	}
	return false
}

// HasEnoughDetail reports whether a message looks specific enough to hand to
// an agent: long text, at least two numbers (flight numbers, dates), or the
// words "from"/"to". The substring checks match inside other words too; that
// looseness is part of the contract and tests pin it down.
func HasEnoughDetail(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if len(lower) > 100 {
		return true
	}
	if countNumericTokens(lower) >= 2 {
		return true
	}
	return strings.Contains(lower, "from") || strings.Contains(lower, "to")
}

// IsPaymentConfirmation reports whether the message contains any payment
// confirmation phrase.
func IsPaymentConfirmation(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range paymentConfirmations {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// countNumericTokens counts maximal runs of digits.
func countNumericTokens(text string) int {
	count := 0
	inNumber := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			if !inNumber {
				count++
				inNumber = true
			}
		} else {
			inNumber = false
		}
	}
	return count
}
