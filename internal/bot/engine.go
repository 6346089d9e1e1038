package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fixotrip/rescue-bot/internal/classifier"
	"github.com/fixotrip/rescue-bot/internal/intent"
	"github.com/fixotrip/rescue-bot/internal/models"
	"github.com/fixotrip/rescue-bot/internal/storage"
)

// maxNotificationRunes caps the message excerpt quoted in admin alerts.
const maxNotificationRunes = 200

// Sender delivers a text message to a recipient. Implemented by the Fonnte
// client.
type Sender interface {
	Send(ctx context.Context, target, message string) error
}

// Engine drives one conversational turn per inbound message: it classifies
// the message, advances the conversation state, sends the scripted reply and
// alerts the admin when a case needs a human.
type Engine struct {
	storage    storage.Storage
	classifier classifier.Classifier
	sender     Sender
	logger     *zap.Logger
	adminPhone string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store storage.Storage, clf classifier.Classifier, sender Sender, adminPhone string, logger *zap.Logger) *Engine {
	return &Engine{
		storage:    store,
		classifier: clf,
		sender:     sender,
		logger:     logger,
		adminPhone: adminPhone,
		locks:      make(map[string]*sync.Mutex),
	}
}

// adminNote is a pending operator notification for the current turn.
type adminNote struct {
	message  string
	category string
}

// HandleMessage runs one turn for an inbound message and sends the reply.
// Turns are serialized per sender so the read-decide-write sequence is
// atomic; turns for different senders run concurrently. State is saved
// before delivery is attempted, so a delivery failure leaves the advanced
// state in place.
func (e *Engine) HandleMessage(ctx context.Context, sender, text string) error {
	lock := e.senderLock(sender)
	lock.Lock()
	defer lock.Unlock()

	eventID := uuid.New().String()

	conv, err := e.storage.GetOrCreate(ctx, sender)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	conv.MessageCount++
	conv.LastMessageAt = time.Now()

	reply, note := e.decide(conv, text)

	if err := e.storage.Save(ctx, conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}

	if note != nil {
		e.notifyAdmin(ctx, sender, note.message, note.category, eventID)
	}

	if reply == "" {
		// Paid conversations only react to payment confirmations.
		e.logger.Debug("No reply branch matched",
			zap.String("sender", sender),
			zap.String("state", string(conv.State)),
			zap.String("event_id", eventID))
		return nil
	}

	if err := e.sender.Send(ctx, sender, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// decide mutates conv according to the transition table and returns the
// reply plus any pending admin notification. The guards form a first-match
// chain; their order is part of the contract.
func (e *Engine) decide(conv *models.Conversation, text string) (string, *adminNote) {
	switch {
	case intent.IsPaymentConfirmation(text):
		conv.State = models.StatePaid
		return paymentThanksReply, &adminNote{
			message:  "PAYMENT CONFIRMATION: " + text,
			category: string(conv.Category),
		}

	case intent.IsGreeting(text) || conv.State == models.StateNew:
		// A greeting always restarts from the menu, even mid-flow.
		conv.State = models.StateGreeted
		return welcomeReply, nil

	case conv.State == models.StateGreeted || conv.State == models.StateCategorized:
		if category, ok := e.classifier.Classify(text); ok {
			conv.Category = category
			conv.State = models.StateCategorized
			response, _ := classifier.ResponseFor(category)
			return response, nil
		}
		if intent.HasEnoughDetail(text) {
			conv.State = models.StateDetailsReceived
			return detailsReceivedReply, &adminNote{message: text, category: "Other"}
		}
		return moreDetailsReply, nil

	case conv.State == models.StateDetailsReceived:
		if intent.HasEnoughDetail(text) {
			return additionalDetailsReply, &adminNote{
				message:  "ADDITIONAL INFO: " + text,
				category: string(conv.Category),
			}
		}
		conv.State = models.StateAwaitingPayment
		return paymentInstructionsReply, nil

	case conv.State == models.StateAwaitingPayment:
		return paymentReminderReply, nil
	}

	return "", nil
}

// notifyAdmin alerts the configured operator number. A failed alert is
// logged but never blocks the user-facing reply.
func (e *Engine) notifyAdmin(ctx context.Context, sender, message, category, eventID string) {
	if e.adminPhone == "" {
		return
	}
	if category == "" {
		category = "Uncategorized"
	}

	notification := fmt.Sprintf(adminNotificationTemplate, sender, category, truncate(message, maxNotificationRunes))
	if err := e.sender.Send(ctx, e.adminPhone, notification); err != nil {
		e.logger.Error("Failed to notify admin",
			zap.Error(err),
			zap.String("sender", sender),
			zap.String("event_id", eventID))
	}
}

// senderLock returns the mutex serializing turns for one sender. The lock
// map is never shrunk; entries are a mutex each and senders number in the
// hundreds at most.
func (e *Engine) senderLock(sender string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, exists := e.locks[sender]
	if !exists {
		lock = &sync.Mutex{}
		e.locks[sender] = lock
	}
	return lock
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
