package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixotrip/rescue-bot/internal/classifier"
	"github.com/fixotrip/rescue-bot/internal/models"
	"github.com/fixotrip/rescue-bot/internal/storage"
)

const (
	testSender = "628123456789"
	adminPhone = "628999999999"
)

type sentMessage struct {
	target string
	text   string
}

type fakeSender struct {
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, target, text string) error {
	if err, ok := f.failFor[target]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{target: target, text: text})
	return nil
}

func (f *fakeSender) sentTo(target string) []string {
	var texts []string
	for _, m := range f.sent {
		if m.target == target {
			texts = append(texts, m.text)
		}
	}
	return texts
}

func newTestEngine(t *testing.T, admin string) (*Engine, *storage.MemoryStorage, *fakeSender) {
	t.Helper()
	store := storage.NewMemoryStorage()
	sender := &fakeSender{failFor: map[string]error{}}
	engine := New(store, classifier.NewKeywordClassifier(), sender, admin, zap.NewNop())
	return engine, store, sender
}

func mustConversation(t *testing.T, store *storage.MemoryStorage, sender string) *models.Conversation {
	t.Helper()
	conv, err := store.GetOrCreate(context.Background(), sender)
	require.NoError(t, err)
	return conv
}

func TestFirstMessageAlwaysGreets(t *testing.T) {
	for _, text := range []string{"hello", "something random", "where is my refund"} {
		engine, store, sender := newTestEngine(t, "")

		require.NoError(t, engine.HandleMessage(context.Background(), testSender, text))

		conv := mustConversation(t, store, testSender)
		require.Equal(t, models.StateGreeted, conv.State, "text %q", text)
		require.Equal(t, 1, conv.MessageCount)
		require.Equal(t, []string{welcomeReply}, sender.sentTo(testSender))
	}
}

func TestGreetingIsIdempotent(t *testing.T) {
	engine, store, sender := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))
	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))

	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateGreeted, conv.State)
	require.Equal(t, 2, conv.MessageCount)
	require.Equal(t, []string{welcomeReply, welcomeReply}, sender.sentTo(testSender))
}

func TestGreetingTokenBeatsNewStateClassification(t *testing.T) {
	engine, store, sender := newTestEngine(t, "")

	// "help" is a greeting token even though the sender is new.
	require.NoError(t, engine.HandleMessage(context.Background(), testSender, "help please"))

	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateGreeted, conv.State)
	require.Equal(t, []string{welcomeReply}, sender.sentTo(testSender))
}

func TestFlightScenario(t *testing.T) {
	engine, store, sender := newTestEngine(t, adminPhone)
	ctx := context.Background()

	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))

	require.NoError(t, engine.HandleMessage(ctx, testSender, "My flight AB123 was cancelled yesterday"))
	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateCategorized, conv.State)
	require.Equal(t, models.CategoryFlight, conv.Category)

	flightReply, ok := classifier.ResponseFor(models.CategoryFlight)
	require.True(t, ok)
	replies := sender.sentTo(testSender)
	require.Equal(t, flightReply, replies[len(replies)-1])

	// 150 keyword-free characters: long enough to count as real detail.
	detail := strings.Repeat("x", 150)
	require.NoError(t, engine.HandleMessage(ctx, testSender, detail))

	conv = mustConversation(t, store, testSender)
	require.Equal(t, models.StateDetailsReceived, conv.State)
	require.Equal(t, models.CategoryFlight, conv.Category, "category sticks after detail handoff")

	replies = sender.sentTo(testSender)
	require.Equal(t, detailsReceivedReply, replies[len(replies)-1])

	notifications := sender.sentTo(adminPhone)
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0], "Category: Other")
	require.Contains(t, notifications[0], "From: "+testSender)
}

func TestVagueMessageKeepsState(t *testing.T) {
	engine, store, sender := newTestEngine(t, adminPhone)
	ctx := context.Background()

	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))
	require.NoError(t, engine.HandleMessage(ctx, testSender, "it's bad"))

	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateGreeted, conv.State)
	require.Equal(t, []string{welcomeReply, moreDetailsReply}, sender.sentTo(testSender))
	require.Empty(t, sender.sentTo(adminPhone))
}

func TestDetailsReceivedFlow(t *testing.T) {
	engine, store, sender := newTestEngine(t, adminPhone)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Conversation{
		Sender:   testSender,
		State:    models.StateDetailsReceived,
		Category: models.CategoryHotel,
	}))

	// More detail: acknowledged, admin notified, state unchanged.
	require.NoError(t, engine.HandleMessage(ctx, testSender, "I was moved from room 12 to room 48"))
	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateDetailsReceived, conv.State)
	require.Equal(t, additionalDetailsReply, sender.sentTo(testSender)[0])

	notifications := sender.sentTo(adminPhone)
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0], "ADDITIONAL INFO:")
	require.Contains(t, notifications[0], "Category: hotel")

	// No more detail: payment instructions go out.
	require.NoError(t, engine.HandleMessage(ctx, testSender, "ok"))
	conv = mustConversation(t, store, testSender)
	require.Equal(t, models.StateAwaitingPayment, conv.State)
	replies := sender.sentTo(testSender)
	require.Equal(t, paymentInstructionsReply, replies[len(replies)-1])
}

func TestAwaitingPaymentReminder(t *testing.T) {
	engine, store, sender := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Conversation{
		Sender: testSender,
		State:  models.StateAwaitingPayment,
	}))

	require.NoError(t, engine.HandleMessage(ctx, testSender, "ok"))

	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateAwaitingPayment, conv.State)
	replies := sender.sentTo(testSender)
	require.Len(t, replies, 1)
	require.Equal(t, paymentReminderReply, replies[0])
	require.Contains(t, replies[0], "https://www.paypal.com/ncp/payment/K8PSJVA9EJL2J")
}

func TestPaymentConfirmationOverridesEveryState(t *testing.T) {
	states := []models.State{
		models.StateNew,
		models.StateGreeted,
		models.StateCategorized,
		models.StateDetailsReceived,
		models.StateAwaitingPayment,
		models.StatePaid,
	}
	for _, state := range states {
		engine, store, sender := newTestEngine(t, adminPhone)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, &models.Conversation{
			Sender:   testSender,
			State:    state,
			Category: models.CategoryFlight,
		}))

		require.NoError(t, engine.HandleMessage(ctx, testSender, "I already paid"))

		conv := mustConversation(t, store, testSender)
		require.Equal(t, models.StatePaid, conv.State, "from state %s", state)
		require.Equal(t, []string{paymentThanksReply}, sender.sentTo(testSender))

		notifications := sender.sentTo(adminPhone)
		require.Len(t, notifications, 1)
		require.Contains(t, notifications[0], "PAYMENT CONFIRMATION: I already paid")
		require.Contains(t, notifications[0], "Category: flight")
	}
}

func TestPaidConversationStaysSilent(t *testing.T) {
	engine, store, sender := newTestEngine(t, adminPhone)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Conversation{
		Sender:       testSender,
		State:        models.StatePaid,
		MessageCount: 5,
	}))

	require.NoError(t, engine.HandleMessage(ctx, testSender, "anything else I should know"))

	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StatePaid, conv.State)
	require.Equal(t, 6, conv.MessageCount, "the turn is still recorded")
	require.Empty(t, sender.sent)
}

func TestAdminNotificationTruncation(t *testing.T) {
	engine, _, sender := newTestEngine(t, adminPhone)
	ctx := context.Background()

	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))

	long := strings.Repeat("y", 250)
	require.NoError(t, engine.HandleMessage(ctx, testSender, long))

	notifications := sender.sentTo(adminPhone)
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0], strings.Repeat("y", 200)+"...")
	require.NotContains(t, notifications[0], strings.Repeat("y", 201))
}

func TestNoAdminConfigured(t *testing.T) {
	engine, _, sender := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))
	require.NoError(t, engine.HandleMessage(ctx, testSender, strings.Repeat("z", 150)))

	for _, m := range sender.sent {
		require.Equal(t, testSender, m.target)
	}
}

func TestAdminFailureDoesNotBlockReply(t *testing.T) {
	engine, store, sender := newTestEngine(t, adminPhone)
	sender.failFor[adminPhone] = errors.New("gateway down")
	ctx := context.Background()

	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))
	require.NoError(t, engine.HandleMessage(ctx, testSender, strings.Repeat("z", 150)))

	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateDetailsReceived, conv.State)
	replies := sender.sentTo(testSender)
	require.Equal(t, detailsReceivedReply, replies[len(replies)-1])
}

func TestDeliveryFailureSurfacesAfterStateCommit(t *testing.T) {
	engine, store, sender := newTestEngine(t, "")
	sender.failFor[testSender] = errors.New("gateway down")
	ctx := context.Background()

	err := engine.HandleMessage(ctx, testSender, "hello")
	require.Error(t, err)

	// State advanced even though the reply was lost.
	conv := mustConversation(t, store, testSender)
	require.Equal(t, models.StateGreeted, conv.State)
	require.Equal(t, 1, conv.MessageCount)
}

func TestTurnTouchesLastMessageAt(t *testing.T) {
	engine, store, _ := newTestEngine(t, "")
	ctx := context.Background()

	before := time.Now()
	require.NoError(t, engine.HandleMessage(ctx, testSender, "hello"))

	conv := mustConversation(t, store, testSender)
	require.False(t, conv.LastMessageAt.Before(before))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "abcde", truncate("abcde", 5))
	require.Equal(t, "abcde...", truncate("abcdef", 5))
	require.Equal(t, "héllo...", truncate("héllo wörld", 5))
}
