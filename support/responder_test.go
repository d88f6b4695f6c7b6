package support_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate/id"
	"github.com/xraph/digigate/support"
)

func TestRespond(t *testing.T) {
	r := support.NewResponder()
	ctx := context.Background()

	tests := []struct {
		name     string
		message  string
		contains string
		escalate bool
	}{
		{"french download upper case", "J'ai un problème de TÉLÉCHARGEMENT", "difficultés avec le téléchargement", false},
		{"first keyword wins", "download and payment", "download issues", false},
		{"payment", "Payment failed", "For payment issues", false},
		{"application before app", "mon application plante", "problèmes d'application", false},
		{"app", "the app crashes", "For app issues", false},
		{"subscription", "my subscription", "About your subscription", false},
		{"escalation", "I want a human", "agent humain", true},
		{"keyword beats escalation", "urgent help with my account", "For account issues", false},
		{"fallback", "hello", "plus de détails", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Respond(ctx, tt.message)
			assert.Contains(t, res.Message, tt.contains)
			assert.Equal(t, tt.escalate, res.EscalateToHuman)
		})
	}
}

func TestRespondConfidence(t *testing.T) {
	r := support.NewResponder()
	ctx := context.Background()

	assert.InDelta(t, 0.95, r.Respond(ctx, "personne ne répond").Confidence, 1e-9)
	assert.InDelta(t, 0.5, r.Respond(ctx, "bonjour").Confidence, 1e-9)
	assert.InDelta(t, 0.75, r.Respond(ctx, "app").Confidence, 1e-9)
}

func TestRespondReturnsCopies(t *testing.T) {
	r := support.NewResponder()
	ctx := context.Background()

	first := r.Respond(ctx, "download")
	require.NotEmpty(t, first.Suggestions)
	first.Suggestions[0] = "changed"

	second := r.Respond(ctx, "download")
	assert.Equal(t, "Connection issue", second.Suggestions[0])
}

func TestQuickRepliesRoute(t *testing.T) {
	r := support.NewResponder()
	ctx := context.Background()

	replies := r.QuickReplies()
	require.Len(t, replies, 5)

	assert.Contains(t, r.Respond(ctx, replies[0]).Message, "téléchargement")
	assert.Contains(t, r.Respond(ctx, replies[1]).Message, "paiement")
	assert.Contains(t, r.Respond(ctx, replies[2]).Message, "abonnement")
	assert.False(t, r.Respond(ctx, replies[3]).EscalateToHuman)
	assert.True(t, r.Respond(ctx, replies[4]).EscalateToHuman)

	replies[0] = "changed"
	assert.Equal(t, "Problème de téléchargement", r.QuickReplies()[0])
}

func TestWelcomeAndReply(t *testing.T) {
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	r := support.NewResponder(support.WithClock(clockwork.NewFakeClockAt(at)))

	welcome := r.WelcomeMessage()
	assert.True(t, welcome.System)
	assert.Equal(t, support.AssistantID, welcome.User.ID)
	assert.Equal(t, at, welcome.CreatedAt)
	assert.Equal(t, id.PrefixMessage, welcome.ID.Prefix())
	assert.True(t, strings.HasPrefix(welcome.Text, "Bonjour"))

	msg, res := r.Reply(context.Background(), "parler à une personne")
	assert.False(t, msg.System)
	assert.True(t, res.EscalateToHuman)
	assert.Equal(t, res.Message, msg.Text)
	assert.NotEqual(t, welcome.ID, msg.ID)
}
