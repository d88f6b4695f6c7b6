// Package support answers support chat messages from a fixed keyword table
// and flags conversations that should go to a human agent.
package support

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/digigate/id"
)

type entry struct {
	keyword  string
	response Response
}

// Matched in order; the first keyword contained in the message wins.
var answers = []entry{
	{"téléchargement", Response{
		Message: "Je comprends que vous avez des difficultés avec le téléchargement. Voici quelques solutions :\n\n" +
			"1. Vérifiez votre connexion internet\n2. Essayez de rafraîchir la page\n3. Videz le cache de votre navigateur\n\n" +
			"Si le problème persiste, je peux vous mettre en contact avec notre équipe technique.",
		Confidence:  0.9,
		Suggestions: []string{"Problème de connexion", "Cache du navigateur", "Contacter le support"},
	}},
	{"download", Response{
		Message: "I understand you're having download issues. Here are some solutions:\n\n" +
			"1. Check your internet connection\n2. Try refreshing the page\n3. Clear your browser cache\n\n" +
			"If the problem persists, I can connect you with our technical team.",
		Confidence:  0.9,
		Suggestions: []string{"Connection issue", "Browser cache", "Contact support"},
	}},
	{"paiement", Response{
		Message: "Pour les problèmes de paiement :\n\n" +
			"1. Vérifiez que votre carte n'est pas expirée\n2. Assurez-vous d'avoir suffisamment de fonds\n3. Contactez votre banque si nécessaire\n\n" +
			"Nous acceptons : Cartes bancaires, PayPal, Orange Money, MTN MoMo, Wave et Bitcoin.",
		Confidence:  0.85,
		Suggestions: []string{"Carte expirée", "Fonds insuffisants", "Autres moyens de paiement"},
	}},
	{"payment", Response{
		Message: "For payment issues:\n\n" +
			"1. Check that your card is not expired\n2. Ensure you have sufficient funds\n3. Contact your bank if necessary\n\n" +
			"We accept: Bank cards, PayPal, Orange Money, MTN MoMo, Wave and Bitcoin.",
		Confidence:  0.85,
		Suggestions: []string{"Expired card", "Insufficient funds", "Other payment methods"},
	}},
	{"compte", Response{
		Message: "Pour les problèmes de compte :\n\n" +
			"1. Vérifiez votre email de confirmation\n2. Essayez de réinitialiser votre mot de passe\n3. Vérifiez vos spams\n\n" +
			"Votre compte est-il vérifié ?",
		Confidence:  0.8,
		Suggestions: []string{"Email de confirmation", "Réinitialiser mot de passe", "Vérifier spams"},
	}},
	{"account", Response{
		Message: "For account issues:\n\n" +
			"1. Check your confirmation email\n2. Try resetting your password\n3. Check your spam folder\n\n" +
			"Is your account verified?",
		Confidence:  0.8,
		Suggestions: []string{"Confirmation email", "Reset password", "Check spam"},
	}},
	{"application", Response{
		Message: "Pour les problèmes d'application :\n\n" +
			"1. Fermez et rouvrez l'application\n2. Vérifiez les mises à jour disponibles\n3. Redémarrez votre appareil\n\n" +
			"Quel type de problème rencontrez-vous exactement ?",
		Confidence:  0.75,
		Suggestions: []string{"Redémarrer l'app", "Mise à jour", "Redémarrer appareil"},
	}},
	{"app", Response{
		Message: "For app issues:\n\n" +
			"1. Close and reopen the app\n2. Check for available updates\n3. Restart your device\n\n" +
			"What type of problem are you experiencing exactly?",
		Confidence:  0.75,
		Suggestions: []string{"Restart app", "Update", "Restart device"},
	}},
	{"abonnement", Response{
		Message: "Concernant votre abonnement :\n\n" +
			"• Période d'essai : 7 jours gratuits\n• Plans disponibles : Basique (9.99€), Premium (19.99€), Entreprise (49.99€)\n• Annulation possible à tout moment\n\n" +
			"Que souhaitez-vous savoir sur votre abonnement ?",
		Confidence:  0.9,
		Suggestions: []string{"Changer de plan", "Annuler abonnement", "Facturation"},
	}},
	{"subscription", Response{
		Message: "About your subscription:\n\n" +
			"• Trial period: 7 days free\n• Available plans: Basic (€9.99), Premium (€19.99), Enterprise (€49.99)\n• Cancellation possible anytime\n\n" +
			"What would you like to know about your subscription?",
		Confidence:  0.9,
		Suggestions: []string{"Change plan", "Cancel subscription", "Billing"},
	}},
}

var escalationKeywords = []string{"humain", "human", "agent", "personne", "person", "urgent", "important"}

var escalation = Response{
	Message: "Je comprends que vous souhaitez parler à un agent humain. Je vais transférer votre demande à notre équipe de support. " +
		"Un agent vous contactera dans les plus brefs délais.",
	Confidence:      0.95,
	EscalateToHuman: true,
}

var fallback = Response{
	Message: "Je comprends votre préoccupation. Pouvez-vous me donner plus de détails sur le problème que vous rencontrez ? " +
		"Je suis là pour vous aider avec :\n\n" +
		"• Problèmes de téléchargement\n• Questions de paiement\n• Gestion de compte\n• Problèmes techniques\n• Questions d'abonnement",
	Confidence:  0.5,
	Suggestions: []string{"Téléchargement", "Paiement", "Compte", "Technique", "Abonnement"},
}

var quickReplies = []string{
	"Problème de téléchargement",
	"Question sur le paiement",
	"Gérer mon abonnement",
	"Problème technique",
	"Parler à un agent",
}

// Option configures a Responder.
type Option func(*Responder)

// WithLogger sets the logger used to trace escalations.
func WithLogger(l *slog.Logger) Option {
	return func(r *Responder) { r.logger = l }
}

// WithClock sets the clock stamping generated messages.
func WithClock(c clockwork.Clock) Option {
	return func(r *Responder) { r.clock = c }
}

// Responder is safe for concurrent use.
type Responder struct {
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewResponder returns a Responder using the built-in answer table.
func NewResponder(opts ...Option) *Responder {
	r := &Responder{
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond answers message. Keyword answers take precedence over escalation.
func (r *Responder) Respond(ctx context.Context, message string) Response {
	lower := strings.ToLower(message)

	for _, e := range answers {
		if strings.Contains(lower, e.keyword) {
			return clone(e.response)
		}
	}

	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			r.logger.InfoContext(ctx, "support: escalating to human agent", "keyword", kw)
			return clone(escalation)
		}
	}

	return clone(fallback)
}

// Reply wraps a response into an assistant chat message.
func (r *Responder) Reply(ctx context.Context, message string) (Message, Response) {
	res := r.Respond(ctx, message)
	return r.assistantMessage(res.Message, false), res
}

// WelcomeMessage is the system message that opens a conversation.
func (r *Responder) WelcomeMessage() Message {
	return r.assistantMessage("Bonjour ! 👋 Je suis l'assistant IA de Digigate. Je suis là pour vous aider avec "+
		"vos questions techniques et préoccupations. Comment puis-je vous aider aujourd'hui ?", true)
}

// QuickReplies lists the canned prompts offered under the chat input.
func (r *Responder) QuickReplies() []string {
	return append([]string(nil), quickReplies...)
}

func (r *Responder) assistantMessage(text string, system bool) Message {
	return Message{
		ID:        id.NewMessageID(),
		Text:      text,
		CreatedAt: r.now(),
		User: Sender{
			ID:     AssistantID,
			Name:   "Assistant Digigate",
			Avatar: "https://images.unsplash.com/photo-1485827404703-89b55fcc595e?w=100",
		},
		System: system,
	}
}

func (r *Responder) now() time.Time { return r.clock.Now().UTC() }
