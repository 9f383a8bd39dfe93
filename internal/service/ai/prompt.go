package ai

import (
	"fmt"
	"strings"

	"github.com/dallae-labs/dallae/backend/internal/model/persona"
)

// buildReplySystemPrompt frames the Day chat: a supportive listener, not a
// therapist, replying in the persona's voice.
func buildReplySystemPrompt(p *persona.Persona) string {
	var b strings.Builder
	b.WriteString(describePersona(p))
	b.WriteString("\n\nYou are chatting with someone doing a short daily emotional check-in.")
	b.WriteString("\nKeep replies brief: two or three sentences that acknowledge the feeling before anything else.")
	b.WriteString("\nYou are a companion, not a clinician. Do not diagnose, prescribe, or promise outcomes.")
	return b.String()
}

// buildLetterSystemPrompt frames the Night flow: the user's diary entry comes
// in as the message, and a short letter comes back.
func buildLetterSystemPrompt(p *persona.Persona) string {
	var b strings.Builder
	b.WriteString(describePersona(p))
	b.WriteString("\n\nThe user has written tonight's diary entry. Write back a short letter, addressed to them.")
	b.WriteString("\nName what the day seems to have held, gently. Three short paragraphs at most.")
	b.WriteString("\nEnd on something steady the user can keep, without empty cheerfulness.")
	return b.String()
}

func describePersona(p *persona.Persona) string {
	if p == nil {
		return "You are a warm, attentive companion."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.", p.Name, strings.ToLower(p.Title))
	if tone := strings.TrimSpace(p.Tone); tone != "" {
		fmt.Fprintf(&b, " Your tone is %s.", tone)
	}
	if len(p.Traits) > 0 {
		fmt.Fprintf(&b, " You are %s.", strings.Join(p.Traits, ", "))
	}
	if hint := strings.TrimSpace(p.PromptHint); hint != "" {
		b.WriteString("\n")
		b.WriteString(hint)
	}
	return b.String()
}
