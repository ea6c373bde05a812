package chat

import (
	"fmt"
	"strings"

	"github.com/glovera/consult/internal/profile"
)

// SystemPrompt is the consultant instruction placed first in every
// conversation.
const SystemPrompt = "You are an AI consultant to help users who want to study abroad.\n" +
	"Answer all their questions regarding courses, universities, eligibility, etc.\n" +
	"Tailor your responses keeping in mind that they'll be parsed by a Text-to-speech model\n" +
	"In a natural human-like conversation"

// InitialGreeting is the assistant's opening line for a new session.
const InitialGreeting = "Hi, I am an AI consultant who'll help you find the best universities abroad. " +
	"Ask me anything about where you want to study, what you want to study, your budget, " +
	"or any other questions you might have."

// EndSentinel is the fixed closing line recorded when the model invokes
// the end-of-conversation tool.
const EndSentinel = "Thank you for consulting with me today. Good luck with your study abroad journey, goodbye!"

// PersonalizedSystemPrompt augments the system prompt with the user's
// profile so the consultant can tailor answers without asking again.
func PersonalizedSystemPrompt(prof profile.Profile) string {
	if len(prof) == 0 {
		return SystemPrompt
	}
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\nHere is what we know about the user:\n<user_info>\n")
	b.WriteString(prof.Serialize())
	b.WriteString("</user_info>")
	return b.String()
}

// followUpInstruction is the synthetic user message folding a tool
// result back into the conversation, constraining the reply style for
// voice output.
func followUpInstruction(userQuery, toolResult string) string {
	return fmt.Sprintf("Answer the user query %q based on this data: %s. "+
		"Dont bombard the user with information, just tell them like a consultant about their available options. "+
		"Keep it concise and natural to read aloud. Try avoiding bullet points and never include raw links.",
		userQuery, toolResult)
}
