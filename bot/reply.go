package bot

import (
	"slices"
	"strings"

	"github.com/magbay/LAN-Chat/domain/chat"
)

const answerInstruction = "Answer concisely and directly. Only provide the answer, no extra commentary."

var infoMessages = []string{
	"Did you know? The honeybee is the only insect that produces food eaten by humans.",
	"Tip: You can drag and drop images to share them here!",
	"Fun fact: The Eiffel Tower can be 15 cm taller during hot days.",
	"Reminder: Stay hydrated!",
	"Did you know? Octopuses have three hearts.",
	"Tip: Use @username to get someone's attention.",
	"Fact: Bananas are berries, but strawberries aren't.",
	"Did you know? A group of flamingos is called a 'flamboyance'.",
	"Tip: You can use emojis in your messages!",
	"Fact: The shortest war in history lasted 38 minutes.",
}

// Prompt wraps a chat message for the model.
func Prompt(text string) string {
	return text + "\n" + answerInstruction
}

// Mentioned reports whether text names the bot: its nickname or full name
// anywhere, or any dash-separated part of its nickname as a whole word.
// Matching ignores case.
func Mentioned(text, nickname, fullName string) bool {
	lower := strings.ToLower(text)
	if nickname != "" && strings.Contains(lower, strings.ToLower(nickname)) {
		return true
	}
	if fullName != "" && strings.Contains(lower, strings.ToLower(fullName)) {
		return true
	}
	words := strings.Fields(strings.ReplaceAll(lower, "-", " "))
	for _, part := range strings.Fields(strings.ReplaceAll(strings.ToLower(nickname), "-", " ")) {
		if slices.Contains(words, part) {
			return true
		}
	}
	return false
}

// ignored reports messages the bot never reacts to: its own, system ones and
// anything that reads like a presence notice.
func ignored(msg chat.Message, self string) bool {
	if msg.Nickname == self || strings.EqualFold(msg.Nickname, "system") {
		return true
	}
	lower := strings.ToLower(msg.Text)
	return strings.Contains(lower, "joined") || strings.Contains(lower, "left")
}
