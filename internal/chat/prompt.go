package chat

import (
	"fmt"
	"strings"

	"github.com/voyagent/voyagent/internal/model"
)

const personaHeader = `You are Voyagent, a friendly and knowledgeable travel-planning assistant.
Help the user choose destinations, plan itineraries and budget their trips.
Ground your answers in the destination information provided below when it is
present, and say so when you are unsure. Keep answers concise and practical.`

const followUpNote = `The user is continuing an earlier topic in this conversation.
Prefer building on what was already discussed over introducing unrelated destinations.`

// BuildSystemPrompt assembles the instruction block for one LLM call. The
// preferences block is emitted only when at least one field is set, and the
// documents block only when retrieval produced results. Document content is
// passed through untrimmed; any context budget is enforced by the caller
// before assembly.
func BuildSystemPrompt(docs []model.RetrievedDocument, prefs model.PreferenceProfile, isFollowUp bool) string {
	var sb strings.Builder
	sb.WriteString(personaHeader)

	if isFollowUp {
		sb.WriteString("\n\n")
		sb.WriteString(followUpNote)
	}

	if !prefs.Empty() {
		sb.WriteString("\n\nWhat we know about the traveler so far:\n")
		if prefs.Budget != "" {
			fmt.Fprintf(&sb, "- Budget: %s\n", prefs.Budget)
		}
		if prefs.Region != "" {
			fmt.Fprintf(&sb, "- Preferred region: %s\n", prefs.Region)
		}
		if len(prefs.Interests) > 0 {
			fmt.Fprintf(&sb, "- Interests: %s\n", strings.Join(prefs.Interests, ", "))
		}
		if prefs.Duration != "" {
			fmt.Fprintf(&sb, "- Trip length: %s\n", prefs.Duration)
		}
		if prefs.Climate != "" {
			fmt.Fprintf(&sb, "- Climate preference: %s\n", prefs.Climate)
		}
		if prefs.TravelWith != "" {
			fmt.Fprintf(&sb, "- Traveling with: %s\n", prefs.TravelWith)
		}
	}

	if len(docs) > 0 {
		sb.WriteString("\n\nRelevant destination information:\n")
		for i, doc := range docs {
			fmt.Fprintf(&sb, "\n[Destination %d: %s]\n%s\n", i+1, doc.DestinationName, doc.Content)
		}
	}

	return sb.String()
}

// TrimDocsToBudget drops lowest-similarity documents until the combined
// content fits within budgetBytes. Documents are assumed ordered by
// similarity descending, so trimming happens from the tail.
func TrimDocsToBudget(docs []model.RetrievedDocument, budgetBytes int) []model.RetrievedDocument {
	if budgetBytes <= 0 {
		return docs
	}
	total := 0
	for i, doc := range docs {
		total += len(doc.Content) + len(doc.DestinationName)
		if total > budgetBytes {
			return docs[:i]
		}
	}
	return docs
}
