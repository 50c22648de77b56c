package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/model"
)

func TestBuildSystemPrompt_BareMinimum(t *testing.T) {
	prompt := BuildSystemPrompt(nil, model.PreferenceProfile{}, false)
	require.Contains(t, prompt, "Voyagent")
	require.NotContains(t, prompt, "What we know about the traveler")
	require.NotContains(t, prompt, "Relevant destination information")
	require.NotContains(t, prompt, "continuing an earlier topic")
}

func TestBuildSystemPrompt_IncludesBlocks(t *testing.T) {
	docs := []model.RetrievedDocument{
		{DestinationName: "Lisbon", Content: "Hilly coastal capital.", Similarity: 0.91},
		{DestinationName: "Porto", Content: "Famous for port wine.", Similarity: 0.85},
	}
	prefs := model.PreferenceProfile{
		Budget:    "low",
		Interests: []string{"beach", "food"},
	}
	prompt := BuildSystemPrompt(docs, prefs, true)

	require.Contains(t, prompt, "continuing an earlier topic")
	require.Contains(t, prompt, "- Budget: low")
	require.Contains(t, prompt, "- Interests: beach, food")
	require.Contains(t, prompt, "[Destination 1: Lisbon]")
	require.Contains(t, prompt, "[Destination 2: Porto]")
	require.Contains(t, prompt, "Hilly coastal capital.")
	// Higher-similarity document comes first.
	require.Less(t, strings.Index(prompt, "Lisbon"), strings.Index(prompt, "Porto"))
}

func TestTrimDocsToBudget(t *testing.T) {
	docs := []model.RetrievedDocument{
		{DestinationName: "A", Content: strings.Repeat("x", 100), Similarity: 0.9},
		{DestinationName: "B", Content: strings.Repeat("y", 100), Similarity: 0.8},
		{DestinationName: "C", Content: strings.Repeat("z", 100), Similarity: 0.7},
	}

	require.Len(t, TrimDocsToBudget(docs, 0), 3)
	require.Len(t, TrimDocsToBudget(docs, 1000), 3)

	trimmed := TrimDocsToBudget(docs, 210)
	require.Len(t, trimmed, 2)
	require.Equal(t, "A", trimmed[0].DestinationName)
	require.Equal(t, "B", trimmed[1].DestinationName)

	require.Empty(t, TrimDocsToBudget(docs, 50))
}
