package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleGuides = `# Destination Guides

## Lisbon

Country: Portugal
Region: Europe
Budget Tier: mid
Climate: temperate

Hilly coastal capital with historic trams and pastel buildings.

Great seafood along the waterfront.

## Bali

Country: Indonesia
Region: Asia
Budget Tier: low
Climate: tropical
Tags: beach, surfing

Volcanic island known for beaches, temples and rice terraces.
`

func TestParseGuides_SplitsOnLevel2Headings(t *testing.T) {
	sections := ParseGuides([]byte(sampleGuides))
	require.Len(t, sections, 2)

	lisbon := sections[0]
	require.Equal(t, "Lisbon", lisbon.Name)
	require.Equal(t, "Portugal", lisbon.Meta["country"])
	require.Equal(t, "Europe", lisbon.Meta["region"])
	require.Equal(t, "mid", lisbon.Meta["budget_tier"])
	require.Contains(t, lisbon.Body, "historic trams")
	require.Contains(t, lisbon.Body, "seafood")
	require.NotContains(t, lisbon.Body, "Country:")

	bali := sections[1]
	require.Equal(t, "Bali", bali.Name)
	require.Equal(t, "tropical", bali.Meta["climate"])
	require.Equal(t, "beach, surfing", bali.Meta["tags"])
	require.Contains(t, bali.Body, "rice terraces")
}

func TestParseGuides_EmptyInput(t *testing.T) {
	require.Empty(t, ParseGuides(nil))
	require.Empty(t, ParseGuides([]byte("# Only a title\n\nsome prose\n")))
}

func TestSplitMetaLine(t *testing.T) {
	key, value, ok := splitMetaLine("Budget Tier: high")
	require.True(t, ok)
	require.Equal(t, "budget_tier", key)
	require.Equal(t, "high", value)

	// Unknown keys stay in the prose.
	_, _, ok = splitMetaLine("Fun fact: trams are old")
	require.False(t, ok)

	_, _, ok = splitMetaLine("no separator here")
	require.False(t, ok)
}
