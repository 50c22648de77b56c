package chat

import "strings"

// Deflection is the fixed reply for messages that fall outside travel
// planning. Off-topic turns never reach the embedding or LLM APIs.
const Deflection = "I'm Voyagent's travel assistant, so I can only help with " +
	"travel planning: destinations, itineraries, budgets, seasons and the like. " +
	"Ask me anything about your next trip!"

type Classification struct {
	IsTravelRelated bool
	Confidence      float64
}

var travelKeywords = []string{
	"travel", "trip", "vacation", "holiday", "destination", "visit",
	"flight", "fly", "airport", "hotel", "hostel", "resort", "airbnb",
	"beach", "island", "mountain", "hike", "hiking", "tour", "tourist",
	"itinerary", "backpack", "cruise", "sightseeing", "city break",
	"passport", "visa", "luggage", "museum", "food scene", "street food",
	"where should i go", "where to go", "getaway", "honeymoon",
	"budget", "cheap", "luxury", "weekend away", "country", "city",
	"climate", "weather", "season", "summer", "winter", "spring", "autumn",
	"europe", "asia", "africa", "america", "caribbean", "oceania",
	"snorkel", "diving", "ski", "safari", "road trip", "explore",
}

var travelQuestionHints = []string{
	"go ", "stay", "see", "do in", "eat in", "get to", "get around",
}

// Classify decides whether a message belongs to the travel domain. It is a
// deterministic keyword heuristic: the exact ruleset is policy, not contract,
// but empty or nonsensical input must always classify as off-topic.
func Classify(message string) Classification {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return Classification{IsTravelRelated: false, Confidence: 1}
	}
	if !strings.ContainsFunc(text, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}) {
		return Classification{IsTravelRelated: false, Confidence: 1}
	}

	hits := 0
	for _, kw := range travelKeywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	if hits == 0 {
		// A bare question shaped like "where ... go" still counts.
		if strings.HasPrefix(text, "where") {
			for _, hint := range travelQuestionHints {
				if strings.Contains(text, hint) {
					hits = 1
					break
				}
			}
		}
	}
	if hits == 0 {
		return Classification{IsTravelRelated: false, Confidence: 0.9}
	}
	confidence := 0.5 + float64(hits)*0.15
	if confidence > 1 {
		confidence = 1
	}
	return Classification{IsTravelRelated: true, Confidence: confidence}
}
