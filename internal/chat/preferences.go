package chat

import (
	"sort"
	"strings"

	"github.com/voyagent/voyagent/internal/model"
)

var budgetKeywords = map[string][]string{
	"low":  {"budget", "cheap", "affordable", "backpack", "shoestring", "low cost"},
	"mid":  {"mid-range", "midrange", "moderate", "reasonable"},
	"high": {"luxury", "luxurious", "upscale", "high-end", "5-star", "five star", "premium"},
}

var regionKeywords = map[string][]string{
	"europe":        {"europe", "european"},
	"asia":          {"asia", "asian", "southeast asia"},
	"africa":        {"africa", "african"},
	"north america": {"north america", "usa", "united states", "canada", "mexico"},
	"south america": {"south america", "latin america"},
	"oceania":       {"oceania", "australia", "new zealand", "pacific"},
	"caribbean":     {"caribbean"},
	"middle east":   {"middle east"},
}

var interestKeywords = map[string][]string{
	"beach":     {"beach", "beaches", "seaside", "coast"},
	"hiking":    {"hike", "hiking", "trek", "trekking", "trail"},
	"culture":   {"culture", "cultural", "museum", "art", "architecture"},
	"food":      {"food", "cuisine", "restaurant", "culinary", "street food"},
	"nightlife": {"nightlife", "club", "bar scene", "party"},
	"adventure": {"adventure", "adrenaline", "extreme"},
	"history":   {"history", "historic", "historical", "ancient", "ruins"},
	"nature":    {"nature", "wildlife", "safari", "national park", "outdoors"},
	"diving":    {"diving", "snorkel", "snorkeling", "scuba"},
	"skiing":    {"ski", "skiing", "snowboard"},
	"shopping":  {"shopping", "market", "bazaar"},
	"wellness":  {"spa", "wellness", "yoga", "relax"},
}

var durationKeywords = map[string][]string{
	"weekend":   {"weekend", "2 days", "two days", "3 days", "three days"},
	"week":      {"a week", "one week", "7 days", "seven days", "5 days"},
	"two weeks": {"two weeks", "2 weeks", "fortnight", "14 days", "10 days"},
	"month":     {"a month", "one month", "monthlong", "30 days", "long term"},
}

var climateKeywords = map[string][]string{
	"warm":      {"warm", "hot", "sunny", "sunshine"},
	"tropical":  {"tropical", "humid"},
	"cold":      {"cold", "snow", "snowy", "arctic"},
	"temperate": {"temperate", "mild"},
}

var travelWithKeywords = map[string][]string{
	"solo":    {"solo", "alone", "by myself"},
	"partner": {"partner", "couple", "girlfriend", "boyfriend", "wife", "husband", "romantic"},
	"family":  {"family", "kids", "children", "toddler"},
	"friends": {"friends", "group of", "mates"},
}

// ExtractPreferences builds a lightweight profile from the user turns of a
// transcript. Later turns overwrite single-valued fields; interests accumulate
// as a deduplicated set. It is a pure function: same history, same profile.
func ExtractPreferences(history []model.ChatMessage) model.PreferenceProfile {
	var profile model.PreferenceProfile
	seen := make(map[string]struct{})
	for _, msg := range history {
		if msg.Role != model.RoleUser {
			continue
		}
		text := strings.ToLower(msg.Content)
		if v := matchKeyword(text, budgetKeywords); v != "" {
			profile.Budget = v
		}
		if v := matchKeyword(text, regionKeywords); v != "" {
			profile.Region = v
		}
		if v := matchKeyword(text, durationKeywords); v != "" {
			profile.Duration = v
		}
		if v := matchKeyword(text, climateKeywords); v != "" {
			profile.Climate = v
		}
		if v := matchKeyword(text, travelWithKeywords); v != "" {
			profile.TravelWith = v
		}
		for _, interest := range sortedKeys(interestKeywords) {
			if _, ok := seen[interest]; ok {
				continue
			}
			for _, w := range interestKeywords[interest] {
				if strings.Contains(text, w) {
					seen[interest] = struct{}{}
					profile.Interests = append(profile.Interests, interest)
					break
				}
			}
		}
	}
	return profile
}

func matchKeyword(text string, table map[string][]string) string {
	// Iterate a stable key order so overlapping keywords resolve the same way
	// on every call.
	for _, key := range sortedKeys(table) {
		for _, w := range table[key] {
			if strings.Contains(text, w) {
				return key
			}
		}
	}
	return ""
}

func sortedKeys(table map[string][]string) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
