package ingest

import "strings"

// ResolveAvailability combines the directly resolved availability string
// with the row's per-offer availability strings (in offer order) into the
// final raw string and the boolean in-stock verdict.
//
// A blank or literal "unknown" direct string is substituted with the first
// per-offer string saying "in stock", else the first non-empty one. The
// verdict is negative only on an explicit negative phrase; any offer saying
// "in stock" overrides a negative verdict, since a listed offer beats a
// stale top-level status.
func ResolveAvailability(direct string, offers []string) (string, bool) {
	chosen := strings.TrimSpace(direct)
	if chosen == "" || strings.EqualFold(chosen, "unknown") {
		chosen = substituteFromOffers(offers)
	}

	inStock := stockVerdict(chosen)
	if !inStock {
		for _, offer := range offers {
			if containsFold(offer, "in stock") {
				inStock = true
				break
			}
		}
	}
	return chosen, inStock
}

func substituteFromOffers(offers []string) string {
	first := ""
	for _, offer := range offers {
		offer = strings.TrimSpace(offer)
		if offer == "" {
			continue
		}
		if containsFold(offer, "in stock") {
			return offer
		}
		if first == "" {
			first = offer
		}
	}
	return first
}

func stockVerdict(s string) bool {
	s = strings.TrimSpace(s)
	if containsFold(s, "out of stock") || containsFold(s, "sold out") {
		return false
	}
	switch strings.ToLower(s) {
	case "no", "0":
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
