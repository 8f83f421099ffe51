package scoring

import (
	"strings"

	"github.com/pressmate/media-crm/api/internal/entity"
)

const (
	categoryOrganizations = "organization_reach"
	categoryMediaProfile  = "media_profile"
	categoryOutletEmail   = "verified_outlet_email"
	categoryPhone         = "phone_present"
	categoryBeats         = "beats_present"
	categorySocial        = "social_presence"
)

// Component weights. Tuned with product; do not change without sign-off.
const (
	weightTwoOrganizations  = 50
	weightThirdOrganization = 10
	weightFourthOrg         = 10
	organizationsCap        = 70

	weightMediaProfile = 10
	weightOutletEmail  = 10
	weightPhone        = 5
	weightBeats        = 5
	weightSocial       = 5
)

// defaultTrustedOutletDomains lists email domains of established news
// outlets used as a verification signal.
var defaultTrustedOutletDomains = []string{
	"spiegel.de",
	"zeit.de",
	"faz.net",
	"sueddeutsche.de",
	"taz.de",
	"welt.de",
	"handelsblatt.com",
	"tagesspiegel.de",
	"stern.de",
	"focus.de",
	"ntv.de",
	"dpa.com",
	"reuters.com",
	"apnews.com",
	"afp.com",
	"bbc.co.uk",
	"theguardian.com",
	"nytimes.com",
	"washingtonpost.com",
	"lemonde.fr",
}

// Result reports the aggregate confidence score and per-category breakdown.
type Result struct {
	Total     int
	Breakdown map[string]int
}

// ComputeScore evaluates the confidence that the variants describe the same
// person. Every signal is evaluated across all variants at once: evidence
// present in any variant counts exactly once. A nil trustedDomains falls
// back to the package default allowlist.
func ComputeScore(variants []entity.CandidateVariant, trustedDomains []string) Result {
	if trustedDomains == nil {
		trustedDomains = defaultTrustedOutletDomains
	}

	breakdown := map[string]int{
		categoryOrganizations: scoreOrganizationReach(variants),
		categoryMediaProfile:  scoreMediaProfile(variants),
		categoryOutletEmail:   scoreOutletEmail(variants, trustedDomains),
		categoryPhone:         scorePhonePresent(variants),
		categoryBeats:         scoreBeatsPresent(variants),
		categorySocial:        scoreSocialPresence(variants),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return Result{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreOrganizationReach(variants []entity.CandidateVariant) int {
	orgs := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		orgs[v.OrganizationID.String()] = struct{}{}
	}

	n := len(orgs)
	if n < 2 {
		return 0
	}
	score := weightTwoOrganizations
	if n >= 3 {
		score += weightThirdOrganization
	}
	if n >= 4 {
		score += weightFourthOrg
	}
	if score > organizationsCap {
		return organizationsCap
	}
	return score
}

func scoreMediaProfile(variants []entity.CandidateVariant) int {
	for _, v := range variants {
		if v.Snapshot.HasMediaProfile {
			return weightMediaProfile
		}
	}
	return 0
}

func scoreOutletEmail(variants []entity.CandidateVariant, trustedDomains []string) int {
	for _, v := range variants {
		for _, email := range v.Snapshot.Emails {
			if isTrustedDomain(emailDomain(email), trustedDomains) {
				return weightOutletEmail
			}
		}
	}
	return 0
}

func scorePhonePresent(variants []entity.CandidateVariant) int {
	for _, v := range variants {
		if hasValue(v.Snapshot.Phones) {
			return weightPhone
		}
	}
	return 0
}

func scoreBeatsPresent(variants []entity.CandidateVariant) int {
	for _, v := range variants {
		if hasValue(v.Snapshot.Beats) {
			return weightBeats
		}
	}
	return 0
}

func scoreSocialPresence(variants []entity.CandidateVariant) int {
	for _, v := range variants {
		if len(v.Snapshot.Socials) > 0 {
			return weightSocial
		}
	}
	return 0
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

func isTrustedDomain(domain string, trusted []string) bool {
	if domain == "" {
		return false
	}
	for _, candidate := range trusted {
		if strings.EqualFold(domain, candidate) {
			return true
		}
	}
	return false
}
