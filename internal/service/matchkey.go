package service

import (
	"strings"
	"unicode"

	"github.com/pressmate/media-crm/api/internal/entity"
)

// MatchKey is the normalized identity key derived from a contact, used to
// group likely-identical people across organizations.
type MatchKey struct {
	Key  string
	Type string
}

// DeriveMatchKey computes the identity key for a contact: the primary email
// when one exists, otherwise a slug built from the name. Returns false when
// the contact has neither an email nor a resolvable name; such contacts are
// counted as skipped by the scanner, never silently dropped.
func DeriveMatchKey(contact *entity.Contact) (MatchKey, bool) {
	if contact == nil {
		return MatchKey{}, false
	}

	if email := normalizeEmail(contact.PrimaryEmail()); email != "" {
		return MatchKey{Key: email, Type: entity.MatchTypeEmail}, true
	}

	if key := nameKey(contact.FirstName, contact.LastName); key != "" {
		return MatchKey{Key: key, Type: entity.MatchTypeName}, true
	}

	return MatchKey{}, false
}

// nameKey lowercases the full name and collapses every run of
// non-alphanumeric characters into a single dash.
func nameKey(firstName, lastName string) string {
	full := strings.ToLower(strings.TrimSpace(firstName + " " + lastName))
	if full == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(full))
	pendingDash := false
	for _, r := range full {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		} else {
			pendingDash = true
		}
	}
	return b.String()
}
