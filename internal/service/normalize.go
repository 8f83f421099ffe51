package service

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

// defaultPhoneRegion is assumed for phone numbers without a country prefix.
const defaultPhoneRegion = "DE"

// normalizeEmail lowercases and trims an address and converts an
// internationalized domain to its ASCII form. Returns "" for addresses that
// do not look like email at all.
func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	local, domain := email[:at], email[at+1:]

	if ascii, err := idnaProfile.ToASCII(domain); err == nil && ascii != "" {
		domain = ascii
	}
	email = local + "@" + domain

	if !emailPattern.MatchString(email) {
		return ""
	}
	return email
}

// emailDomain extracts the domain part of an already-normalized address.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}

// normalizePhone formats a number as E164 when it parses, keeping the
// trimmed raw value otherwise so no evidence is lost in snapshots.
func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
