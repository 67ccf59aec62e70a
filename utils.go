package moreremesas

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// randomHex returns n lower-case hex characters, n at most 32.
func randomHex(n int) string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:n]
}

// generateID returns a document-unique XML id, e.g. "SIG-4f0c...".
func generateID(prefix string) string {
	return prefix + "-" + randomHex(32)
}

// NewPartnerID returns an order reference of the form PREFIX-YYYYMMDDhhmmss-XXXXXX,
// suitable for OrderInfo.OrderPartnerID. An empty prefix defaults to "ORD".
func NewPartnerID(prefix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "ORD"
	}
	suffix := strings.ToUpper(randomHex(6))
	return prefix + "-" + time.Now().UTC().Format("20060102150405") + "-" + suffix
}

var secretElements = regexp.MustCompile(`(<(?:[\w-]+:)?(?:LoginUser|LoginPass|AccessToken)>)[^<]*(</)`)

// scrubXML masks credentials and tokens in a logged payload.
func scrubXML(payload string) string {
	return secretElements.ReplaceAllString(payload, "${1}***${2}")
}

// redact keeps only the last four characters of a secret.
func redact(value string) string {
	if len(value) <= 4 {
		return "***"
	}
	return "***" + value[len(value)-4:]
}
