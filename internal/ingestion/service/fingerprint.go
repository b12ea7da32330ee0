package service

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// Fingerprint derives the dedup key for an article-company pair: a stable
// one-way hash of the ticker combined with the normalized source URL. The
// same article tracked for two companies yields two distinct fingerprints.
func Fingerprint(ticker, rawURL string) string {
	sum := md5.Sum([]byte(ticker + "|" + NormalizeURL(rawURL)))
	return hex.EncodeToString(sum[:])
}

// NormalizeURL canonicalizes a source URL so trivially different spellings
// of the same address dedup to one fingerprint: the scheme is dropped, host
// is lowercased, and trailing slashes and fragments are stripped. URLs that
// do not parse are normalized textually.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(strings.ToLower(trimmed), "/")
	}

	normalized := strings.ToLower(parsed.Host) + strings.TrimSuffix(parsed.Path, "/")
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	return normalized
}
