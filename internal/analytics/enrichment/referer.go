package enrichment

import (
	"net/url"
	"strings"
)

// ExtractReferrerDomain returns the host of a referrer URL, or nil when the
// referrer is empty, unparseable or carries no host.
func ExtractReferrerDomain(referrer string) *string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return nil
	}

	parsed, err := url.Parse(referrer)
	if err != nil {
		return nil
	}

	host := parsed.Hostname()
	if host == "" {
		return nil
	}
	return &host
}

// Traffic source categories.
const (
	SourceSearch   = "Search"
	SourceSocial   = "Social"
	SourceAI       = "AI"
	SourceDirect   = "Direct"
	SourceReferral = "Referral"
)

// RefererClassifier classifies traffic sources from referrer hosts.
type RefererClassifier struct {
	aiPlatforms   []string
	searchEngines []string
	socialMedia   []string
}

// NewRefererClassifier creates a RefererClassifier with the built-in domain lists.
func NewRefererClassifier() *RefererClassifier {
	return &RefererClassifier{
		aiPlatforms: []string{
			"chatgpt.com",
			"claude.ai",
			"gemini.google.com",
			"perplexity.ai",
			"copilot.microsoft.com",
		},
		searchEngines: []string{
			"google.com",
			"bing.com",
			"yahoo.com",
			"duckduckgo.com",
			"baidu.com",
			"yandex.ru",
			"ecosia.org",
		},
		socialMedia: []string{
			"facebook.com",
			"twitter.com",
			"x.com",
			"instagram.com",
			"linkedin.com",
			"pinterest.com",
			"reddit.com",
			"tiktok.com",
			"youtube.com",
			"threads.net",
			"mastodon.social",
		},
	}
}

// ClassifySource classifies a full referrer URL. An empty or unparseable
// referrer is a direct visit.
func (r *RefererClassifier) ClassifySource(referrer string) string {
	domain := ExtractReferrerDomain(referrer)
	if domain == nil {
		return SourceDirect
	}
	return r.ClassifyDomain(*domain)
}

// ClassifyDomain classifies a referrer host. A host matches a listed domain
// when it equals it or is one of its subdomains. AI platforms are checked
// first since some live under search engine domains.
func (r *RefererClassifier) ClassifyDomain(host string) string {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
	if host == "" {
		return SourceDirect
	}

	switch {
	case matchesAny(host, r.aiPlatforms):
		return SourceAI
	case matchesAny(host, r.searchEngines):
		return SourceSearch
	case matchesAny(host, r.socialMedia):
		return SourceSocial
	}
	return SourceReferral
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
