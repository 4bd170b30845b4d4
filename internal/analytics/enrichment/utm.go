package enrichment

import (
	"net/url"
)

// UTM holds campaign attribution parameters. A nil field was not supplied.
type UTM struct {
	Source   *string
	Medium   *string
	Campaign *string
	Term     *string
	Content  *string
}

// IsZero reports whether no parameter was supplied.
func (u UTM) IsZero() bool {
	return u.Source == nil && u.Medium == nil && u.Campaign == nil && u.Term == nil && u.Content == nil
}

// ExtractUTM reads the five utm_* parameters verbatim.
func ExtractUTM(values url.Values) UTM {
	return UTM{
		Source:   param(values, "utm_source"),
		Medium:   param(values, "utm_medium"),
		Campaign: param(values, "utm_campaign"),
		Term:     param(values, "utm_term"),
		Content:  param(values, "utm_content"),
	}
}

// ExtractUTMFromURL reads utm_* parameters from the query of a raw URL.
func ExtractUTMFromURL(rawURL string) UTM {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return UTM{}
	}
	return ExtractUTM(parsed.Query())
}

func param(values url.Values, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}
