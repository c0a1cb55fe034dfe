//go:generate easyjson domain.go

package domain

import "strings"

type Document struct {
	Title string
	Body  string
}

//easyjson:json
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

//easyjson:json
type Headline struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SummaryOptions selects the backend used to derive article content.
// The zero value means no summarization.
type SummaryOptions struct {
	Provider string
	Model    string
	APIKey   string
}

func (o SummaryOptions) Enabled() bool {
	return strings.TrimSpace(o.Provider) != "" && strings.TrimSpace(o.APIKey) != ""
}

// WithDefaults fills fields the caller left empty from fallback.
func (o SummaryOptions) WithDefaults(fallback SummaryOptions) SummaryOptions {
	if strings.TrimSpace(o.Provider) == "" {
		o.Provider = fallback.Provider
	}
	if strings.TrimSpace(o.Model) == "" {
		o.Model = fallback.Model
	}
	if strings.TrimSpace(o.APIKey) == "" {
		o.APIKey = fallback.APIKey
	}

	return o
}
