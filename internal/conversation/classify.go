// ABOUTME: Classifies queries as conversational small talk or informational
// ABOUTME: Small talk skips retrieval entirely and gets a direct reply
package conversation

import "strings"

// Route says how a query should be answered.
type Route int

const (
	// RouteInformational queries go through retrieval.
	RouteInformational Route = iota
	// RouteConversational queries are greetings or small talk.
	RouteConversational
)

// defaultPatterns are the greeting phrases recognized as small talk.
var defaultPatterns = []string{
	"hello",
	"hi",
	"hey",
	"good morning",
	"good afternoon",
	"good evening",
	"how are you",
	"what's up",
	"greetings",
}

// Classifier routes incoming queries.
type Classifier struct {
	patterns []string
}

// NewClassifier creates a classifier. With no patterns the default greeting
// list is used.
func NewClassifier(patterns ...string) *Classifier {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return &Classifier{patterns: lowered}
}

// Classify routes a query. A query is conversational when it contains a
// greeting phrase and is at most three words; anything longer is treated
// as a real question even if it opens with a greeting.
func (c *Classifier) Classify(query string) Route {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return RouteConversational
	}
	if len(strings.Fields(q)) > 3 {
		return RouteInformational
	}
	for _, p := range c.patterns {
		if strings.Contains(q, p) {
			return RouteConversational
		}
	}
	return RouteInformational
}
