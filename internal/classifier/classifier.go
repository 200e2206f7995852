package classifier

import (
	"strings"
)

// Intent represents the classified intent of a user message
type Intent string

const (
	IntentEmergency  Intent = "emergency"
	IntentMedication Intent = "medication"
	IntentGreeting   Intent = "greeting"
	IntentWellness   Intent = "wellness"
	IntentGeneral    Intent = "general"
)

// Rule pairs an intent with the keywords that trigger it
type Rule struct {
	Intent   Intent
	Keywords []string
}

// ClassifierResult contains the classification result
type ClassifierResult struct {
	Intent  Intent `json:"intent"`
	Keyword string `json:"keyword,omitempty"` // first keyword that matched, empty for general
}

// Classifier performs rule-based intent classification.
// Rules are evaluated in order and the first match wins, so emergency
// keywords always take precedence over anything else in the message.
type Classifier struct {
	rules []Rule
}

// DefaultRules returns the built-in rule cascade in priority order
func DefaultRules() []Rule {
	return []Rule{
		{Intent: IntentEmergency, Keywords: []string{"emergency", "help", "fall", "pain", "chest", "breathing"}},
		{Intent: IntentMedication, Keywords: []string{"medicine", "medication", "pill", "drug", "prescription"}},
		{Intent: IntentGreeting, Keywords: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
		{Intent: IntentWellness, Keywords: []string{"feel", "feeling", "tired", "dizzy", "sick"}},
	}
}

// NewClassifier creates a classifier with the default rules
func NewClassifier() *Classifier {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates a classifier evaluating rules in the given order
func NewWithRules(rules []Rule) *Classifier {
	compiled := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			keywords = append(keywords, strings.ToLower(kw))
		}
		compiled = append(compiled, Rule{Intent: r.Intent, Keywords: keywords})
	}
	return &Classifier{rules: compiled}
}

// Classify determines the intent of the input message.
// Matching is plain substring containment on the lower-cased text, so
// "hiccup" matches the greeting keyword "hi".
func (c *Classifier) Classify(input string) ClassifierResult {
	normalized := Normalize(input)

	for _, rule := range c.rules {
		if kw, ok := ContainsAny(normalized, rule.Keywords); ok {
			return ClassifierResult{Intent: rule.Intent, Keyword: kw}
		}
	}

	return ClassifierResult{Intent: IntentGeneral}
}

// Normalize lower-cases input for matching
func Normalize(input string) string {
	return strings.ToLower(input)
}

// ContainsAny reports the first keyword found in text
func ContainsAny(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}
