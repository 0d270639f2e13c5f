package dietsvc

import (
	"context"
	"strings"
)

// MockClassifier is a keyword matcher used when no classification
// service is configured. It errs on the side of the broader category.
type MockClassifier struct{}

func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

var meatKeywords = []string{
	"beef", "pork", "chicken", "turkey", "lamb", "bacon", "ham",
	"sausage", "chorizo", "veal", "duck", "steak", "mince",
}

var fishKeywords = []string{
	"fish", "salmon", "tuna", "cod", "shrimp", "prawn", "anchovy",
	"sardine", "mackerel", "squid", "octopus", "mussel", "clam",
}

var animalProductKeywords = []string{
	"milk", "cheese", "butter", "cream", "yogurt", "yoghurt",
	"egg", "eggs", "honey", "mayonnaise",
}

func (c *MockClassifier) Classify(ctx context.Context, name string, ingredients []string) (Classification, error) {
	_ = ctx

	haystack := strings.ToLower(name)
	for _, ing := range ingredients {
		haystack += " " + strings.ToLower(ing)
	}

	if containsAny(haystack, meatKeywords) {
		return Classification{Diet: DietOmnivore, Confidence: 0.9}, nil
	}
	if containsAny(haystack, fishKeywords) {
		return Classification{Diet: DietPescatarian, Confidence: 0.9}, nil
	}
	if containsAny(haystack, animalProductKeywords) {
		return Classification{Diet: DietVegetarian, Confidence: 0.8}, nil
	}
	return Classification{Diet: DietVegan, Confidence: 0.6}, nil
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
