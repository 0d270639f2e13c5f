// Package dietsvc classifies recipes into diet categories. Two
// implementations exist: a keyword-based mock for local runs and an
// HTTP client for a real classification service.
package dietsvc

import "context"

const (
	DietVegan       = "vegan"
	DietVegetarian  = "vegetarian"
	DietPescatarian = "pescatarian"
	DietOmnivore    = "omnivore"

	// DietUnknown marks recipes whose classification failed; clients
	// may retry by re-saving the recipe.
	DietUnknown = "unknown"
)

// Classification is the classifier output for one recipe.
type Classification struct {
	Diet       string
	Confidence float64
}

// Classifier assigns a diet category to a recipe based on its name
// and ingredient list.
type Classifier interface {
	Classify(ctx context.Context, name string, ingredients []string) (Classification, error)
}
