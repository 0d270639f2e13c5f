package dietsvc

import (
	"net/http"
	"strings"
	"time"

	"github.com/KRoses96/Neverita/internal/config"
)

// NewClassifier builds a Classifier from config. Unknown modes fall
// back to the mock classifier.
func NewClassifier(cfg *config.Config) Classifier {
	mode := strings.ToLower(strings.TrimSpace(cfg.DietMode))

	switch mode {
	case config.DietModeHTTP:
		return &Client{
			BaseURL: cfg.DietServiceURL,
			HTTPClient: &http.Client{
				Timeout: time.Duration(cfg.DietTimeoutSeconds) * time.Second,
			},
		}
	default:
		return NewMockClassifier()
	}
}
