package clipper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/KRoses96/Neverita/internal/recipes"
)

var (
	ErrInvalidURL  = errors.New("invalid url")
	ErrFetchFailed = errors.New("fetch failed")
	ErrNoRecipe    = errors.New("no recipe found on page")
)

// RecipeCreator is the slice of the recipe service the clipper needs.
type RecipeCreator interface {
	Create(ctx context.Context, req recipes.UpsertRecipeRequest) (*recipes.RecipeDTO, error)
}

// Clipper fetches a web page and turns the recipe markup on it into
// a draft recipe owned by the requesting user.
type Clipper struct {
	creator      RecipeCreator
	httpClient   *http.Client
	maxBodyBytes int64
}

func NewClipper(creator RecipeCreator, maxBodyMB int) *Clipper {
	if maxBodyMB <= 0 {
		maxBodyMB = 2
	}
	return &Clipper{
		creator:      creator,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		maxBodyBytes: int64(maxBodyMB) << 20,
	}
}

// ClipURL fetches rawURL, extracts name, description and ingredient
// lines, and creates the recipe. The diet field is left empty so the
// recipe service runs its usual classification.
func (c *Clipper) ClipURL(ctx context.Context, rawURL string) (*recipes.RecipeDTO, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	extracted, err := c.fetchAndExtract(ctx, parsed.String())
	if err != nil {
		return nil, err
	}

	ingredients := make([]recipes.IngredientDTO, 0, len(extracted.Ingredients))
	for _, line := range extracted.Ingredients {
		ingredients = append(ingredients, recipes.IngredientDTO{Name: line})
	}

	return c.creator.Create(ctx, recipes.UpsertRecipeRequest{
		Name:        extracted.Name,
		Description: extracted.Description,
		Ingredients: ingredients,
		SourceURL:   parsed.String(),
	})
}

// ExtractedRecipe is the raw data lifted off the page.
type ExtractedRecipe struct {
	Name        string
	Description string
	Ingredients []string
}

func (c *Clipper) fetchAndExtract(ctx context.Context, pageURL string) (*ExtractedRecipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "Neverita/1.0 recipe clipper")
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	extracted := extract(doc)
	if extracted.Name == "" {
		return nil, ErrNoRecipe
	}
	return extracted, nil
}

// extract pulls the recipe out of the document, preferring structured
// microdata and falling back to generic page metadata.
func extract(doc *goquery.Document) *ExtractedRecipe {
	result := &ExtractedRecipe{}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		result.Name = strings.TrimSpace(content)
	}
	if result.Name == "" {
		result.Name = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if result.Name == "" {
		result.Name = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		result.Description = strings.TrimSpace(content)
	}
	if result.Description == "" {
		if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			result.Description = strings.TrimSpace(content)
		}
	}

	seen := make(map[string]bool)
	appendLine := func(_ int, s *goquery.Selection) {
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line == "" || seen[line] {
			return
		}
		seen[line] = true
		result.Ingredients = append(result.Ingredients, line)
	}

	doc.Find(`[itemprop="recipeIngredient"]`).Each(appendLine)
	if len(result.Ingredients) == 0 {
		doc.Find(".recipe-ingredient, .ingredient").Each(appendLine)
	}

	return result
}
