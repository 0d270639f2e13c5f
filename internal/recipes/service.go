package recipes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/blob"
	"github.com/KRoses96/Neverita/internal/dietsvc"
	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/userctx"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNoImage        = errors.New("recipe has no image")
	ErrBadImage       = errors.New("unsupported image")
)

// ImageOptions controls how image URLs are produced for DTOs.
type ImageOptions struct {
	// Presign is true when the blob store can sign GET URLs (S3 mode).
	Presign           bool
	PresignTTLSeconds int
}

type Service struct {
	recipesStorage storage.RecipesStorage
	classifier     dietsvc.Classifier
	blobStore      blob.Store
	imageOpts      ImageOptions
	allowedMime    map[string]string // mime -> file extension
}

func NewService(recipesStorage storage.RecipesStorage, classifier dietsvc.Classifier, blobStore blob.Store, imageOpts ImageOptions, allowedMime string) *Service {
	return &Service{
		recipesStorage: recipesStorage,
		classifier:     classifier,
		blobStore:      blobStore,
		imageOpts:      imageOpts,
		allowedMime:    parseAllowedMime(allowedMime),
	}
}

// List returns the user's recipes, optionally narrowed to names
// containing query (case-insensitive).
func (s *Service) List(ctx context.Context, query string) (*ListRecipesResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	rows, err := s.recipesStorage.ListRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]RecipeDTO, 0, len(rows))
	for row := range FilterByName(rows, query) {
		result = append(result, s.toDTO(ctx, row))
	}
	return &ListRecipesResponse{Recipes: result}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*RecipeDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	row, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	dto := s.toDTO(ctx, *row)
	return &dto, nil
}

func (s *Service) Create(ctx context.Context, req UpsertRecipeRequest) (*RecipeDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	row := storage.Recipe{
		ID:          uuid.New(),
		OwnerUserID: userID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Diet:        strings.TrimSpace(req.Diet),
		Ingredients: toIngredients(req.Ingredients),
		SourceURL:   strings.TrimSpace(req.SourceURL),
	}
	if row.Diet == "" {
		row.Diet = s.classifyDiet(ctx, row)
	}

	if err := s.recipesStorage.CreateRecipe(ctx, &row); err != nil {
		return nil, err
	}

	dto := s.toDTO(ctx, row)
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertRecipeRequest) (*RecipeDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	existing, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	row := *existing
	row.Name = strings.TrimSpace(req.Name)
	row.Description = strings.TrimSpace(req.Description)
	row.Diet = strings.TrimSpace(req.Diet)
	row.Ingredients = toIngredients(req.Ingredients)
	row.SourceURL = strings.TrimSpace(req.SourceURL)
	if row.Diet == "" {
		row.Diet = s.classifyDiet(ctx, row)
	}

	if err := s.recipesStorage.UpdateRecipe(ctx, &row); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	dto := s.toDTO(ctx, row)
	return &dto, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthorized
	}

	existing, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if err := s.recipesStorage.DeleteRecipe(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if existing.ImageKey != "" && s.blobStore != nil {
		if err := s.blobStore.DeleteObject(ctx, existing.ImageKey); err != nil {
			log.Printf("WARN recipes: delete image key=%s: %v", existing.ImageKey, err)
		}
	}
	return nil
}

// UploadImage stores the image bytes and points the recipe at the new
// object key. A previous image is deleted best-effort.
func (s *Service) UploadImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (*UploadImageResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("no blob store configured")
	}

	ext, ok := s.allowedMime[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, ErrBadImage
	}
	if len(data) == 0 {
		return nil, ErrBadImage
	}

	row, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("recipes/%s/%s.%s", id, uuid.New(), ext)
	size, err := s.blobStore.PutObject(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("put image: %w", err)
	}

	oldKey := row.ImageKey
	row.ImageKey = key
	if err := s.recipesStorage.UpdateRecipe(ctx, row); err != nil {
		return nil, err
	}

	if oldKey != "" {
		if err := s.blobStore.DeleteObject(ctx, oldKey); err != nil {
			log.Printf("WARN recipes: delete previous image key=%s: %v", oldKey, err)
		}
	}

	return &UploadImageResponse{
		ImageURL:  s.imageURL(ctx, *row),
		SizeBytes: size,
	}, nil
}

// GetImage returns raw image bytes. Used when the store cannot
// presign (local mode).
func (s *Service) GetImage(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, "", ErrUnauthorized
	}
	if s.blobStore == nil {
		return nil, "", ErrNoImage
	}

	row, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrRecipeNotFound
		}
		return nil, "", err
	}
	if row.ImageKey == "" {
		return nil, "", ErrNoImage
	}

	data, contentType, err := s.blobStore.GetObject(ctx, row.ImageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNoSuchKey) {
			return nil, "", ErrNoImage
		}
		return nil, "", err
	}
	return data, contentType, nil
}

func (s *Service) classifyDiet(ctx context.Context, row storage.Recipe) string {
	if s.classifier == nil {
		return ""
	}
	names := make([]string, 0, len(row.Ingredients))
	for _, ing := range row.Ingredients {
		names = append(names, ing.Name)
	}
	result, err := s.classifier.Classify(ctx, row.Name, names)
	if err != nil {
		// Classification is advisory; the recipe is saved as unknown.
		log.Printf("WARN recipes: classify %q: %v", row.Name, err)
		return dietsvc.DietUnknown
	}
	return result.Diet
}

func (s *Service) toDTO(ctx context.Context, row storage.Recipe) RecipeDTO {
	return RecipeDTO{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Diet:        row.Diet,
		Ingredients: toIngredientDTOs(row.Ingredients),
		ImageURL:    s.imageURL(ctx, row),
		SourceURL:   row.SourceURL,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (s *Service) imageURL(ctx context.Context, row storage.Recipe) string {
	if row.ImageKey == "" || s.blobStore == nil {
		return ""
	}
	if s.imageOpts.Presign {
		url, err := s.blobStore.PresignGet(ctx, row.ImageKey, s.imageOpts.PresignTTLSeconds)
		if err != nil {
			log.Printf("WARN recipes: presign key=%s: %v", row.ImageKey, err)
			return servedImageURL(row)
		}
		return url
	}
	return servedImageURL(row)
}

// servedImageURL is the fallback when no presigned URL is available:
// the image is streamed through the API itself.
func servedImageURL(row storage.Recipe) string {
	return fmt.Sprintf("/user/%s/recipes/%s/image", row.OwnerUserID, row.ID)
}

func parseAllowedMime(raw string) map[string]string {
	extByMime := map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
		"image/gif":  "gif",
	}

	allowed := make(map[string]string)
	for _, mime := range strings.Split(raw, ",") {
		mime = strings.ToLower(strings.TrimSpace(mime))
		if ext, ok := extByMime[mime]; ok {
			allowed[mime] = ext
		}
	}
	return allowed
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
