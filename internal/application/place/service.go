package place

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/clock"
)

// PlaceStore persists catalog entries.
type PlaceStore interface {
	Create(ctx context.Context, p *domain.Place) error
	Get(ctx context.Context, slug string) (*domain.Place, error)
	Update(ctx context.Context, slug string, updates map[string]interface{}) error
	ScanAll(ctx context.Context) ([]domain.Place, error)
}

// MediaStore holds place photos.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	Create(ctx context.Context, req domain.CreatePlaceRequest) (*domain.Place, error)
	Get(ctx context.Context, slug string) (*domain.Place, error)
	List(ctx context.Context) ([]domain.Place, error)
	UploadPhoto(ctx context.Context, slug, filename string, r io.Reader, contentType string) (*domain.Place, error)
	PhotoURL(ctx context.Context, slug string) (string, error)
}

type ServiceDeps struct {
	PlaceRepo PlaceStore
	Media     MediaStore
	Clock     clock.Clock
}

type service struct {
	placeRepo PlaceStore
	media     MediaStore
	clock     clock.Clock
}

// photoURLTTL bounds how long a handed-out photo link stays valid.
const photoURLTTL = 15 * time.Minute

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &service{
		placeRepo: deps.PlaceRepo,
		media:     deps.Media,
		clock:     deps.Clock,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreatePlaceRequest) (*domain.Place, error) {
	slug := slugify(req.Name)
	if slug == "" {
		return nil, fmt.Errorf("name produces an empty slug: %w", domain.ErrBadRequest)
	}

	now := s.clock.Now().UTC()
	p := &domain.Place{
		Slug:        slug,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.placeRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, slug string) (*domain.Place, error) {
	return s.placeRepo.Get(ctx, slugify(slug))
}

func (s *service) List(ctx context.Context) ([]domain.Place, error) {
	return s.placeRepo.ScanAll(ctx)
}

// UploadPhoto replaces the place's photo. The object key is derived from
// the slug, so re-uploads overwrite rather than accumulate.
func (s *service) UploadPhoto(ctx context.Context, slug, filename string, r io.Reader, contentType string) (*domain.Place, error) {
	slug = slugify(slug)
	p, err := s.placeRepo.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("places/%s%s", slug, strings.ToLower(filepath.Ext(filename)))
	if _, err := s.media.Upload(ctx, key, r, contentType); err != nil {
		return nil, err
	}
	if err := s.placeRepo.Update(ctx, slug, map[string]interface{}{
		"photo_key":  key,
		"updated_at": s.clock.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}

	// A re-upload with a new extension changes the key and strands the old
	// object. Cleanup is best effort; the new photo is already live.
	if p.PhotoKey != "" && p.PhotoKey != key {
		if err := s.media.Delete(ctx, p.PhotoKey); err != nil {
			slog.Warn("stale place photo cleanup failed", "key", p.PhotoKey, "error", err)
		}
	}

	p.PhotoKey = key
	return p, nil
}

// PhotoURL hands out a time-limited link to the place's photo.
func (s *service) PhotoURL(ctx context.Context, slug string) (string, error) {
	p, err := s.placeRepo.Get(ctx, slugify(slug))
	if err != nil {
		return "", err
	}
	if p.PhotoKey == "" {
		return "", fmt.Errorf("place has no photo: %w", domain.ErrNotFound)
	}
	return s.media.PresignedURL(ctx, p.PhotoKey, photoURLTTL)
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the name and collapses every non-alphanumeric run
// into a single hyphen: "New Delhi " -> "new-delhi".
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugCleanup.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
