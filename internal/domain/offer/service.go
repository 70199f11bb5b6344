package offer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"credit-portal/internal/infrastructure/cache"
)

type Service interface {
	ListBank(ctx context.Context) ([]Offer, error)

	ListPrivate(ctx context.Context) ([]Offer, error)

	GetOffer(ctx context.Context, id string) (Offer, error)

	// SearchOffers fetches both catalogs whole and filters in memory.
	SearchOffers(ctx context.Context, criteria SearchCriteria) ([]Offer, error)

	// BrowseCatalog fetches both catalogs whole, filters and sorts.
	BrowseCatalog(ctx context.Context, query CatalogQuery) ([]Offer, error)
}

type service struct {
	repo     Repository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo Repository, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) Service {
	if repo == nil {
		panic("offer repository cannot be nil")
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &service{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "OfferService"),
	}
}

const (
	cacheKeyBank    = "catalog:bank"
	cacheKeyPrivate = "catalog:private"
)

func (s *service) ListBank(ctx context.Context) ([]Offer, error) {
	return s.cachedCatalog(ctx, cacheKeyBank, s.repo.ListBank)
}

func (s *service) ListPrivate(ctx context.Context) ([]Offer, error) {
	return s.cachedCatalog(ctx, cacheKeyPrivate, s.repo.ListPrivate)
}

// cachedCatalog serves a catalog from the cache when possible. Cache
// failures only cost the round-trip; the store stays authoritative.
func (s *service) cachedCatalog(ctx context.Context, key string, fetch func(context.Context) ([]Offer, error)) ([]Offer, error) {
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached []cachedOffer
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			offers := make([]Offer, len(cached))
			for i, c := range cached {
				offers[i] = c.Offer
				offers[i].ID = c.CachedID
			}
			restoreCatalogKinds(key, offers)
			return offers, nil
		}
		s.logger.WarnContext(ctx, "Discarding undecodable cache entry", "key", key)
	}

	offers, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(withIDs(offers)); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "Failed to populate catalog cache", "key", key, "error", err)
		}
	}
	return offers, nil
}

// cachedOffer carries the id and kind that the document mapping excludes.
type cachedOffer struct {
	Offer
	CachedID string `json:"id"`
}

func withIDs(offers []Offer) []cachedOffer {
	out := make([]cachedOffer, len(offers))
	for i, o := range offers {
		out[i] = cachedOffer{Offer: o, CachedID: o.ID}
	}
	return out
}

func restoreCatalogKinds(key string, offers []Offer) {
	kind := KindBank
	if key == cacheKeyPrivate {
		kind = KindPrivate
	}
	for i := range offers {
		offers[i].Kind = kind
	}
}

func (s *service) GetOffer(ctx context.Context, id string) (Offer, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) SearchOffers(ctx context.Context, criteria SearchCriteria) ([]Offer, error) {
	offers, err := s.bothCatalogs(ctx)
	if err != nil {
		return nil, err
	}
	return Search(offers, criteria), nil
}

func (s *service) BrowseCatalog(ctx context.Context, query CatalogQuery) ([]Offer, error) {
	offers, err := s.bothCatalogs(ctx)
	if err != nil {
		return nil, err
	}
	return Browse(offers, query), nil
}

func (s *service) bothCatalogs(ctx context.Context) ([]Offer, error) {
	bank, err := s.ListBank(ctx)
	if err != nil {
		return nil, err
	}
	private, err := s.ListPrivate(ctx)
	if err != nil {
		return nil, err
	}
	return append(bank, private...), nil
}
