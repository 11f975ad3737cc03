package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/30-dung/salon-web/internal/catalog"
	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/repository"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// catalogCacheTTL bounds how stale a cached store, service or stylist list
// may be.
const catalogCacheTTL = 5 * time.Minute

// SlotView is a working time slot with its selectability at render time.
type SlotView struct {
	domain.WorkingTimeSlot
	Selectable bool `json:"selectable"`
}

// CatalogService serves the store, service and stylist lists.
type CatalogService struct {
	api    CatalogAPI
	cache  repository.Cache
	search *catalog.Debouncer[[]domain.Store]
	logger *slog.Logger
}

// NewCatalogService creates a catalog service. cache may be nil.
func NewCatalogService(api CatalogAPI, cache repository.Cache, debounce time.Duration, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		api:    api,
		cache:  cache,
		search: catalog.NewDebouncer[[]domain.Store](debounce),
		logger: logger,
	}
}

// cached serves key from the cache, loading and storing it on a miss. Cache
// failures are logged and bypassed.
func cached[T any](ctx context.Context, s *CatalogService, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &v)
		if err != nil {
			s.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else if hit {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, v, catalogCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
	return v, nil
}

func (s *CatalogService) Stores(ctx context.Context) ([]domain.Store, error) {
	return cached(ctx, s, "stores:all", s.api.Stores)
}

func (s *CatalogService) Store(ctx context.Context, id int64) (*domain.Store, error) {
	if id <= 0 {
		return nil, apperrors.InvalidField("storeId", "store id must be positive")
	}
	return cached(ctx, s, fmt.Sprintf("stores:%d", id), func(ctx context.Context) (*domain.Store, error) {
		return s.api.Store(ctx, id)
	})
}

func (s *CatalogService) Cities(ctx context.Context) ([]string, error) {
	return cached(ctx, s, "cities", s.api.Cities)
}

func (s *CatalogService) Districts(ctx context.Context, city string) ([]string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperrors.InvalidField("city", "city is required")
	}
	return cached(ctx, s, "districts:"+strings.ToLower(city), func(ctx context.Context) ([]string, error) {
		return s.api.Districts(ctx, city)
	})
}

// Locate lists the stores in a city and, optionally, a district.
func (s *CatalogService) Locate(ctx context.Context, city, district string) ([]domain.Store, error) {
	return s.api.LocateStores(ctx, strings.TrimSpace(city), strings.TrimSpace(district))
}

// StoresInCity lists every store, narrowed to city when one is given.
func (s *CatalogService) StoresInCity(ctx context.Context, city string) ([]domain.Store, error) {
	stores, err := s.Stores(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterByCity(stores, city), nil
}

// Search runs a debounced store search for one visitor. A newer search with
// the same key cancels this one, which then fails with a superseded error.
func (s *CatalogService) Search(ctx context.Context, key, query, city string) ([]domain.Store, error) {
	stores, err := s.search.Do(ctx, key, func(ctx context.Context) ([]domain.Store, error) {
		all, err := s.StoresInCity(ctx, city)
		if err != nil {
			return nil, err
		}
		return catalog.SearchStores(all, query), nil
	})
	switch {
	case errors.Is(err, apperrors.ErrSuperseded):
		StoreSearches.WithLabelValues("superseded").Inc()
	case err != nil:
		StoreSearches.WithLabelValues("error").Inc()
	default:
		StoreSearches.WithLabelValues("ok").Inc()
	}
	return stores, err
}

func (s *CatalogService) Services(ctx context.Context, storeID int64) ([]domain.StoreService, error) {
	if storeID <= 0 {
		return nil, apperrors.InvalidField("storeId", "store id must be positive")
	}
	return cached(ctx, s, fmt.Sprintf("services:%d", storeID), func(ctx context.Context) ([]domain.StoreService, error) {
		return s.api.StoreServices(ctx, storeID)
	})
}

func (s *CatalogService) Employees(ctx context.Context, storeID int64) ([]domain.Employee, error) {
	if storeID <= 0 {
		return nil, apperrors.InvalidField("storeId", "store id must be positive")
	}
	return cached(ctx, s, fmt.Sprintf("employees:%d", storeID), func(ctx context.Context) ([]domain.Employee, error) {
		return s.api.Employees(ctx, storeID)
	})
}

// Slots lists a stylist's slots on date, marking the ones that can still be
// chosen at now. Slots are never cached.
func (s *CatalogService) Slots(ctx context.Context, employeeID int64, date string, now domain.LocalDateTime) ([]SlotView, error) {
	if employeeID <= 0 {
		return nil, apperrors.InvalidField("stylistId", "please select a stylist")
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, apperrors.InvalidField("date", err.Error())
	}
	slots, err := s.api.AvailableSlots(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	out := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotView{WorkingTimeSlot: slot, Selectable: slot.Selectable(now)})
	}
	return out, nil
}
