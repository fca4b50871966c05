package services

import (
	"context"
	"time"

	"makazi/dto"
)

const (
	lastFiltersPrefix = "last_filters:"
	lastFiltersTTL    = 30 * time.Minute
)

// SaveLastFilters remembers the latest search of a browsing session.
func (s *PropertyService) SaveLastFilters(ctx context.Context, sessionID string, filters dto.PropertySearchFilter) error {
	if sessionID == "" {
		return nil
	}
	return s.cache.Set(ctx, lastFiltersPrefix+sessionID, filters, lastFiltersTTL)
}

func (s *PropertyService) GetLastFilters(ctx context.Context, sessionID string) (*dto.PropertySearchFilter, error) {
	if sessionID == "" {
		return nil, nil
	}
	var filters dto.PropertySearchFilter
	hit, err := s.cache.Get(ctx, lastFiltersPrefix+sessionID, &filters)
	if err != nil || !hit {
		return nil, err
	}
	return &filters, nil
}

func (s *PropertyService) ClearLastFilters(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, lastFiltersPrefix+sessionID)
}

// MergeFilters fills the fields missing from the new search with the previous ones.
func MergeFilters(old *dto.PropertySearchFilter, new dto.PropertySearchFilter) dto.PropertySearchFilter {
	if old == nil {
		return new
	}
	new.Location = orString(new.Location, old.Location)
	if new.PriceMax <= 0 {
		new.PriceMax = old.PriceMax
	}
	return new
}

func orString(newVal, oldVal string) string {
	if newVal != "" {
		return newVal
	}
	return oldVal
}
