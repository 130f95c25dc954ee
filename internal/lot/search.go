package lot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// SearchParams are the raw query parameters of an advanced search.
type SearchParams struct {
	Category              string
	SubjectClassification string
	MinPrice              string
	MaxPrice              string
	StartAuctionDate      string
	EndAuctionDate        string
	AuctionTitle          string
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly}

func parseDate(v *apperr.ValidationError, field, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	v.Add(field, "must be a date (YYYY-MM-DD or RFC 3339)")
	return nil
}

func parsePrice(v *apperr.ValidationError, field, raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v.Add(field, "must be a number")
		return nil
	}
	return &f
}

// filter converts p into a store filter. Range bounds only apply in pairs.
func (p SearchParams) filter() (store.LotFilter, error) {
	var (
		v apperr.ValidationError
		f store.LotFilter
	)
	if p.Category != "" {
		f.Category = store.LotCategory(p.Category)
		if !f.Category.Valid() {
			v.Add("category", fmt.Sprintf("must be one of %v", store.LotCategories))
		}
	}
	f.SubjectContains = strings.TrimSpace(p.SubjectClassification)

	lo, hi := parsePrice(&v, "minPrice", p.MinPrice), parsePrice(&v, "maxPrice", p.MaxPrice)
	if lo != nil && hi != nil {
		f.MinEstimate, f.MaxEstimate = lo, hi
	}
	from, to := parseDate(&v, "startAuctionDate", p.StartAuctionDate), parseDate(&v, "endAuctionDate", p.EndAuctionDate)
	if from != nil && to != nil {
		f.AuctionDateFrom, f.AuctionDateTo = from, to
	}
	return f, v.Err()
}

// AdvancedSearch filters lots by category, subject, estimate range, auction
// date range and parent auction title.
func (m *Manager) AdvancedSearch(ctx context.Context, id auth.Identity, p SearchParams) ([]store.Lot, error) {
	ctx, span := m.tracer.Start(ctx, "Lot.AdvancedSearch",
		trace.WithAttributes(
			attribute.String("category", p.Category),
			attribute.String("auction_title", p.AuctionTitle),
		),
	)
	defer span.End()

	f, err := p.filter()
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(p.AuctionTitle); title != "" {
		auctions, err := m.auctions.List(ctx, store.AuctionFilter{TitleContains: title})
		if err != nil {
			return nil, fmt.Errorf("matching auction titles: %w", err)
		}
		if len(auctions) == 0 {
			return []store.Lot{}, nil
		}
		for _, a := range auctions {
			f.AuctionIDs = append(f.AuctionIDs, a.ID)
		}
	}
	return m.list(ctx, id, f)
}

// SimpleSearch matches keyword against title, artist, category and subject.
func (m *Manager) SimpleSearch(ctx context.Context, id auth.Identity, keyword string) ([]store.Lot, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		var v apperr.ValidationError
		v.Add("keyword", "is required")
		return nil, v.Err()
	}
	return m.list(ctx, id, store.LotFilter{Keyword: keyword})
}
