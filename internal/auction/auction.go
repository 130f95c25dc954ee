// Package auction manages the auction catalogue: creation, editing, listing
// and search. Bidding and sales live in package bidding.
package auction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// CreateInput carries the fields of a new auction. Nil dates are missing.
type CreateInput struct {
	Title          string
	Description    string
	StartDate      *time.Time
	EndDate        *time.Time
	BiddingEndTime *time.Time
	Image          string
	Category       store.AuctionCategory
	// CreatorID defaults to the acting user.
	CreatorID string
}

func (in CreateInput) validate() error {
	var v apperr.ValidationError
	if strings.TrimSpace(in.Title) == "" {
		v.Add("title", "is required")
	}
	if in.StartDate == nil {
		v.Add("startDate", "is required")
	}
	if in.EndDate == nil {
		v.Add("endDate", "is required")
	}
	if in.BiddingEndTime == nil {
		v.Add("biddingEndTime", "is required")
	}
	checkCategory(&v, in.Category)
	checkDates(&v, in.StartDate, in.EndDate)
	return v.Err()
}

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Category    *store.AuctionCategory
	Image       *string
}

func (in UpdateInput) apply(a *store.Auction) error {
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.StartDate != nil {
		a.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		a.EndDate = *in.EndDate
	}
	if in.Category != nil {
		a.Category = *in.Category
	}
	if in.Image != nil {
		a.Image = *in.Image
	}

	var v apperr.ValidationError
	if strings.TrimSpace(a.Title) == "" {
		v.Add("title", "is required")
	}
	checkCategory(&v, a.Category)
	checkDates(&v, &a.StartDate, &a.EndDate)
	return v.Err()
}

func checkCategory(v *apperr.ValidationError, c store.AuctionCategory) {
	switch {
	case c == "":
		v.Add("category", "is required")
	case !c.Valid():
		v.Add("category", fmt.Sprintf("must be one of %v", store.AuctionCategories))
	}
}

func checkDates(v *apperr.ValidationError, start, end *time.Time) {
	if start != nil && end != nil && end.Before(*start) {
		v.Add("endDate", "must not be before startDate")
	}
}

// WithLots attaches each auction's lots, in creation order.
func WithLots(ctx context.Context, lots store.LotRepository, auctions []store.Auction) ([]store.Auction, error) {
	if len(auctions) == 0 {
		return []store.Auction{}, nil
	}
	ids := make([]string, len(auctions))
	for i, a := range auctions {
		ids[i] = a.ID
	}
	all, err := lots.List(ctx, store.LotFilter{AuctionIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("listing lots: %w", err)
	}
	byAuction := make(map[string][]store.Lot, len(auctions))
	for _, l := range all {
		byAuction[l.AuctionID] = append(byAuction[l.AuctionID], l)
	}
	for i := range auctions {
		auctions[i].Lots = byAuction[auctions[i].ID]
		if auctions[i].Lots == nil {
			auctions[i].Lots = []store.Lot{}
		}
	}
	return auctions, nil
}
