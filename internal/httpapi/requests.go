package httpapi

import (
	"strings"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/client"
	"github.com/Rijon63/fothebys-auction-system/internal/lot"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// dateLayouts covers RFC 3339 plus the values browsers submit for date and
// datetime-local inputs. Zone-less values are read as UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly}

// parseTime returns nil for an absent or blank value and records a
// validation failure for anything unparseable.
func parseTime(v *apperr.ValidationError, field string, raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	v.Add(field, "must be a date (YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339)")
	return nil
}

// auctionRequest binds from JSON or multipart form fields. Dates stay raw
// until parseTime so that form submissions are not limited to RFC 3339.
type auctionRequest struct {
	Title          *string `json:"title" form:"title"`
	Description    *string `json:"description" form:"description"`
	StartDate      *string `json:"startDate" form:"startDate"`
	EndDate        *string `json:"endDate" form:"endDate"`
	BiddingEndTime *string `json:"biddingEndTime" form:"biddingEndTime"`
	Image          *string `json:"image" form:"image"`
	Category       *string `json:"category" form:"category"`
	CreatorID      *string `json:"creatorId" form:"creatorId"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r auctionRequest) createInput() (auction.CreateInput, error) {
	var v apperr.ValidationError
	in := auction.CreateInput{
		Title:          deref(r.Title),
		Description:    deref(r.Description),
		StartDate:      parseTime(&v, "startDate", r.StartDate),
		EndDate:        parseTime(&v, "endDate", r.EndDate),
		BiddingEndTime: parseTime(&v, "biddingEndTime", r.BiddingEndTime),
		Image:          deref(r.Image),
		Category:       store.AuctionCategory(deref(r.Category)),
		CreatorID:      deref(r.CreatorID),
	}
	return in, v.Err()
}

func (r auctionRequest) updateInput() (auction.UpdateInput, error) {
	var v apperr.ValidationError
	in := auction.UpdateInput{
		Title:       r.Title,
		Description: r.Description,
		StartDate:   parseTime(&v, "startDate", r.StartDate),
		EndDate:     parseTime(&v, "endDate", r.EndDate),
		Image:       r.Image,
	}
	if r.Category != nil {
		c := store.AuctionCategory(*r.Category)
		in.Category = &c
	}
	return in, v.Err()
}

type bidRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type buyAuctionRequest struct {
	SalePrice *float64 `json:"salePrice" binding:"required"`
	BuyerID   string   `json:"buyerId"`
}

type buyLotRequest struct {
	SalePrice *float64 `json:"salePrice" binding:"required"`
}

type dimensionsRequest struct {
	Height *float64 `json:"height" form:"dimensions.height"`
	Length *float64 `json:"length" form:"dimensions.length"`
	Width  *float64 `json:"width" form:"dimensions.width"`
}

// lotRequest binds from JSON or multipart form fields. JSON nests
// dimensions; forms send either dimensions.height or a bare height key.
type lotRequest struct {
	AuctionID             *string            `json:"auctionId" form:"auctionId"`
	LotNumber             *string            `json:"lotNumber" form:"lotNumber"`
	Title                 *string            `json:"title" form:"title"`
	Artist                *string            `json:"artist" form:"artist"`
	YearProduced          *int               `json:"yearProduced" form:"yearProduced"`
	SubjectClassification *string            `json:"subjectClassification" form:"subjectClassification"`
	Description           *string            `json:"description" form:"description"`
	AuctionDate           *string            `json:"auctionDate" form:"auctionDate"`
	StartingPrice         *float64           `json:"startingPrice" form:"startingPrice"`
	EstimatedPrice        *float64           `json:"estimatedPrice" form:"estimatedPrice"`
	Category              *string            `json:"category" form:"category"`
	SellerID              *string            `json:"sellerId" form:"sellerId"`
	Dimensions            *dimensionsRequest `json:"dimensions"`
	Height                *float64           `json:"-" form:"height"`
	Length                *float64           `json:"-" form:"length"`
	Width                 *float64           `json:"-" form:"width"`
	Weight                *float64           `json:"weight" form:"weight"`
	Framed                *bool              `json:"framed" form:"framed"`
	MediumOrMaterial      *string            `json:"mediumOrMaterial" form:"mediumOrMaterial"`
	Image                 *string            `json:"image" form:"image"`
}

func firstSet[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func (r lotRequest) input() (lot.Input, error) {
	var v apperr.ValidationError
	in := lot.Input{
		AuctionID:             r.AuctionID,
		LotNumber:             r.LotNumber,
		Title:                 r.Title,
		Artist:                r.Artist,
		YearProduced:          r.YearProduced,
		SubjectClassification: r.SubjectClassification,
		Description:           r.Description,
		AuctionDate:           parseTime(&v, "auctionDate", r.AuctionDate),
		StartingPrice:         r.StartingPrice,
		EstimatedPrice:        r.EstimatedPrice,
		SellerID:              r.SellerID,
		Weight:                r.Weight,
		Framed:                r.Framed,
		MediumOrMaterial:      r.MediumOrMaterial,
		Image:                 r.Image,
	}
	if r.Category != nil {
		c := store.LotCategory(*r.Category)
		in.Category = &c
	}
	d := r.Dimensions
	if d == nil {
		d = &dimensionsRequest{}
	}
	in.Height = firstSet(d.Height, r.Height)
	in.Length = firstSet(d.Length, r.Length)
	in.Width = firstSet(d.Width, r.Width)
	return in, v.Err()
}

type commissionRequest struct {
	LotID     string   `json:"lotId" binding:"required"`
	ClientID  string   `json:"clientId"`
	BidAmount *float64 `json:"bidAmount" binding:"required"`
}

type clientRequest struct {
	ID       string  `json:"id"`
	UserID   *string `json:"userId"`
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Type     *string `json:"type"`
}

func (r clientRequest) input() client.Input {
	in := client.Input{
		ID:       r.ID,
		UserID:   r.UserID,
		FullName: r.FullName,
		Email:    r.Email,
		Phone:    r.Phone,
		Address:  r.Address,
	}
	if r.Type != nil {
		t := store.ClientType(*r.Type)
		in.Type = &t
	}
	return in
}
