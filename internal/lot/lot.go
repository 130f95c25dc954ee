// Package lot manages the lot catalogue: category-specific validation,
// role-scoped listings and search.
package lot

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// Input carries lot fields. On create every required field must be set; on
// update nil fields keep their stored value. Sale fields are never accepted.
type Input struct {
	AuctionID             *string
	LotNumber             *string
	Title                 *string
	Artist                *string
	YearProduced          *int
	SubjectClassification *string
	Description           *string
	AuctionDate           *time.Time
	StartingPrice         *float64
	EstimatedPrice        *float64
	Category              *store.LotCategory
	SellerID              *string
	Height                *float64
	Length                *float64
	Width                 *float64
	Weight                *float64
	Framed                *bool
	MediumOrMaterial      *string
	Image                 *string
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func (in Input) apply(l *store.Lot) {
	set(&l.AuctionID, in.AuctionID)
	set(&l.LotNumber, in.LotNumber)
	set(&l.Title, in.Title)
	set(&l.Artist, in.Artist)
	set(&l.YearProduced, in.YearProduced)
	set(&l.SubjectClassification, in.SubjectClassification)
	set(&l.Description, in.Description)
	setPtr(&l.AuctionDate, in.AuctionDate)
	set(&l.StartingPrice, in.StartingPrice)
	set(&l.EstimatedPrice, in.EstimatedPrice)
	set(&l.Category, in.Category)
	set(&l.SellerID, in.SellerID)
	setPtr(&l.Dimensions.Height, in.Height)
	setPtr(&l.Dimensions.Length, in.Length)
	setPtr(&l.Dimensions.Width, in.Width)
	setPtr(&l.Weight, in.Weight)
	set(&l.Framed, in.Framed)
	set(&l.MediumOrMaterial, in.MediumOrMaterial)
	set(&l.Image, in.Image)
	if l.AuctionDate != nil {
		utc := l.AuctionDate.UTC()
		l.AuctionDate = &utc
	}
}

func required(v *apperr.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

// validate checks a fully assembled lot.
func validate(l *store.Lot, in Input, creating bool) error {
	var v apperr.ValidationError
	required(&v, "auctionId", l.AuctionID)
	required(&v, "lotNumber", l.LotNumber)
	required(&v, "title", l.Title)
	required(&v, "artist", l.Artist)
	required(&v, "subjectClassification", l.SubjectClassification)
	required(&v, "description", l.Description)
	required(&v, "sellerId", l.SellerID)
	if creating {
		if in.YearProduced == nil {
			v.Add("yearProduced", "is required")
		}
		if in.StartingPrice == nil {
			v.Add("startingPrice", "is required")
		}
		if in.EstimatedPrice == nil {
			v.Add("estimatedPrice", "is required")
		}
	}
	if l.StartingPrice < 0 {
		v.Add("startingPrice", "must not be negative")
	}
	if l.EstimatedPrice < 0 {
		v.Add("estimatedPrice", "must not be negative")
	}

	switch {
	case l.Category == "":
		v.Add("category", "is required")
	case !l.Category.Valid():
		v.Add("category", fmt.Sprintf("must be one of %v", store.LotCategories))
	default:
		checkCategory(&v, l)
	}
	return v.Err()
}

// checkCategory enforces the attributes each kind of work must describe.
func checkCategory(v *apperr.ValidationError, l *store.Lot) {
	need := func(field string, missing bool) {
		if missing {
			v.Add(field, "is required for "+string(l.Category))
		}
	}
	noMedium := strings.TrimSpace(l.MediumOrMaterial) == ""
	d := l.Dimensions

	switch l.Category {
	case store.LotPainting, store.LotDrawing:
		need("mediumOrMaterial", noMedium)
		need("dimensions.height", d.Height == nil)
		need("dimensions.length", d.Length == nil)
	case store.LotPhotographicImage:
		need("dimensions.height", d.Height == nil)
		need("dimensions.length", d.Length == nil)
	case store.LotSculpture, store.LotCarving:
		need("mediumOrMaterial", noMedium)
		need("dimensions.height", d.Height == nil)
		need("dimensions.length", d.Length == nil)
		need("dimensions.width", d.Width == nil)
		need("weight", l.Weight == nil)
		if l.Framed {
			v.Add("framed", "must be false for "+string(l.Category))
		}
	}
}
