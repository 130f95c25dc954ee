package store

import (
	"context"
	"errors"
	"time"
)

// Storage conditions returned by every driver. Services translate them into
// the apperr taxonomy.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict reports that a conditional write matched no record, e.g. a
	// bid lower than the stored highest bid or a sale on an already sold record.
	ErrConflict = errors.New("write precondition failed")
)

// AuctionCategory is the closed set of auction categories.
type AuctionCategory string

const (
	AuctionDrawings           AuctionCategory = "Drawings"
	AuctionPaintings          AuctionCategory = "Paintings"
	AuctionPhotographicImages AuctionCategory = "Photographic Images"
	AuctionSculptures         AuctionCategory = "Sculptures"
	AuctionCarvings           AuctionCategory = "Carvings"
)

// AuctionCategories lists every valid AuctionCategory.
var AuctionCategories = []AuctionCategory{
	AuctionDrawings, AuctionPaintings, AuctionPhotographicImages, AuctionSculptures, AuctionCarvings,
}

// Valid reports whether c is one of AuctionCategories.
func (c AuctionCategory) Valid() bool {
	for _, v := range AuctionCategories {
		if c == v {
			return true
		}
	}
	return false
}

// LotCategory is the closed set of lot categories.
type LotCategory string

const (
	LotPainting          LotCategory = "Painting"
	LotDrawing           LotCategory = "Drawing"
	LotPhotographicImage LotCategory = "Photographic Image"
	LotSculpture         LotCategory = "Sculpture"
	LotCarving           LotCategory = "Carving"
)

// LotCategories lists every valid LotCategory.
var LotCategories = []LotCategory{
	LotPainting, LotDrawing, LotPhotographicImage, LotSculpture, LotCarving,
}

// Valid reports whether c is one of LotCategories.
func (c LotCategory) Valid() bool {
	for _, v := range LotCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ClientType distinguishes buying and selling parties.
type ClientType string

const (
	ClientBuyer  ClientType = "buyer"
	ClientSeller ClientType = "seller"
)

// Auction is a time-boxed sale event. Lots are attached by services for
// display and are never persisted with the auction.
type Auction struct {
	ID             string          `db:"id" bson:"_id" json:"id"`
	Title          string          `db:"title" bson:"title" json:"title"`
	Description    string          `db:"description" bson:"description" json:"description"`
	StartDate      time.Time       `db:"start_date" bson:"start_date" json:"startDate"`
	EndDate        time.Time       `db:"end_date" bson:"end_date" json:"endDate"`
	BiddingEndTime time.Time       `db:"bidding_end_time" bson:"bidding_end_time" json:"biddingEndTime"`
	Image          string          `db:"image" bson:"image" json:"image"`
	Category       AuctionCategory `db:"category" bson:"category" json:"category"`
	CreatorID      string          `db:"creator_id" bson:"creator_id" json:"creatorId"`
	HighestBid     *float64        `db:"highest_bid" bson:"highest_bid" json:"highestBid"`
	WinnerID       *string         `db:"winner_id" bson:"winner_id" json:"winnerId"`
	SalePrice      *float64        `db:"sale_price" bson:"sale_price" json:"salePrice"`
	BuyerID        *string         `db:"buyer_id" bson:"buyer_id" json:"buyerId"`
	SoldAt         *time.Time      `db:"sold_at" bson:"sold_at" json:"soldAt,omitempty"`
	CreatedAt      time.Time       `db:"created_at" bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" bson:"updated_at" json:"updatedAt"`

	Lots []Lot `db:"-" bson:"-" json:"lots"`
}

// Sold reports whether the auction has been bought outright.
func (a *Auction) Sold() bool { return a.SalePrice != nil }

// BiddingClosed reports whether now is past the bidding deadline.
func (a *Auction) BiddingClosed(now time.Time) bool { return now.After(a.BiddingEndTime) }

// Dimensions of a lot in centimetres.
type Dimensions struct {
	Height *float64 `db:"height" bson:"height,omitempty" json:"height,omitempty"`
	Length *float64 `db:"length" bson:"length,omitempty" json:"length,omitempty"`
	Width  *float64 `db:"width" bson:"width,omitempty" json:"width,omitempty"`
}

// Lot is an individually sellable item offered within an auction.
type Lot struct {
	ID                    string      `db:"id" bson:"_id" json:"id"`
	AuctionID             string      `db:"auction_id" bson:"auction_id" json:"auctionId"`
	LotNumber             string      `db:"lot_number" bson:"lot_number" json:"lotNumber"`
	Title                 string      `db:"title" bson:"title" json:"title"`
	Artist                string      `db:"artist" bson:"artist" json:"artist"`
	YearProduced          int         `db:"year_produced" bson:"year_produced" json:"yearProduced"`
	SubjectClassification string      `db:"subject_classification" bson:"subject_classification" json:"subjectClassification"`
	Description           string      `db:"description" bson:"description" json:"description"`
	AuctionDate           *time.Time  `db:"auction_date" bson:"auction_date" json:"auctionDate"`
	StartingPrice         float64     `db:"starting_price" bson:"starting_price" json:"startingPrice"`
	EstimatedPrice        float64     `db:"estimated_price" bson:"estimated_price" json:"estimatedPrice"`
	Category              LotCategory `db:"category" bson:"category" json:"category"`
	SalePrice             *float64    `db:"sale_price" bson:"sale_price" json:"salePrice"`
	BuyerID               *string     `db:"buyer_id" bson:"buyer_id" json:"buyerId"`
	SoldAt                *time.Time  `db:"sold_at" bson:"sold_at" json:"soldAt,omitempty"`
	SellerID              string      `db:"seller_id" bson:"seller_id" json:"sellerId"`
	Dimensions            Dimensions  `db:"dimensions" bson:"dimensions" json:"dimensions"`
	Weight                *float64    `db:"weight" bson:"weight" json:"weight"`
	Framed                bool        `db:"framed" bson:"framed" json:"framed"`
	MediumOrMaterial      string      `db:"medium_or_material" bson:"medium_or_material" json:"mediumOrMaterial"`
	Image                 string      `db:"image" bson:"image" json:"image"`
	CreatedAt             time.Time   `db:"created_at" bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time   `db:"updated_at" bson:"updated_at" json:"updatedAt"`
}

// Sold reports whether the lot has a sale price.
func (l *Lot) Sold() bool { return l.SalePrice != nil }

// Client is the transactable party behind a buyer or seller user. ID is the
// client identifier carried in bearer tokens; UserID links back to the
// authentication identity.
type Client struct {
	ID        string     `db:"id" bson:"_id" json:"id"`
	UserID    string     `db:"user_id" bson:"user_id" json:"userId"`
	FullName  string     `db:"full_name" bson:"full_name" json:"fullName"`
	Email     string     `db:"email" bson:"email" json:"email"`
	Phone     string     `db:"phone" bson:"phone" json:"phone"`
	Address   string     `db:"address" bson:"address" json:"address"`
	Type      ClientType `db:"type" bson:"type" json:"type"`
	CreatedAt time.Time  `db:"created_at" bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" bson:"updated_at" json:"updatedAt"`
}

// Bid is an append-only record of an accepted competitive bid.
type Bid struct {
	ID        string    `db:"id" bson:"_id" json:"id"`
	AuctionID string    `db:"auction_id" bson:"auction_id" json:"auctionId"`
	ClientID  string    `db:"client_id" bson:"client_id" json:"clientId"`
	Amount    float64   `db:"amount" bson:"amount" json:"amount"`
	PlacedAt  time.Time `db:"placed_at" bson:"placed_at" json:"placedAt"`
}

// Favorite marks an auction in a client's watch list.
type Favorite struct {
	ClientID  string    `db:"client_id" bson:"client_id" json:"clientId"`
	AuctionID string    `db:"auction_id" bson:"auction_id" json:"auctionId"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"createdAt"`
}

// CommissionBid is a standing maximum bid left by a client against a lot.
type CommissionBid struct {
	ID        string    `db:"id" bson:"_id" json:"id"`
	ClientID  string    `db:"client_id" bson:"client_id" json:"clientId"`
	LotID     string    `db:"lot_id" bson:"lot_id" json:"lotId"`
	BidAmount float64   `db:"bid_amount" bson:"bid_amount" json:"bidAmount"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"createdAt"`
}

// AuctionFilter narrows auction listings. Zero fields do not filter.
type AuctionFilter struct {
	Category      AuctionCategory
	TitleContains string // case-insensitive
	CreatorID     string
	BuyerID       string
	StartsFrom    *time.Time // StartDate >= StartsFrom
	EndsBy        *time.Time // EndDate <= EndsBy
}

// LotFilter narrows lot listings. Zero fields do not filter.
type LotFilter struct {
	AuctionIDs      []string
	SellerID        string
	BuyerID         string
	UnsoldOnly      bool
	Category        LotCategory
	SubjectContains string // case-insensitive
	// Keyword matches title, artist, category or subject classification, case-insensitive.
	Keyword         string
	MinEstimate     *float64
	MaxEstimate     *float64
	AuctionDateFrom *time.Time
	AuctionDateTo   *time.Time
}

// AuctionRepository defines auction persistence operations.
// Listings are ordered by creation time.
type AuctionRepository interface {
	// Create assigns ID and timestamps. A duplicate (title, creator) returns ErrDuplicate.
	Create(ctx context.Context, a *Auction) error
	GetByID(ctx context.Context, id string) (*Auction, error)
	List(ctx context.Context, f AuctionFilter) ([]Auction, error)
	ListByIDs(ctx context.Context, ids []string) ([]Auction, error)
	// Update replaces the editable fields (title, description, dates, image, category).
	Update(ctx context.Context, a *Auction) error
	Delete(ctx context.Context, id string) error
	// RecordBid sets highest bid and winner only if the auction is unsold and
	// amount exceeds the stored highest bid; otherwise it returns ErrConflict.
	RecordBid(ctx context.Context, id string, amount float64, winnerID string, at time.Time) error
	// MarkSold sets sale price and buyer only if the auction is unsold; otherwise ErrConflict.
	MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error
}

// LotRepository defines lot persistence operations.
type LotRepository interface {
	// Create assigns ID and timestamps. A duplicate lot number returns ErrDuplicate.
	Create(ctx context.Context, l *Lot) error
	GetByID(ctx context.Context, id string) (*Lot, error)
	List(ctx context.Context, f LotFilter) ([]Lot, error)
	// Update replaces every descriptive field; sale fields are left untouched.
	Update(ctx context.Context, l *Lot) error
	Delete(ctx context.Context, id string) error
	// MarkSold sets sale price and buyer only if the lot is unsold; otherwise ErrConflict.
	MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error
	// MarkSoldByAuction overwrites sale state of every lot in the auction and
	// returns the number of lots changed.
	MarkSoldByAuction(ctx context.Context, auctionID, buyerID string, price float64, at time.Time) (int64, error)
}

// ClientRepository defines client persistence operations.
type ClientRepository interface {
	// Create keeps a caller-provided ID and generates one otherwise.
	// A duplicate ID or user ID returns ErrDuplicate.
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetByUserID(ctx context.Context, userID string) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
}

// BidRepository stores the append-only bid history.
type BidRepository interface {
	Create(ctx context.Context, b *Bid) error
	// ListByAuction returns bids in insertion order.
	ListByAuction(ctx context.Context, auctionID string) ([]Bid, error)
}

// FavoriteRepository stores (client, auction) favorite pairs.
type FavoriteRepository interface {
	// Add returns ErrDuplicate if the pair exists.
	Add(ctx context.Context, f *Favorite) error
	// Remove returns ErrNotFound if the pair does not exist.
	Remove(ctx context.Context, clientID, auctionID string) error
	Exists(ctx context.Context, clientID, auctionID string) (bool, error)
	ListByClient(ctx context.Context, clientID string) ([]Favorite, error)
}

// CommissionBidRepository stores the append-only commission bid ledger.
type CommissionBidRepository interface {
	Create(ctx context.Context, b *CommissionBid) error
	// ListByClient and ListByLot return bids in insertion order.
	ListByClient(ctx context.Context, clientID string) ([]CommissionBid, error)
	ListByLot(ctx context.Context, lotID string) ([]CommissionBid, error)
}
