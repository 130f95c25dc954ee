// Package httpapi exposes the marketplace services over a JSON REST API.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/bidding"
	"github.com/Rijon63/fothebys-auction-system/internal/client"
	"github.com/Rijon63/fothebys-auction-system/internal/health"
	"github.com/Rijon63/fothebys-auction-system/internal/lot"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// AuctionService is the auction catalogue as used by the handlers.
type AuctionService interface {
	Create(ctx context.Context, id auth.Identity, in auction.CreateInput) (*store.Auction, error)
	Get(ctx context.Context, auctionID string) (*store.Auction, error)
	List(ctx context.Context, category store.AuctionCategory) ([]store.Auction, error)
	Search(ctx context.Context, f store.AuctionFilter) ([]store.Auction, error)
	Bought(ctx context.Context, id auth.Identity, clientID string) ([]store.Auction, error)
	Update(ctx context.Context, id auth.Identity, auctionID string, in auction.UpdateInput) (*store.Auction, error)
	Delete(ctx context.Context, id auth.Identity, auctionID string) error
}

// BiddingService places bids and completes sales.
type BiddingService interface {
	PlaceBid(ctx context.Context, id auth.Identity, auctionID string, amount float64) (*bidding.BidResult, error)
	BuyAuction(ctx context.Context, id auth.Identity, auctionID string, salePrice float64, buyerID string) (*store.Auction, error)
	BuyLot(ctx context.Context, id auth.Identity, lotID string, salePrice float64) (*store.Lot, error)
	ListBids(ctx context.Context, auctionID string) ([]store.Bid, error)
}

// LotService is the lot catalogue as used by the handlers.
type LotService interface {
	Create(ctx context.Context, id auth.Identity, in lot.Input) (*store.Lot, error)
	Get(ctx context.Context, id auth.Identity, lotID string) (*store.Lot, error)
	List(ctx context.Context, id auth.Identity) ([]store.Lot, error)
	ListByAuction(ctx context.Context, id auth.Identity, auctionID string) ([]store.Lot, error)
	Bought(ctx context.Context, id auth.Identity, clientID string) ([]store.Lot, error)
	Update(ctx context.Context, id auth.Identity, lotID string, in lot.Input) (*store.Lot, error)
	Delete(ctx context.Context, id auth.Identity, lotID string) error
	AdvancedSearch(ctx context.Context, id auth.Identity, p lot.SearchParams) ([]store.Lot, error)
	SimpleSearch(ctx context.Context, id auth.Identity, keyword string) ([]store.Lot, error)
}

// FavoriteService maintains client watch lists.
type FavoriteService interface {
	Add(ctx context.Context, id auth.Identity, auctionID string) (*store.Favorite, error)
	Remove(ctx context.Context, id auth.Identity, auctionID string) error
	Toggle(ctx context.Context, id auth.Identity, auctionID string) (bool, error)
	List(ctx context.Context, id auth.Identity, clientID string) ([]store.Auction, error)
}

// CommissionService is the commission bid ledger.
type CommissionService interface {
	Submit(ctx context.Context, id auth.Identity, lotID, clientID string, amount float64) (*store.CommissionBid, error)
	ListByClient(ctx context.Context, id auth.Identity, clientID string) ([]store.CommissionBid, error)
	ListByLot(ctx context.Context, id auth.Identity, lotID string) ([]store.CommissionBid, error)
}

// ClientService is the client registry.
type ClientService interface {
	Create(ctx context.Context, id auth.Identity, in client.Input) (*store.Client, error)
	Get(ctx context.Context, id auth.Identity, clientID string) (*store.Client, error)
	GetByUser(ctx context.Context, id auth.Identity, userID string) (*store.Client, error)
	Me(ctx context.Context, id auth.Identity) (*store.Client, error)
	List(ctx context.Context, id auth.Identity) ([]store.Client, error)
	Update(ctx context.Context, id auth.Identity, clientID string, in client.Input) (*store.Client, error)
	Delete(ctx context.Context, id auth.Identity, clientID string) error
}

// Verifier turns a bearer token into an identity.
type Verifier interface {
	Verify(raw string) (auth.Identity, error)
}

// Services bundles the handlers' dependencies.
type Services struct {
	Auctions    AuctionService
	Bidding     BiddingService
	Lots        LotService
	Favorites   FavoriteService
	Commissions CommissionService
	Clients     ClientService
}

// Server holds the HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the gin engine. Health routes are mounted outside authentication.
func NewRouter(svc Services, verifier Verifier, hh *health.Handler, logger *slog.Logger, tp trace.TracerProvider) *gin.Engine {
	s := &Server{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tracing(tp), requestLogger(logger))
	if hh != nil {
		hh.Register(r)
	}

	api := r.Group("/", authenticate(verifier))

	auctions := api.Group("/auctions")
	{
		auctions.POST("", s.createAuction)
		auctions.GET("", s.listAuctions)
		auctions.GET("/search", s.searchAuctions)
		auctions.GET("/favorites/:clientId", s.listFavorites)
		auctions.GET("/bought/:clientId", s.boughtAuctions)
		auctions.PUT("/buy/:id", s.buyAuction)
		auctions.GET("/:id", s.getAuction)
		auctions.PUT("/:id", s.updateAuction)
		auctions.DELETE("/:id", s.deleteAuction)
		auctions.POST("/:id/bid", s.placeBid)
		auctions.GET("/:id/bids", s.listBids)
		auctions.POST("/:id/favorite", s.addFavorite)
		auctions.DELETE("/:id/favorite", s.removeFavorite)
		auctions.PUT("/:id/favorite", s.toggleFavorite)
	}

	lots := api.Group("/lots")
	{
		lots.POST("", s.createLot)
		lots.GET("", s.listLots)
		lots.GET("/auction/:auctionId", s.lotsByAuction)
		lots.GET("/bought/:clientId", s.boughtLots)
		lots.PUT("/buy/:lotId", s.buyLot)
		lots.GET("/:id", s.getLot)
		lots.PUT("/:id", s.updateLot)
		lots.DELETE("/:id", s.deleteLot)
	}

	search := api.Group("/search")
	{
		search.GET("/advanced", s.advancedSearch)
		search.GET("/simple", s.simpleSearch)
	}

	commissions := api.Group("/commission-bids")
	{
		commissions.POST("", s.submitCommission)
		commissions.GET("/client/:clientId", s.commissionsByClient)
		commissions.GET("/lot/:lotId", s.commissionsByLot)
	}

	clients := api.Group("/clients")
	{
		clients.POST("", s.createClient)
		clients.GET("", s.listClients)
		clients.GET("/me", s.me)
		clients.GET("/user/:userId", s.clientByUser)
		clients.GET("/:id", s.getClient)
		clients.PUT("/:id", s.updateClient)
		clients.DELETE("/:id", s.deleteClient)
	}

	return r
}
