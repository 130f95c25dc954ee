package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/bidding"
	"github.com/Rijon63/fothebys-auction-system/internal/client"
	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/commission"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/event"
	"github.com/Rijon63/fothebys-auction-system/internal/favorite"
	"github.com/Rijon63/fothebys-auction-system/internal/health"
	"github.com/Rijon63/fothebys-auction-system/internal/lot"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/store/memstore"
)

var (
	now     = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	admin   = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
	seller  = auth.Identity{UserID: "seller-1", Role: auth.RoleSeller}
	buyerA  = auth.Identity{UserID: "user-a", ClientID: "client-a", Role: auth.RoleBuyer}
	buyerB  = auth.Identity{UserID: "user-b", ClientID: "client-b", Role: auth.RoleBuyer}
	orphan  = auth.Identity{UserID: "user-x", ClientID: "client-x", Role: auth.RoleBuyer}
	authCfg = config.AuthConfig{
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "fothebys",
		TokenTTL: time.Hour,
	}
)

type harness struct {
	t      *testing.T
	router *gin.Engine
	tokens *auth.Tokens
	repos  *store.Repositories
	events *event.Recorder
}

func services(t *testing.T, repos *store.Repositories, clk clock.Clock, pub event.Publisher) Services {
	t.Helper()
	logger, tp := slog.Default(), noop.NewTracerProvider()
	bids, err := bidding.NewManager(repos, pub, logger, tp, metricnoop.NewMeterProvider(), clk)
	require.NoError(t, err)
	return Services{
		Auctions:    auction.NewManager(repos, logger, tp),
		Bidding:     bids,
		Lots:        lot.NewManager(repos, logger, tp),
		Favorites:   favorite.NewManager(repos, logger, tp),
		Commissions: commission.NewManager(repos, logger, tp),
		Clients:     client.NewManager(repos, logger, tp),
	}
}

func newHarness(t *testing.T, override func(*Services)) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewMock(now)
	repos := memstore.New(clk)
	rec := &event.Recorder{}
	svc := services(t, repos, clk, rec)
	if override != nil {
		override(&svc)
	}
	ctx := context.Background()
	for _, c := range []store.Client{
		{ID: "client-a", UserID: "user-a", FullName: "Ada", Type: store.ClientBuyer},
		{ID: "client-b", UserID: "user-b", FullName: "Ben", Type: store.ClientBuyer},
	} {
		require.NoError(t, repos.Clients.Create(ctx, &c))
	}

	tokens := auth.NewTokens(authCfg, clk)
	hh := health.NewHandler(clk)
	return &harness{
		t:      t,
		router: NewRouter(svc, tokens, hh, slog.Default(), noop.NewTracerProvider()),
		tokens: tokens,
		repos:  repos,
		events: rec,
	}
}

func (h *harness) token(id auth.Identity) string {
	h.t.Helper()
	tok, err := h.tokens.Issue(id)
	require.NoError(h.t, err)
	return tok
}

// do sends body as JSON (or raw when it is an io.Reader) and returns the recorder.
func (h *harness) do(id *auth.Identity, method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		req.Header.Set("Authorization", "Bearer "+h.token(*id))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func auctionBody(title string) map[string]any {
	return map[string]any{
		"title":          title,
		"description":    "Spring sale",
		"startDate":      "2025-03-01T09:00:00Z",
		"endDate":        "2025-03-05T18:00:00Z",
		"biddingEndTime": "2025-03-03T18:00:00Z",
		"category":       "Paintings",
	}
}

func (h *harness) createAuction(title string) store.Auction {
	h.t.Helper()
	rec := h.do(&seller, http.MethodPost, "/auctions", auctionBody(title))
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[store.Auction](h.t, rec)
}

func lotBody(auctionID, number string) map[string]any {
	return map[string]any{
		"auctionId":             auctionID,
		"lotNumber":             number,
		"title":                 "Harbour at Dusk",
		"artist":                "J. Turner",
		"yearProduced":          1840,
		"subjectClassification": "Landscape",
		"description":           "Oil on canvas",
		"startingPrice":         500,
		"estimatedPrice":        1500,
		"category":              "Painting",
		"mediumOrMaterial":      "Oil",
		"dimensions":            map[string]any{"height": 60, "length": 90},
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("role: %w", apperr.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("getting auction: %w", apperr.ErrNotFound), http.StatusNotFound},
		{&apperr.ValidationError{Fields: []apperr.Validation{{Field: "title", Reason: "is required"}}}, http.StatusBadRequest},
		{apperr.ErrDeadlinePassed, http.StatusBadRequest},
		{apperr.ErrBidTooLow, http.StatusBadRequest},
		{apperr.ErrInvalidPrice, http.StatusBadRequest},
		{apperr.ErrAlreadySold, http.StatusBadRequest},
		{apperr.ErrAlreadyFavorited, http.StatusBadRequest},
		{apperr.Tag(errors.New("duplicate key"), apperr.ErrConflict), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t, nil)

	expired := auth.NewTokens(authCfg, clock.NewMock(now.Add(-2*time.Hour)))
	stale, err := expired.Issue(buyerA)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auctions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotEmpty(t, decode[errorBody](t, rec).Error)
		})
	}

	t.Run("health needs no token", func(t *testing.T) {
		rec := h.do(nil, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuctions_CreateAndList(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(&buyerA, http.MethodPost, "/auctions", auctionBody("Buyer Sale"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	missing := auctionBody("No Deadline")
	delete(missing, "biddingEndTime")
	rec = h.do(&seller, http.MethodPost, "/auctions", missing)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "biddingEndTime", decode[errorBody](t, rec).Fields[0].Field)

	a := h.createAuction("Impressionists")
	assert.Equal(t, "seller-1", a.CreatorID)

	rec = h.do(&seller, http.MethodPost, "/auctions", auctionBody("Impressionists"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(&seller, http.MethodPost, "/lots", lotBody(a.ID, "L-001"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(&buyerA, http.MethodGet, "/auctions?category=Paintings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]store.Auction](t, rec)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Lots, 1)

	rec = h.do(&buyerA, http.MethodGet, "/auctions?category=Sculptures", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	rec = h.do(&buyerA, http.MethodGet, "/auctions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// form sends fields (and an optional image file) as multipart/form-data.
func (h *harness) form(id auth.Identity, method, path string, fields map[string]string, image string) *httptest.ResponseRecorder {
	h.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(h.t, w.WriteField(k, v))
	}
	if image != "" {
		part, err := w.CreateFormFile("image", image)
		require.NoError(h.t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(h.t, err)
	}
	require.NoError(h.t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.token(id))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestAuctions_CreateMultipart(t *testing.T) {
	h := newHarness(t, nil)

	fields := map[string]string{}
	for k, v := range auctionBody("Modern Works") {
		fields[k] = v.(string)
	}
	rec := h.form(seller, http.MethodPost, "/auctions", fields, "cover.jpg")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decode[store.Auction](t, rec)
	assert.Equal(t, "Modern Works", a.Title)
	assert.Equal(t, "cover.jpg", a.Image)
	assert.True(t, a.BiddingEndTime.Equal(time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)))
}

func TestAuctions_CreateMultipartBrowserDates(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.form(seller, http.MethodPost, "/auctions", map[string]string{
		"title":          "Old Masters",
		"startDate":      "2025-03-01",
		"endDate":        "2025-03-05",
		"biddingEndTime": "2025-03-03T18:00",
		"category":       "Drawings",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decode[store.Auction](t, rec)
	assert.True(t, a.StartDate.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), a.StartDate)
	assert.True(t, a.BiddingEndTime.Equal(time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)), a.BiddingEndTime)

	rec = h.form(seller, http.MethodPost, "/auctions", map[string]string{
		"title":          "Bad Dates",
		"startDate":      "next tuesday",
		"endDate":        "2025-03-05",
		"biddingEndTime": "2025-03-03T18:00",
		"category":       "Drawings",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.NotEmpty(t, body.Fields)
	assert.Equal(t, "startDate", body.Fields[0].Field)
}

func TestLots_CreateMultipartDimensions(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")

	tests := []struct {
		name   string
		number string
		dims   map[string]string
	}{
		{"nested keys", "L-101", map[string]string{"dimensions.height": "60", "dimensions.length": "90"}},
		{"bare keys", "L-102", map[string]string{"height": "60", "length": "90"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{
				"auctionId":             a.ID,
				"lotNumber":             tt.number,
				"title":                 "Harbour at Dusk",
				"artist":                "J. Turner",
				"yearProduced":          "1840",
				"subjectClassification": "Landscape",
				"description":           "Oil on canvas",
				"auctionDate":           "2025-03-10",
				"startingPrice":         "500",
				"estimatedPrice":        "1500",
				"category":              "Painting",
				"mediumOrMaterial":      "Oil",
			}
			for k, v := range tt.dims {
				fields[k] = v
			}

			rec := h.form(seller, http.MethodPost, "/lots", fields, "")
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			l := decode[store.Lot](t, rec)
			require.NotNil(t, l.Dimensions.Height)
			require.NotNil(t, l.Dimensions.Length)
			assert.Equal(t, 60.0, *l.Dimensions.Height)
			assert.Equal(t, 90.0, *l.Dimensions.Length)
			require.NotNil(t, l.AuctionDate)
			assert.True(t, l.AuctionDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
		})
	}
}

func TestAuctions_UpdateAndDeleteOwnership(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")
	other := auth.Identity{UserID: "seller-2", Role: auth.RoleSeller}

	rec := h.do(&other, http.MethodPut, "/auctions/"+a.ID, map[string]any{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(&seller, http.MethodPut, "/auctions/"+a.ID, map[string]any{"description": "Autumn sale"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[store.Auction](t, rec)
	assert.Equal(t, "Impressionists", got.Title)
	assert.Equal(t, "Autumn sale", got.Description)

	rec = h.do(&admin, http.MethodDelete, "/auctions/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(&seller, http.MethodGet, "/auctions/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBidding_Scenario(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")
	path := "/auctions/" + a.ID + "/bid"

	rec := h.do(&buyerA, http.MethodPost, path, map[string]any{"amount": 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 100.0, decode[map[string]any](t, rec)["highestBid"])

	rec = h.do(&buyerB, http.MethodPost, path, map[string]any{"amount": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(&buyerB, http.MethodPost, path, map[string]any{"amount": 150})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.Equal(t, "bid placed", res["message"])
	assert.Equal(t, 150.0, res["highestBid"])

	rec = h.do(&seller, http.MethodPost, path, map[string]any{"amount": 500})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(&buyerA, http.MethodPost, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	bad := decode[errorBody](t, rec)
	assert.Equal(t, "invalid request payload", bad.Error)
	assert.Equal(t, []apperr.Validation{{Field: "amount", Reason: "is required"}}, bad.Fields)

	rec = h.do(&buyerA, http.MethodPost, path, strings.NewReader(`{"amount":"lots"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error, "amount")

	rec = h.do(&seller, http.MethodGet, "/auctions/"+a.ID+"/bids", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Bid](t, rec), 2)

	assert.Equal(t, []event.Type{event.BidPlaced, event.BidPlaced}, h.events.Types())
}

func TestBuyAuction_CascadesToLots(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")
	for _, n := range []string{"L-001", "L-002"} {
		rec := h.do(&seller, http.MethodPost, "/lots", lotBody(a.ID, n))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := h.do(&buyerA, http.MethodPut, "/auctions/buy/"+a.ID, map[string]any{"salePrice": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(&buyerA, http.MethodPut, "/auctions/buy/"+a.ID, map[string]any{"salePrice": 9000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sold := decode[store.Auction](t, rec)
	require.NotNil(t, sold.SalePrice)
	assert.Equal(t, 9000.0, *sold.SalePrice)
	require.Len(t, sold.Lots, 2)
	for _, l := range sold.Lots {
		require.NotNil(t, l.BuyerID)
		assert.Equal(t, "client-a", *l.BuyerID)
	}

	rec = h.do(&buyerA, http.MethodGet, "/lots/bought/client-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Lot](t, rec), 2)

	rec = h.do(&buyerB, http.MethodGet, "/auctions/bought/client-a", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLots_DuplicateNumberAndBuy(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")

	rec := h.do(&seller, http.MethodPost, "/lots", lotBody(a.ID, "L-001"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	l := decode[store.Lot](t, rec)

	rec = h.do(&seller, http.MethodPost, "/lots", lotBody(a.ID, "L-001"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(&orphan, http.MethodPut, "/lots/buy/"+l.ID, map[string]any{"salePrice": 1200})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(&buyerA, http.MethodPut, "/lots/buy/"+l.ID, map[string]any{"salePrice": 1200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bought := decode[store.Lot](t, rec)
	require.NotNil(t, bought.SalePrice)
	assert.Equal(t, 1200.0, *bought.SalePrice)

	rec = h.do(&buyerB, http.MethodGet, "/lots/"+l.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(&buyerB, http.MethodGet, "/search/simple?keyword=turner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	rec = h.do(&seller, http.MethodGet, "/search/advanced?minPrice=1000&maxPrice=2000&auctionTitle=impress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Lot](t, rec), 1)

	rec = h.do(&seller, http.MethodGet, "/search/advanced?minPrice=cheap&maxPrice=2000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavorites_Toggle(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")
	path := "/auctions/" + a.ID + "/favorite"

	for i, want := range []bool{true, false, true} {
		rec := h.do(&buyerA, http.MethodPut, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, "toggle %d: %s", i, rec.Body.String())
		assert.Equal(t, want, decode[map[string]bool](t, rec)["favorited"], "toggle %d", i)
	}

	rec := h.do(&buyerA, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(&buyerA, http.MethodGet, "/auctions/favorites/client-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Auction](t, rec), 1)

	rec = h.do(&buyerB, http.MethodGet, "/auctions/favorites/client-a", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(&buyerA, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(&buyerA, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(&buyerB, http.MethodPut, "/auctions/buy/"+a.ID, map[string]any{"salePrice": 5000})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(&buyerA, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommissionBids(t *testing.T) {
	h := newHarness(t, nil)
	a := h.createAuction("Impressionists")
	rec := h.do(&seller, http.MethodPost, "/lots", lotBody(a.ID, "L-001"))
	require.Equal(t, http.StatusCreated, rec.Code)
	l := decode[store.Lot](t, rec)

	for _, amount := range []float64{800, 950} {
		rec = h.do(&buyerA, http.MethodPost, "/commission-bids", map[string]any{"lotId": l.ID, "bidAmount": amount})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = h.do(&buyerA, http.MethodPost, "/commission-bids", map[string]any{"lotId": l.ID, "clientId": "client-b", "bidAmount": 10})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(&buyerA, http.MethodGet, "/commission-bids/client/client-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bids := decode[[]store.CommissionBid](t, rec)
	require.Len(t, bids, 2)
	assert.Equal(t, 800.0, bids[0].BidAmount)
	assert.Equal(t, 950.0, bids[1].BidAmount)

	rec = h.do(&seller, http.MethodGet, "/commission-bids/lot/"+l.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.CommissionBid](t, rec), 2)

	rec = h.do(&buyerB, http.MethodGet, "/commission-bids/lot/"+l.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClients(t *testing.T) {
	h := newHarness(t, nil)

	body := map[string]any{"userId": "user-c", "fullName": "Cleo", "email": "cleo@example.com", "type": "seller"}
	rec := h.do(&buyerA, http.MethodPost, "/clients", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(&admin, http.MethodPost, "/clients", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[store.Client](t, rec)

	rec = h.do(&admin, http.MethodPost, "/clients", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(&admin, http.MethodGet, "/clients/user/user-c", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[store.Client](t, rec).ID)

	rec = h.do(&buyerA, http.MethodGet, "/clients/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "client-a", decode[store.Client](t, rec).ID)

	rec = h.do(&admin, http.MethodGet, "/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Client](t, rec), 3)
}

func TestBiddingErrors_Mapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mock := NewMockBiddingService(ctrl)
	h := newHarness(t, func(s *Services) { s.Bidding = mock })

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"deadline", fmt.Errorf("auction a-1 closed: %w", apperr.ErrDeadlinePassed), http.StatusBadRequest, "auction a-1 closed: bidding has ended"},
		{"unknown auction", fmt.Errorf("getting auction a-1: %w", apperr.ErrNotFound), http.StatusNotFound, "getting auction a-1: not found"},
		{"store failure", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.EXPECT().
				PlaceBid(gomock.Any(), buyerA, "a-1", 250.0).
				Return(nil, tt.err)

			rec := h.do(&buyerA, http.MethodPost, "/auctions/a-1/bid", map[string]any{"amount": 250})
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, decode[errorBody](t, rec).Error)
		})
	}

	t.Run("success", func(t *testing.T) {
		mock.EXPECT().
			PlaceBid(gomock.Any(), buyerA, "a-1", 300.0).
			Return(&bidding.BidResult{
				HighestBid: 300,
				Bid:        store.Bid{ID: "b-1", AuctionID: "a-1", ClientID: "client-a", Amount: 300, PlacedAt: now},
			}, nil)

		rec := h.do(&buyerA, http.MethodPost, "/auctions/a-1/bid", map[string]any{"amount": 300})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[map[string]any](t, rec)
		assert.Equal(t, 300.0, res["highestBid"])
		assert.Equal(t, "b-1", res["bid"].(map[string]any)["id"])
	})
}
