// Package auth maps verified bearer tokens onto identities and decides what
// each role may do.
package auth

import (
	"context"
	"fmt"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
)

// Role is the closed set of marketplace roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Capability names an action guarded by role.
type Capability string

const (
	ManageAuctions     Capability = "manage_auctions"
	ManageLots         Capability = "manage_lots"
	ManageClients      Capability = "manage_clients"
	ViewCommissionBids Capability = "view_commission_bids"
	Commission         Capability = "commission"
	Bid                Capability = "bid"
	Buy                Capability = "buy"
	Favorite           Capability = "favorite"
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		ManageAuctions: true, ManageLots: true, ManageClients: true,
		ViewCommissionBids: true, Commission: true,
	},
	RoleSeller: {
		ManageAuctions: true, ManageLots: true, ViewCommissionBids: true,
	},
	RoleBuyer: {
		Bid: true, Buy: true, Favorite: true, Commission: true,
	},
}

// Identity is the caller behind a verified token.
type Identity struct {
	UserID string
	// ClientID is the client identifier minted at registration. Empty for
	// users without a client record.
	ClientID string
	Role     Role
}

// IsAdmin reports whether the identity holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// Can reports whether the identity's role grants c.
func (id Identity) Can(c Capability) bool { return capabilities[id.Role][c] }

// Require returns apperr.ErrForbidden unless the role grants c.
func (id Identity) Require(c Capability) error {
	if !id.Can(c) {
		return fmt.Errorf("role %q lacks %s: %w", id.Role, c, apperr.ErrForbidden)
	}
	return nil
}

// Owns reports whether the identity may manage a record owned by ownerID.
func (id Identity) Owns(ownerID string) bool {
	return id.IsAdmin() || (ownerID != "" && ownerID == id.UserID)
}

// ActsFor reports whether the identity may act on behalf of clientID.
func (id Identity) ActsFor(clientID string) bool {
	return id.IsAdmin() || (clientID != "" && clientID == id.ClientID)
}

type ctxKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
