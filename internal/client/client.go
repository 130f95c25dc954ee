// Package client manages the registry of buying and selling parties.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

// Input carries client fields. Nil fields are left unchanged on update.
type Input struct {
	// ID is honoured on create so a client identifier minted elsewhere can be kept.
	ID       string
	UserID   *string
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
	Type     *store.ClientType
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func (in Input) apply(c *store.Client) {
	setTrimmed(&c.UserID, in.UserID)
	setTrimmed(&c.FullName, in.FullName)
	setTrimmed(&c.Email, in.Email)
	setTrimmed(&c.Phone, in.Phone)
	setTrimmed(&c.Address, in.Address)
	if in.Type != nil {
		c.Type = *in.Type
	}
}

func validate(c *store.Client) error {
	var v apperr.ValidationError
	if c.UserID == "" {
		v.Add("userId", "is required")
	}
	if c.FullName == "" {
		v.Add("fullName", "is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		v.Add("email", "must be an email address")
	}
	if c.Type != store.ClientBuyer && c.Type != store.ClientSeller {
		v.Add("type", "must be buyer or seller")
	}
	return v.Err()
}

// Manager handles client registry operations.
type Manager struct {
	clients store.ClientRepository
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewManager returns a new client Manager.
func NewManager(repos *store.Repositories, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		clients: repos.Clients,
		logger:  logger,
		tracer:  tp.Tracer("github.com/Rijon63/fothebys-auction-system/internal/client"),
	}
}

// Create registers a client. A user may back at most one client.
func (m *Manager) Create(ctx context.Context, id auth.Identity, in Input) (*store.Client, error) {
	ctx, span := m.tracer.Start(ctx, "Client.Create",
		trace.WithAttributes(attribute.String("user_id", id.UserID)),
	)
	defer span.End()

	if err := id.Require(auth.ManageClients); err != nil {
		return nil, err
	}
	c := &store.Client{ID: in.ID}
	in.apply(c)
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := m.clients.Create(ctx, c); err != nil {
		return nil, store.Classify(fmt.Errorf("creating client: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "client registered",
		slog.String("client_id", c.ID),
		slog.String("client_user_id", c.UserID),
		slog.String("type", string(c.Type)),
	)
	return c, nil
}

// Get returns a client by identifier.
func (m *Manager) Get(ctx context.Context, id auth.Identity, clientID string) (*store.Client, error) {
	if err := id.Require(auth.ManageClients); err != nil {
		return nil, err
	}
	c, err := m.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, store.Classify(err)
	}
	return c, nil
}

// GetByUser returns the client backed by userID.
func (m *Manager) GetByUser(ctx context.Context, id auth.Identity, userID string) (*store.Client, error) {
	if err := id.Require(auth.ManageClients); err != nil {
		return nil, err
	}
	c, err := m.clients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, store.Classify(err)
	}
	return c, nil
}

// Me resolves the caller's own client record.
func (m *Manager) Me(ctx context.Context, id auth.Identity) (*store.Client, error) {
	c, err := m.clients.GetByUserID(ctx, id.UserID)
	if err != nil {
		return nil, store.Classify(err)
	}
	return c, nil
}

// List returns every client.
func (m *Manager) List(ctx context.Context, id auth.Identity) ([]store.Client, error) {
	ctx, span := m.tracer.Start(ctx, "Client.List")
	defer span.End()

	if err := id.Require(auth.ManageClients); err != nil {
		return nil, err
	}
	clients, err := m.clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	if clients == nil {
		clients = []store.Client{}
	}
	return clients, nil
}

// Update applies a partial edit.
func (m *Manager) Update(ctx context.Context, id auth.Identity, clientID string, in Input) (*store.Client, error) {
	ctx, span := m.tracer.Start(ctx, "Client.Update",
		trace.WithAttributes(attribute.String("client_id", clientID)),
	)
	defer span.End()

	c, err := m.Get(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := m.clients.Update(ctx, c); err != nil {
		return nil, store.Classify(fmt.Errorf("updating client: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "client updated",
		slog.String("client_id", clientID),
	)
	return c, nil
}

// Delete removes a client. Ledger records that reference it are kept.
func (m *Manager) Delete(ctx context.Context, id auth.Identity, clientID string) error {
	ctx, span := m.tracer.Start(ctx, "Client.Delete",
		trace.WithAttributes(attribute.String("client_id", clientID)),
	)
	defer span.End()

	if err := id.Require(auth.ManageClients); err != nil {
		return err
	}
	if err := m.clients.Delete(ctx, clientID); err != nil {
		return store.Classify(fmt.Errorf("deleting client: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "client deleted",
		slog.String("client_id", clientID),
	)
	return nil
}
