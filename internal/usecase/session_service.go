package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pricelens/backend/internal/domain"
)

// CatalogProvider supplies the currently loaded catalog
type CatalogProvider interface {
	Current() (*domain.Catalog, error)
}

// Session is the state of one user: the last applied filter and the cart.
// Commands on one session are serialized by the session service.
type Session struct {
	ID        string
	CreatedAt time.Time
	Filter    domain.Filter

	mu   sync.Mutex
	cart *Cart
}

// BrowseView is the result of applying a filter to the catalog
type BrowseView struct {
	Filter         domain.Filter          `json:"filter"`
	Products       []domain.ProductRecord `json:"products"`
	Matches        int                    `json:"matches"`
	CatalogSize    int                    `json:"catalogSize"`
	CatalogVersion int64                  `json:"catalogVersion"`
	Categories     []string               `json:"categories"`
	Message        string                 `json:"message,omitempty"`
}

// PurchasedFlag is one entry of the checklist flag map
type PurchasedFlag struct {
	domain.PurchaseKey
	Purchased bool `json:"purchased"`
}

// CartView is the cart as presented after every cart command
type CartView struct {
	SessionID string                 `json:"sessionId"`
	Filter    domain.Filter          `json:"filter"` // Last applied filter
	Items     int                    `json:"items"`
	Total     float64                `json:"total"`
	Groups    []domain.RetailerGroup `json:"groups"`
	Purchased []PurchasedFlag        `json:"purchased"`
	Removed   int                    `json:"removed,omitempty"`
}

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	EnableDebugLogging bool
}

// SessionService exposes the browsing and cart commands of a user session
type SessionService struct {
	sessions           domain.SessionRepository[*Session]
	catalogs           CatalogProvider
	exporter           *ExportService
	enableDebugLogging bool
	newID              func() string
	now                func() time.Time
}

// NewSessionService creates a new session service with dependencies
func NewSessionService(
	sessions domain.SessionRepository[*Session],
	catalogs CatalogProvider,
	exporter *ExportService,
	config SessionServiceConfig,
) *SessionService {
	return &SessionService{
		sessions:           sessions,
		catalogs:           catalogs,
		exporter:           exporter,
		enableDebugLogging: config.EnableDebugLogging,
		newID:              uuid.NewString,
		now:                time.Now,
	}
}

// Start creates a new session with an empty cart
func (s *SessionService) Start(ctx context.Context) (*Session, error) {
	session := &Session{
		ID:        s.newID(),
		CreatedAt: s.now(),
		cart:      NewCart(),
	}
	if err := s.sessions.Put(ctx, session.ID, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if s.enableDebugLogging {
		log.Printf("[SESSION] Started %s (%d active)", session.ID, s.sessions.Len())
	}
	return session, nil
}

// End tears a session down
func (s *SessionService) End(ctx context.Context, id string) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// ApplyFilter runs the query engine for the session and remembers the filter.
// A filter matching nothing returns an empty view with a message, not an error.
func (s *SessionService) ApplyFilter(ctx context.Context, id string, filter domain.Filter) (*BrowseView, error) {
	catalog, err := s.catalogs.Current()
	if err != nil {
		return nil, err
	}

	var view *BrowseView
	err = s.withSession(ctx, id, func(session *Session) error {
		products, err := Query(catalog, filter)
		if err != nil {
			return err
		}
		session.Filter = filter

		view = &BrowseView{
			Filter:         filter,
			Products:       products,
			Matches:        len(products),
			CatalogSize:    catalog.Len(),
			CatalogVersion: catalog.Version,
			Categories:     Categories(catalog),
		}
		if len(products) == 0 {
			view.Message = "no products match the current filter"
		}
		return nil
	})
	return view, err
}

// AddToCart copies the catalog product with the given id into the session cart.
// Product ids are catalog positions, so a non-zero catalogVersion must match the
// active catalog; zero skips the check.
func (s *SessionService) AddToCart(ctx context.Context, id string, productID int, catalogVersion int64) (*CartView, error) {
	catalog, err := s.catalogs.Current()
	if err != nil {
		return nil, err
	}
	if catalogVersion != 0 && catalogVersion != catalog.Version {
		return nil, fmt.Errorf("%w: version %d, active %d", domain.ErrStaleCatalog, catalogVersion, catalog.Version)
	}
	product, ok := catalog.Product(productID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, productID)
	}

	return s.cartCommand(ctx, id, func(cart *Cart) int {
		cart.Add(product)
		return 0
	})
}

// Cart returns the current cart view
func (s *SessionService) Cart(ctx context.Context, id string) (*CartView, error) {
	return s.cartCommand(ctx, id, func(*Cart) int { return 0 })
}

// ClearCart empties the cart and its checklist flags
func (s *SessionService) ClearCart(ctx context.Context, id string) (*CartView, error) {
	return s.cartCommand(ctx, id, func(cart *Cart) int {
		removed := cart.Len()
		cart.Clear()
		return removed
	})
}

// MarkPurchased sets a checklist flag
func (s *SessionService) MarkPurchased(ctx context.Context, id string, key domain.PurchaseKey, purchased bool) (*CartView, error) {
	return s.cartCommand(ctx, id, func(cart *Cart) int {
		cart.MarkPurchased(key, purchased)
		return 0
	})
}

// ClearPurchased resets all checklist flags without touching the items
func (s *SessionService) ClearPurchased(ctx context.Context, id string) (*CartView, error) {
	return s.cartCommand(ctx, id, func(cart *Cart) int {
		cart.ClearPurchased()
		return 0
	})
}

// RemovePurchased drops the items flagged as purchased
func (s *SessionService) RemovePurchased(ctx context.Context, id string) (*CartView, error) {
	return s.cartCommand(ctx, id, func(cart *Cart) int {
		return cart.RemovePurchased()
	})
}

// ExportCart renders the session cart as a shopping list
func (s *SessionService) ExportCart(ctx context.Context, id string, format domain.ExportFormat) (*domain.ExportResult, error) {
	var result *domain.ExportResult
	err := s.withSession(ctx, id, func(session *Session) error {
		var err error
		result, err = s.exporter.Export(format, session.cart.GroupByRetailerThenCategory(), session.cart.TotalPrice())
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		log.Printf("[EXPORT] Session %s: %s export failed: %v", id, format, err)
	}
	return result, err
}

func (s *SessionService) cartCommand(ctx context.Context, id string, fn func(cart *Cart) int) (*CartView, error) {
	var view *CartView
	err := s.withSession(ctx, id, func(session *Session) error {
		removed := fn(session.cart)
		view = buildCartView(session)
		view.Removed = removed
		return nil
	})
	return view, err
}

func (s *SessionService) withSession(ctx context.Context, id string, fn func(session *Session) error) error {
	if id == "" {
		return domain.ErrInvalidRequest
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return fn(session)
}

func buildCartView(session *Session) *CartView {
	cart := session.cart
	view := &CartView{
		SessionID: session.ID,
		Filter:    session.Filter,
		Items:     cart.Len(),
		Total:     cart.TotalPrice(),
		Groups:    cart.GroupByRetailerThenCategory(),
		Purchased: make([]PurchasedFlag, 0),
	}

	// Flags listed in cart order, one per distinct key
	seen := make(map[domain.PurchaseKey]bool)
	for _, item := range cart.Items() {
		key := item.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		view.Purchased = append(view.Purchased, PurchasedFlag{PurchaseKey: key, Purchased: cart.IsPurchased(key)})
	}
	return view
}
