package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/usecase"
)

const serviceVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalogs *usecase.CatalogService
	sessions *usecase.SessionService
}

// NewHandler creates a new HTTP handler. Nil services make their endpoints answer 501.
func NewHandler(catalogs *usecase.CatalogService, sessions *usecase.SessionService) *Handler {
	return &Handler{
		catalogs: catalogs,
		sessions: sessions,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	products := 0
	if h.catalogs != nil {
		if catalog, err := h.catalogs.Current(); err == nil {
			products = catalog.Len()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "pricelens-backend",
		"version":  serviceVersion,
		"products": products,
	})
}

// addToCartRequest is the body of POST /sessions/:id/cart
type addToCartRequest struct {
	ProductID      *int  `json:"productId" binding:"required"`
	CatalogVersion int64 `json:"catalogVersion"` // Optional; rejects ids from a replaced catalog
}

// purchasedRequest is the body of PUT /sessions/:id/cart/purchased
type purchasedRequest struct {
	domain.PurchaseKey
	Purchased *bool `json:"purchased"`
}

// CatalogStatus reports the size and load diagnostics of the active catalog.
// An empty catalog is reported, not treated as an error.
func (h *Handler) CatalogStatus(c *gin.Context) {
	if !h.requireCatalogs(c) {
		return
	}

	report := h.catalogs.LastReport()
	catalog, err := h.catalogs.Current()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":   "empty",
			"products": 0,
			"report":   report,
			"warnings": report.Warnings(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "loaded",
		"version":    catalog.Version,
		"products":   catalog.Len(),
		"loadedAt":   catalog.LoadedAt,
		"categories": usecase.Categories(catalog),
		"report":     report,
		"warnings":   report.Warnings(),
	})
}

// ListCategories returns the distinct categories of the catalog
func (h *Handler) ListCategories(c *gin.Context) {
	if !h.requireCatalogs(c) {
		return
	}
	catalog, err := h.catalogs.Current()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": usecase.Categories(catalog)})
}

// ListTitles returns the distinct titles, optionally within one category
func (h *Handler) ListTitles(c *gin.Context) {
	if !h.requireCatalogs(c) {
		return
	}
	catalog, err := h.catalogs.Current()
	if err != nil {
		respondError(c, err)
		return
	}
	category := c.Query("category")
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"titles":   usecase.Titles(catalog, category),
	})
}

// ReloadCatalog rereads the data directory and replaces the catalog
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if !h.requireCatalogs(c) {
		return
	}

	catalog, err := h.catalogs.Load(c.Request.Context())
	report := h.catalogs.LastReport()
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCatalog) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":    err.Error(),
				"report":   report,
				"warnings": report.Warnings(),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "loaded",
		"version":  catalog.Version,
		"products": catalog.Len(),
		"loadedAt": catalog.LoadedAt,
		"report":   report,
		"warnings": report.Warnings(),
	})
}

// StartSession creates a session with an empty cart
func (h *Handler) StartSession(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}
	session, err := h.sessions.Start(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": session.ID,
		"createdAt": session.CreatedAt,
	})
}

// EndSession discards a session and its cart
func (h *Handler) EndSession(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}
	if err := h.sessions.End(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BrowseProducts applies the query filter for the session
func (h *Handler) BrowseProducts(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	var filter domain.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	view, err := h.sessions.ApplyFilter(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetCart returns the grouped cart, total and checklist flags
func (h *Handler) GetCart(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}
	h.respondCart(c)(h.sessions.Cart(c.Request.Context(), c.Param("id")))
}

// AddToCart adds one catalog product to the session cart
func (h *Handler) AddToCart(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	h.respondCart(c)(h.sessions.AddToCart(c.Request.Context(), c.Param("id"), *req.ProductID, req.CatalogVersion))
}

// ClearCart empties the session cart
func (h *Handler) ClearCart(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}
	h.respondCart(c)(h.sessions.ClearCart(c.Request.Context(), c.Param("id")))
}

// MarkPurchased sets or unsets the purchased flag of a cart entry
func (h *Handler) MarkPurchased(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	var req purchasedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	purchased := true
	if req.Purchased != nil {
		purchased = *req.Purchased
	}
	h.respondCart(c)(h.sessions.MarkPurchased(c.Request.Context(), c.Param("id"), req.PurchaseKey, purchased))
}

// RemovePurchased drops the items flagged as purchased
func (h *Handler) RemovePurchased(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}
	h.respondCart(c)(h.sessions.RemovePurchased(c.Request.Context(), c.Param("id")))
}

// ResetPurchased clears every purchased flag
func (h *Handler) ResetPurchased(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}
	h.respondCart(c)(h.sessions.ClearPurchased(c.Request.Context(), c.Param("id")))
}

// ExportCart serves the shopping list as a download
func (h *Handler) ExportCart(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	format, err := usecase.ParseExportFormat(c.DefaultQuery("format", string(domain.FormatText)))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.sessions.ExportCart(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	if len(result.Warnings) > 0 {
		c.Header("X-Export-Warnings", strings.Join(result.Warnings, "; "))
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *Handler) respondCart(c *gin.Context) func(*usecase.CartView, error) {
	return func(view *usecase.CartView, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func (h *Handler) requireCatalogs(c *gin.Context) bool {
	if h.catalogs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "catalog service not configured"})
		return false
	}
	return true
}

func (h *Handler) requireSessions(c *gin.Context) bool {
	if h.sessions == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "session service not configured"})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, domain.ErrEmptyCatalog):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedFormat), errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStaleCatalog):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEncoding):
		status = http.StatusUnprocessableEntity
	default:
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal server error"
	}

	c.JSON(status, gin.H{"error": message})
}
