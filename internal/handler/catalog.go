package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/middleware"
	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/payment"
	"github.com/envis/envis/internal/service"
)

// ProductLister returns the public catalog.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// CheckoutCreator opens checkout sessions.
type CheckoutCreator interface {
	CreateSession(ctx context.Context, input service.CheckoutInput) (*payment.CheckoutSession, error)
}

// CatalogConfig holds the public settings of the catalog endpoints.
type CatalogConfig struct {
	// BaseURL is the configured site origin.
	BaseURL string
	// AllowedOrigins may also be used as redirect base when they are the
	// request Origin.
	AllowedOrigins []string
	// PublishableKey is exposed to the client for Stripe.js.
	PublishableKey string
}

// CatalogHandler serves products, checkout and the client payment config.
type CatalogHandler struct {
	responder
	products ProductLister
	checkout CheckoutCreator
	c        CatalogConfig
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(products ProductLister, checkout CheckoutCreator, c CatalogConfig, opts Options) *CatalogHandler {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	return &CatalogHandler{responder: newResponder(opts), products: products, checkout: checkout, c: c}
}

// Products handles GET /api/products.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.writeInternalError(w, r, "PRODUCTS_FETCH_FAILED", "Failed to fetch products", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToProductListResponse(products))
}

// Checkout handles POST /api/checkout.
func (h *CatalogHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if !h.decode(w, r, &req, nil) {
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), service.CheckoutInput{
		PriceID: req.PriceID,
		PlanID:  req.PlanID,
		BaseURL: h.redirectBase(r),
	})
	if err != nil {
		h.handleCheckoutError(w, r, err)
		return
	}

	h.logger.Info("checkout_session_created",
		slog.String("session_id", session.ID),
		slog.String("plan_id", req.PlanID),
	)
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{URL: session.URL, SessionID: session.ID})
}

// StripeConfig handles GET /api/stripe/config.
func (h *CatalogHandler) StripeConfig(w http.ResponseWriter, r *http.Request) {
	if h.c.PublishableKey == "" {
		h.writeError(w, http.StatusInternalServerError, "PAYMENTS_NOT_CONFIGURED", "Payments are not configured")
		return
	}
	writeJSON(w, http.StatusOK, dto.StripeConfigResponse{PublishableKey: h.c.PublishableKey})
}

// redirectBase returns the request Origin when it is the configured base
// URL or an allowed CORS origin, else the base URL.
func (h *CatalogHandler) redirectBase(r *http.Request) string {
	origin := strings.TrimSuffix(r.Header.Get("Origin"), "/")
	if origin == "" {
		return h.c.BaseURL
	}
	if strings.EqualFold(origin, h.c.BaseURL) || middleware.OriginAllowed(origin, h.c.AllowedOrigins) {
		return origin
	}
	return h.c.BaseURL
}

func (h *CatalogHandler) handleCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *service.PlanNotFoundError
	switch {
	case errors.As(err, &notFound):
		h.writeError(w, http.StatusBadRequest, "PLAN_NOT_FOUND", fmt.Sprintf(
			"Plan %q not found. Run \"envisctl seed-products\" to create billing products.", notFound.PlanID))
	case errors.Is(err, service.ErrPriceRequired):
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation error: priceId or planId is required")
	case errors.Is(err, service.ErrPaymentsNotConfigured):
		h.writeError(w, http.StatusInternalServerError, "PAYMENTS_NOT_CONFIGURED", "Payments are not configured")
	default:
		h.writeInternalError(w, r, "CHECKOUT_FAILED", "Failed to create checkout session", err)
	}
}
