package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/example/lastara-storefront/internal/captcha"
	"github.com/example/lastara-storefront/internal/command"
	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/query"
	"go.uber.org/zap"
)

const serverError = "Server error"

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, logger *zap.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		logger:       logger.Named("api"),
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts(r.Context())
	if err != nil {
		h.serverError(w, "list products", err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, found, err := h.queryHandler.GetProduct(r.PathValue("id"))
	if err != nil {
		h.serverError(w, "get product", err)
		return
	}
	if !found {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateProduct
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.cmdHandler.CreateProduct(r.Context(), cmd)
	if err != nil {
		h.productError(w, "create product", err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateProduct
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.ProductID = r.PathValue("id")

	p, err := h.cmdHandler.UpdateProduct(r.Context(), cmd)
	if err != nil {
		h.productError(w, "update product", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteProduct{ProductID: r.PathValue("id")}
	if err := h.cmdHandler.DeleteProduct(r.Context(), cmd); err != nil {
		h.productError(w, "delete product", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func (h *Handlers) productError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		respondJSONError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, product.ErrInvalidTitle),
		errors.Is(err, product.ErrInvalidWeight),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidImage):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		h.serverError(w, op, err)
	}
}

// Hero Slide Handlers

func (h *Handlers) GetSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.queryHandler.ListSlides(r.Context())
	if err != nil {
		h.serverError(w, "list slides", err)
		return
	}
	respondJSON(w, http.StatusOK, slides)
}

func (h *Handlers) CreateSlide(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateSlide
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.cmdHandler.CreateSlide(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, slide.ErrInvalidImage) {
			respondJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.serverError(w, "create slide", err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

func (h *Handlers) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteSlide{SlideID: r.PathValue("id")}
	if err := h.cmdHandler.DeleteSlide(r.Context(), cmd); err != nil {
		if errors.Is(err, slide.ErrSlideNotFound) {
			respondJSONError(w, "Not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "delete slide", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

// Newsletter Handlers

func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var cmd command.Subscribe
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.RemoteIP = clientIP(r)

	_, err := h.cmdHandler.Subscribe(r.Context(), cmd)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed successfully"})
	case errors.Is(err, subscription.ErrPhoneRequired):
		respondJSONError(w, "Phone is required", http.StatusBadRequest)
	case errors.Is(err, subscription.ErrInvalidPhone):
		respondJSONError(w, "Please enter a valid 10-digit mobile number", http.StatusBadRequest)
	case errors.Is(err, captcha.ErrMissingToken), errors.Is(err, captcha.ErrVerificationFailed):
		respondJSONError(w, "Verification failed", http.StatusBadRequest)
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		respondJSONError(w, "Already subscribed", http.StatusConflict)
	default:
		h.serverError(w, "subscribe", err)
	}
}

func (h *Handlers) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.queryHandler.ListSubscriptions()
	if err != nil {
		h.serverError(w, "list subscriptions", err)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

func (h *Handlers) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	respondJSONError(w, serverError, http.StatusInternalServerError)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
