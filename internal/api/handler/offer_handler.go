package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"credit-portal/internal/api/handler/dto"
	"credit-portal/internal/domain/offer"
	"credit-portal/internal/pkg/apperrors"
)

type OfferHandler struct {
	service offer.Service
	logger  *slog.Logger
}

func NewOfferHandler(s offer.Service, l *slog.Logger) *OfferHandler {
	if s == nil {
		panic("offer service cannot be nil")
	}
	return &OfferHandler{
		service: s,
		logger:  l.With("component", "OfferHandler"),
	}
}

// ListOffers handles GET /offers. Without query parameters it returns
// both catalogs in insertion order; with them it browses: text search,
// range bounds and single-key sorting.
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	query, err := parseCatalogQuery(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid catalog query", slog.Any("error", err))
		respondError(w, err)
		return
	}

	offers, err := h.service.BrowseCatalog(r.Context(), query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to browse catalog", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewOfferListResponse(offers))
}

// ListBankOffers handles GET /offers/bank
func (h *OfferHandler) ListBankOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.ListBank(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewOfferListResponse(offers))
}

// ListPrivateOffers handles GET /offers/private
func (h *OfferHandler) ListPrivateOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.ListPrivate(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewOfferListResponse(offers))
}

// SearchOffers handles GET /offers/search with the calculator-style
// criteria: kind plus optional minAmount, maxRate and minTerm.
func (h *OfferHandler) SearchOffers(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid search criteria", slog.Any("error", err))
		respondError(w, err)
		return
	}

	offers, err := h.service.SearchOffers(r.Context(), criteria)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewOfferListResponse(offers))
}

// GetOffer handles GET /offers/{offerID}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "offerID")
	if id == "" {
		respondError(w, fmt.Errorf("%w: offerID not found in URL path", apperrors.ErrInvalidArgument))
		return
	}

	o, err := h.service.GetOffer(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewOfferResponse(o))
}

func parseSearchCriteria(values url.Values) (offer.SearchCriteria, error) {
	criteria := offer.SearchCriteria{Kind: offer.KindAll}

	switch kind := values.Get("kind"); kind {
	case "", string(offer.KindAll):
	case string(offer.KindBankOnly):
		criteria.Kind = offer.KindBankOnly
	case string(offer.KindPrivateOnly):
		criteria.Kind = offer.KindPrivateOnly
	default:
		return criteria, fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidArgument, kind)
	}

	criteria.MinAmount = parseFloatParam(values, "minAmount")
	criteria.MaxInterestRate = parseFloatParam(values, "maxRate")
	criteria.MinTerm = parseIntParam(values, "minTerm")
	return criteria, nil
}

func parseCatalogQuery(values url.Values) (offer.CatalogQuery, error) {
	query := offer.CatalogQuery{SearchText: values.Get("search")}

	query.MinAmount = parseFloatParam(values, "minAmount")
	query.MaxAmount = parseFloatParam(values, "maxAmount")
	query.MinTerm = parseIntParam(values, "minTerm")
	query.MaxTerm = parseIntParam(values, "maxTerm")
	query.MinRate = parseFloatParam(values, "minRate")
	query.MaxRate = parseFloatParam(values, "maxRate")

	switch sortBy := values.Get("sortBy"); sortBy {
	case "":
	case string(offer.SortByName), string(offer.SortByAmount), string(offer.SortByTerm), string(offer.SortByRate):
		query.SortBy = offer.SortKey(sortBy)
	default:
		return query, fmt.Errorf("%w: unknown sortBy %q", apperrors.ErrInvalidArgument, sortBy)
	}

	switch order := values.Get("sortOrder"); order {
	case "", string(offer.SortAsc):
		query.SortOrder = offer.SortAsc
	case string(offer.SortDesc):
		query.SortOrder = offer.SortDesc
	default:
		return query, fmt.Errorf("%w: unknown sortOrder %q", apperrors.ErrInvalidArgument, order)
	}
	return query, nil
}

// Empty and non-numeric range values behave like a cleared form field:
// the bound is simply absent, never an error.
func parseFloatParam(values url.Values, name string) *float64 {
	v, err := strconv.ParseFloat(values.Get(name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseIntParam(values url.Values, name string) *int {
	v, err := strconv.Atoi(values.Get(name))
	if err != nil {
		return nil
	}
	return &v
}
