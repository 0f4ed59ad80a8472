package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"

	"decorprice/internal"
	"decorprice/internal/pricing"
	"decorprice/internal/util"
)

type RankedCatalogGetter interface {
	GetRankedCatalog(ctx context.Context, focusID int, onlyAvailable bool) (internal.RankedCatalog, error)
}

type CategoryLister interface {
	ListCategories(ctx context.Context) ([]internal.CategorySummary, error)
}

// Handler serves the price comparison over JSON. categories may be nil when
// no snapshot is configured.
type Handler struct {
	ranker        RankedCatalogGetter
	categories    CategoryLister
	onlyAvailable bool
	log           zerolog.Logger
}

func NewHandler(ranker RankedCatalogGetter, categories CategoryLister, onlyAvailable bool, log zerolog.Logger) *Handler {
	return &Handler{
		ranker:        ranker,
		categories:    categories,
		onlyAvailable: onlyAvailable,
		log:           log.With().Str("component", "httpapi").Logger(),
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/decors/{id}/price-comparison", h.priceComparison)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (h *Handler) priceComparison(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	onlyAvailable := h.onlyAvailable
	if raw := r.URL.Query().Get("onlyAvailable"); raw != "" {
		parsed, ok := util.ParseBool(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "onlyAvailable must be a boolean")
			return
		}
		onlyAvailable = parsed
	}

	ranked, err := h.ranker.GetRankedCatalog(r.Context(), id, onlyAvailable)
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.log.Error().Err(err).Int("id", id).Msg("price comparison failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.categories == nil {
		writeError(w, http.StatusNotFound, "no snapshot configured")
		return
	}
	cats, err := h.categories.ListCategories(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list categories failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cats == nil {
		cats = []internal.CategorySummary{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrMalformedCategoryFetch):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
