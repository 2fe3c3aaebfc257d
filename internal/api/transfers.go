package api

import (
	"database/sql"
	"net/http"

	"github.com/idea404/bos-commerce/internal/model"
	"github.com/idea404/bos-commerce/internal/store"
)

// TransfersHandler exposes the settlement history.
type TransfersHandler struct {
	DB *sql.DB
}

// List handles GET /api/transfers: every completed purchase, newest first.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	purchases, err := store.ListPurchases(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	jsonResponse(w, http.StatusOK, purchases)
}
