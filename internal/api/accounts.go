package api

import (
	"database/sql"
	"net/http"

	"github.com/idea404/bos-commerce/internal/model"
	"github.com/idea404/bos-commerce/internal/store"
)

// AccountsHandler exposes read-only projections of the ownership index.
type AccountsHandler struct {
	DB *sql.DB
}

// List handles GET /api/accounts: the roster of every account that has ever
// held an item, in first-seen order.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.Accounts(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	jsonResponse(w, http.StatusOK, accounts)
}

// Items handles GET /api/accounts/{account}/items: the item ids an account
// currently holds, in acquisition order.
func (h *AccountsHandler) Items(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")

	ids, err := store.OwnedItems(r.Context(), h.DB, account)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list owned items")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	jsonResponse(w, http.StatusOK, model.AccountItems{Account: account, ItemIDs: ids})
}
