package api

import (
	"database/sql"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/idea404/bos-commerce/internal/imaging"
	"github.com/idea404/bos-commerce/internal/market"
	"github.com/idea404/bos-commerce/internal/metrics"
	"github.com/idea404/bos-commerce/internal/model"
	"github.com/idea404/bos-commerce/internal/store"
	"github.com/idea404/bos-commerce/internal/wallet"
)

// ItemsHandler exposes the marketplace operations over HTTP. Engine outcomes
// (including guard rejections) are application-level results returned with
// HTTP 200; only fatal engine errors surface as HTTP 500.
type ItemsHandler struct {
	DB       *sql.DB
	Engine   *market.Engine
	Wallet   *wallet.Wallet
	Contract string
}

// Item fields are decoded as `any` on purpose: the engine type-checks them
// itself, so a caller sending e.g. a number where text is expected gets the
// operation's guard message rather than a transport error.
type createItemRequest struct {
	Name        any    `json:"name"`
	Description any    `json:"description"`
	Image       any    `json:"image"`
	Deposit     string `json:"deposit"`
}

type listItemRequest struct {
	Price any `json:"price"`
}

type purchaseItemRequest struct {
	Deposit string `json:"deposit"`
}

// parseDeposit parses an attached payment in yocto units. Empty means zero.
func parseDeposit(s string) (*big.Int, bool) {
	if s == "" {
		return big.NewInt(0), true
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

// attachDeposit moves the attached payment from the caller to the contract
// account before the operation runs, mirroring host economics: the deposit
// stays with the contract on a guard rejection and comes back only if the
// operation fails fatally.
func (h *ItemsHandler) attachDeposit(r *http.Request, caller string, deposit *big.Int) error {
	if deposit.Sign() == 0 {
		return nil
	}
	return h.Wallet.Move(r.Context(), caller, h.Contract, deposit)
}

func (h *ItemsHandler) refundDeposit(r *http.Request, caller string, deposit *big.Int) {
	if deposit.Sign() == 0 {
		return
	}
	if err := h.Wallet.Move(r.Context(), h.Contract, caller, deposit); err != nil {
		slog.Error("refunding deposit", "account", caller, "amount", deposit.String(), "error", err)
	}
}

// List handles GET /api/items: every non-deleted item in id order.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.GetItems(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items (payable).
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deposit, ok := parseDeposit(req.Deposit)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid deposit")
		return
	}
	if err := h.attachDeposit(r, claims.Account, deposit); err != nil {
		jsonError(w, http.StatusBadRequest, "insufficient funds for deposit")
		return
	}

	call := market.Call{Caller: claims.Account, Deposit: deposit}
	outcome, err := h.Engine.CreateItem(r.Context(), call, req.Name, req.Description, req.Image)
	if err != nil {
		slog.Error("create_item failed", "account", claims.Account, "error", err)
		metrics.RecordOperationError("create_item")
		h.refundDeposit(r, claims.Account, deposit)
		jsonError(w, http.StatusInternalServerError, "operation failed")
		return
	}

	metrics.RecordOperation("create_item", outcome.Success)
	jsonResponse(w, http.StatusOK, outcome)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	call := market.Call{Caller: claims.Account, Deposit: big.NewInt(0)}
	outcome, err := h.Engine.DeleteItem(r.Context(), call, r.PathValue("id"))
	if err != nil {
		slog.Error("delete_item failed", "account", claims.Account, "error", err)
		metrics.RecordOperationError("delete_item")
		jsonError(w, http.StatusInternalServerError, "operation failed")
		return
	}

	metrics.RecordOperation("delete_item", outcome.Success)
	jsonResponse(w, http.StatusOK, outcome)
}

// ListForSale handles POST /api/items/{id}/list.
func (h *ItemsHandler) ListForSale(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	var req listItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	call := market.Call{Caller: claims.Account, Deposit: big.NewInt(0)}
	outcome, err := h.Engine.ListItem(r.Context(), call, r.PathValue("id"), req.Price)
	if err != nil {
		slog.Error("list_item failed", "account", claims.Account, "error", err)
		metrics.RecordOperationError("list_item")
		jsonError(w, http.StatusInternalServerError, "operation failed")
		return
	}

	metrics.RecordOperation("list_item", outcome.Success)
	jsonResponse(w, http.StatusOK, outcome)
}

// Delist handles POST /api/items/{id}/delist.
func (h *ItemsHandler) Delist(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	call := market.Call{Caller: claims.Account, Deposit: big.NewInt(0)}
	outcome, err := h.Engine.DelistItem(r.Context(), call, r.PathValue("id"))
	if err != nil {
		slog.Error("delist_item failed", "account", claims.Account, "error", err)
		metrics.RecordOperationError("delist_item")
		jsonError(w, http.StatusInternalServerError, "operation failed")
		return
	}

	metrics.RecordOperation("delist_item", outcome.Success)
	jsonResponse(w, http.StatusOK, outcome)
}

// Purchase handles POST /api/items/{id}/purchase (payable).
func (h *ItemsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	var req purchaseItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deposit, ok := parseDeposit(req.Deposit)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid deposit")
		return
	}
	if err := h.attachDeposit(r, claims.Account, deposit); err != nil {
		jsonError(w, http.StatusBadRequest, "insufficient funds for deposit")
		return
	}

	call := market.Call{Caller: claims.Account, Deposit: deposit}
	outcome, err := h.Engine.PurchaseItem(r.Context(), call, r.PathValue("id"))
	if err != nil {
		slog.Error("purchase_item failed", "account", claims.Account, "error", err)
		metrics.RecordOperationError("purchase_item")
		h.refundDeposit(r, claims.Account, deposit)
		jsonError(w, http.StatusInternalServerError, "operation failed")
		return
	}

	metrics.RecordOperation("purchase_item", outcome.Success)
	jsonResponse(w, http.StatusOK, outcome)
}

// Image handles GET /api/items/{id}/image: renders a thumbnail when the
// item's image field is an embedded data URI.
func (h *ItemsHandler) Image(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.Status == model.StatusDeleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	_, data, err := imaging.ParseDataURI(item.Image)
	if err != nil {
		// Plain URLs (or junk) are the client's problem to resolve.
		jsonError(w, http.StatusNotFound, "no renderable image")
		return
	}

	thumb, err := imaging.Thumbnail(data)
	if err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "image data is not decodable")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(thumb)
}

// History handles GET /api/items/{id}/history: settlement records for one
// item, newest first.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	history, err := store.ItemHistory(r.Context(), h.DB, item.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.Purchase{}
	}
	jsonResponse(w, http.StatusOK, history)
}
