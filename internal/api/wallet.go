package api

import (
	"net/http"

	"github.com/idea404/bos-commerce/internal/wallet"
)

// WalletHandler exposes the caller's own balance.
type WalletHandler struct {
	Wallet *wallet.Wallet
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"` // yocto units, decimal string
}

// Balance handles GET /api/wallet.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	balance, err := h.Wallet.Balance(r.Context(), claims.Account)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read balance")
		return
	}

	jsonResponse(w, http.StatusOK, balanceResponse{
		Account: claims.Account,
		Balance: balance.String(),
	})
}
