// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"wallet-ledger/internal/api/middleware"
	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/service"
	"wallet-ledger/internal/util" // For custom errors
)

// MaxBodyBytes caps request bodies accepted by the JSON endpoints.
const MaxBodyBytes = 1 << 20

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *WalletHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses. Store faults and unknown errors are
// logged in full and reported without detail.
func (h *WalletHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var notFound *util.NotFoundError
	var forbidden *util.ForbiddenError
	var invalid *util.ValidationError

	switch {
	case errors.As(err, &notFound):
		statusCode = http.StatusNotFound
		message = notFound.Error()
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case errors.As(err, &forbidden):
		statusCode = http.StatusForbidden
		message = forbidden.Error()
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Forbidden"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrSameWalletTransfer):
		statusCode = http.StatusBadRequest
		message = "Cannot transfer to the same wallet"
	case util.IsError(err, util.ErrDuplicateName):
		statusCode = http.StatusConflict
		message = "Wallet with this name already exists"
	case errors.As(err, &invalid):
		statusCode = http.StatusUnprocessableEntity
		message = invalid.Error()
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		message = util.ErrInvalidInput.Error()
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// callerID returns the authenticated owner id. The router only mounts wallet
// routes behind the authenticator, so a missing id is a wiring error.
func (h *WalletHandler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthorized)
		return uuid.Nil, false
	}
	return ownerID, true
}

// walletIDParam parses the named URL parameter as a wallet id.
func (h *WalletHandler) walletIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.respondWithError(w, util.NewValidationError(errors.New(name+" must be a UUID")))
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON decodes the request body into dst, rejecting unknown fields and bodies over MaxBodyBytes.
func (h *WalletHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var invalid *util.ValidationError
		if errors.As(err, &invalid) {
			h.respondWithError(w, err)
			return false
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondWithJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		h.respondWithError(w, util.NewValidationError(errors.New("malformed JSON body")))
		return false
	}
	return true
}

// CreateWalletRequest represents the request body for wallet creation.
type CreateWalletRequest struct {
	Name string `json:"name"`
}

// CreateWallet handles the create wallet request.
// POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req CreateWalletRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.CreateWallet(r.Context(), req.Name, ownerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, domain.WalletSummary{ID: id, Name: strings.TrimSpace(req.Name)})
}

// ListWallets handles the list wallets request for the caller.
// GET /wallets
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	wallets, err := h.service.ListWallets(r.Context(), ownerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, wallets)
}

// GetWallet handles the get wallet request. Only the owner may see a wallet.
// GET /wallets/{walletID}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.walletIDParam(w, r, "walletID")
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), walletID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if !wallet.OwnedBy(ownerID) {
		h.respondWithError(w, util.NewForbidden("user does not own the wallet"))
		return
	}

	h.respondWithJSON(w, http.StatusOK, wallet)
}

// ValueRequest represents the request body for deposit and transfer.
type ValueRequest struct {
	Value *domain.Money `json:"value"`
}

func (h *WalletHandler) decodeValue(w http.ResponseWriter, r *http.Request) (domain.Money, bool) {
	var req ValueRequest
	if !h.decodeJSON(w, r, &req) {
		return domain.Money{}, false
	}
	if req.Value == nil {
		h.respondWithError(w, util.NewValidationError(errors.New("value is required")))
		return domain.Money{}, false
	}
	return *req.Value, true
}

// Deposit handles the deposit money request. Anyone may deposit into any wallet.
// POST /wallets/{walletID}/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.walletIDParam(w, r, "walletID")
	if !ok {
		return
	}
	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	result, err := h.service.Deposit(r.Context(), walletID, value, callerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result)
}

// Transfer handles the transfer money request.
// POST /wallets/{walletID}/transfer-to/{recipientID}
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	senderID, ok := h.walletIDParam(w, r, "walletID")
	if !ok {
		return
	}
	recipientID, ok := h.walletIDParam(w, r, "recipientID")
	if !ok {
		return
	}
	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	result, err := h.service.Transfer(r.Context(), senderID, recipientID, value, callerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result)
}
