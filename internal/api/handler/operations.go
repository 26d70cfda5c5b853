// internal/api/handler/operations.go
package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/util"
)

// ExternalDepositSender is written in the sender column for external deposits.
const ExternalDepositSender = "EXTERNAL_DEPOSIT"

var operationsCSVHeader = []string{"id", "sender_wallet_id", "recipient_wallet_id", "value", "timestamp"}

// Accepted layouts for from_timestamp/to_timestamp. Zone-less values are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ListOperations handles the wallet history export. The response is CSV unless
// the client asks for JSON in the Accept header.
// GET /wallets/{walletID}/operations?from_timestamp=&to_timestamp=&side=
func (h *WalletHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.walletIDParam(w, r, "walletID")
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := parseTimestamp(query.Get("from_timestamp"))
	if err != nil {
		h.respondWithError(w, util.NewValidationError(fmt.Errorf("from_timestamp: %w", err)))
		return
	}
	to, err := parseTimestamp(query.Get("to_timestamp"))
	if err != nil {
		h.respondWithError(w, util.NewValidationError(fmt.Errorf("to_timestamp: %w", err)))
		return
	}
	side, err := domain.ParseTransferSide(query.Get("side"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	transactions, err := h.service.ListOperations(r.Context(), walletID, from, to, side, callerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if wantsJSON(r) {
		h.respondWithJSON(w, http.StatusOK, transactions)
		return
	}

	filename := exportFilename(walletID, from, to, side)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename="+filename)
	w.WriteHeader(http.StatusOK)
	if err := writeOperationsCSV(w, transactions); err != nil {
		// Headers are already sent; all that is left is to log.
		h.logger.Error("Failed to write operations export", "wallet_id", walletID, "error", err)
	}
}

func writeOperationsCSV(w http.ResponseWriter, transactions []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(operationsCSVHeader); err != nil {
		return err
	}
	for _, tx := range transactions {
		sender := ExternalDepositSender
		if id, ok := tx.Sender.WalletID(); ok {
			sender = id.String()
		}
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			sender,
			tx.RecipientWalletID.String(),
			tx.Value.String(),
			tx.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportFilename names the export after the wallet and the filters applied.
func exportFilename(walletID uuid.UUID, from, to *time.Time, side *domain.TransferSide) string {
	parts := []string{walletID.String()}
	if from != nil {
		parts = append(parts, "from"+filenameTimestamp(*from))
	}
	if to != nil {
		parts = append(parts, "to"+filenameTimestamp(*to))
	}
	if side == nil {
		parts = append(parts, "both")
	} else {
		parts = append(parts, string(*side))
	}
	return "export-" + strings.Join(parts, "-") + ".csv"
}

func filenameTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02_15:04:05")
}

func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New("expected an RFC 3339 timestamp")
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}
