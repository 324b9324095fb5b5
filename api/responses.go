package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"coinbank/domain/entities"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error          string `json:"error"`
	NextEligibleAt string `json:"next_eligible_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeLedgerError maps the ledger failure set onto HTTP statuses. Anything
// outside the set is an internal error and its detail stays out of the
// response body.
func writeLedgerError(w http.ResponseWriter, err error) {
	var alreadyClaimed *entities.AlreadyClaimedError
	switch {
	case errors.Is(err, entities.ErrInvalidInput),
		errors.Is(err, entities.ErrSelfPay),
		errors.Is(err, entities.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrAccountNotFound),
		errors.Is(err, entities.ErrServerNotFound),
		errors.Is(err, entities.ErrSenderNotFound),
		errors.Is(err, entities.ErrRecipientNotFound),
		errors.Is(err, entities.ErrNotLinked):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &alreadyClaimed):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:          alreadyClaimed.Error(),
			NextEligibleAt: alreadyClaimed.NextEligibleAt.Format(time.RFC3339),
		})
	default:
		log.WithError(err).Error("Ledger operation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
