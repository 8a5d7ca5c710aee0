package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/waitline/waitline/internal/customer"
	"github.com/waitline/waitline/internal/queue"
	"github.com/waitline/waitline/internal/staff"
	"github.com/waitline/waitline/internal/tenant"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps engine errors onto HTTP statuses. Cross-tenant
// access already arrives as not-found from the repositories.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, queue.ErrTicketNotFound),
		errors.Is(err, queue.ErrQueueNotFound),
		errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, customer.ErrCustomerNotFound),
		errors.Is(err, staff.ErrStaffNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case queue.IsInvalidState(err):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, queue.ErrActiveTicket),
		errors.Is(err, queue.ErrNumberExhausted),
		errors.Is(err, queue.ErrConflict),
		errors.Is(err, tenant.ErrTenantExists),
		errors.Is(err, staff.ErrStaffExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, queue.ErrQueueFull),
		errors.Is(err, queue.ErrQueuePaused),
		errors.Is(err, queue.ErrEntryLimit):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, queue.ErrInvalidParty),
		errors.Is(err, queue.ErrInvalidPriority),
		errors.Is(err, queue.ErrMissingIdentity):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, staff.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
