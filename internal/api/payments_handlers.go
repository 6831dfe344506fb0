package api

import (
	"net/http"

	"github.com/saminkc999/coinledger/internal/domain"
)

type recordPaymentRequest struct {
	Amount number  `json:"amount"`
	Method string  `json:"method"`
	Note   *string `json:"note"`
}

type paymentResponse struct {
	OK      bool           `json:"ok"`
	Payment domain.Payment `json:"payment"`
	Totals  domain.Totals  `json:"totals"`
}

type totalsResponse struct {
	OK     bool          `json:"ok"`
	Totals domain.Totals `json:"totals"`
}

// ListPaymentsHandler handles GET /payments
func (h *HandlerProvider) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	payments, err := h.ledger.ListPayments(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

// GetTotalsHandler handles GET /totals
func (h *HandlerProvider) GetTotalsHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.GetTotals(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

// RecordPaymentHandler handles POST /payments
func (h *HandlerProvider) RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var note string
	if req.Note != nil {
		note = *req.Note
	}

	receipt, err := h.ledger.RecordPayment(r.Context(), float64(req.Amount), domain.Method(req.Method), note)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, paymentResponse{OK: true, Payment: receipt.Payment, Totals: receipt.Totals})
}

// ResetHandler handles POST /reset
func (h *HandlerProvider) ResetHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.ResetAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totalsResponse{OK: true, Totals: totals})
}

// RecalcHandler handles POST /recalc
func (h *HandlerProvider) RecalcHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.RecalcTotals(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totalsResponse{OK: true, Totals: totals})
}
