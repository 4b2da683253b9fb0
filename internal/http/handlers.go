package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"reikningar/internal/assistant"
	"reikningar/internal/core"
	"reikningar/internal/log"
	"reikningar/internal/report"
	"reikningar/internal/services"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	query, err := billQueryFromRequest(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	bills, err := query.Apply(s.state.Snapshot().Bills)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	if limit > 0 && len(bills) > limit {
		bills = bills[:limit]
	}

	out := billsResponse{Count: len(bills), Bills: make([]billDTO, 0, len(bills))}
	for _, b := range bills {
		out.Bills = append(out.Bills, toBillDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var in services.ManualBill
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, log.OpIngest, err)
		return
	}
	in.Creditor = sanitizeInput(in.Creditor)
	in.Date = sanitizeInput(in.Date)
	in.Amount = sanitizeInput(in.Amount)

	bill, inserted, err := s.ingest.AddManualBill(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpIngest, err)
		return
	}
	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, createBillResponse{Bill: toBillDTO(bill), Inserted: inserted})
}

func (s *Server) handleSetRecurring(w http.ResponseWriter, r *http.Request) {
	var in recurringRequest
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if in.Recurring == nil {
		s.writeError(w, r, log.OpUpdate, fmt.Errorf("%w: recurring is required", core.ErrMalformedInput))
		return
	}
	id, err := services.ResolveBillID(s.state.Snapshot().Bills, sanitizeInput(r.PathValue("id")))
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.ingest.SetRecurring(r.Context(), id, *in.Recurring); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := services.ResolveBillID(s.state.Snapshot().Bills, sanitizeInput(r.PathValue("id")))
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.ingest.DeleteBill(r.Context(), id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	txs := s.state.Snapshot().Transactions
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	out := transactionsResponse{Count: len(txs), Transactions: make([]transactionDTO, 0, len(txs))}
	for _, t := range txs {
		out.Transactions = append(out.Transactions, toTransactionDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpload ingests a single multipart "file" field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "document too large", RequestID: requestIDFromHeader(r)})
			return
		}
		s.writeError(w, r, log.OpIngest, fmt.Errorf("%w: missing file field: %v", core.ErrMalformedInput, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, log.OpIngest, fmt.Errorf("%w: reading upload: %v", core.ErrMalformedInput, err))
		return
	}

	name := filepath.Base(sanitizeInput(header.Filename))
	res, err := s.ingest.IngestDocument(r.Context(), name, data)
	if err != nil {
		s.writeError(w, r, log.OpIngest, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewsResponse{Views: report.ViewNames()})
}

// handleView renders an analytics view. Views with nothing to aggregate
// answer 200 with no_data set. Frames are cached per snapshot and day.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("view")
	snap := s.state.Snapshot()
	now := s.now()
	key := fmt.Sprintf("%s|%d|%s", name, snap.Version, now.Format(time.DateOnly))
	frame, err := s.views.GetOrCompute(key, func() (report.Frame, error) {
		return report.BuildView(name, snap, now)
	})
	if err != nil {
		s.writeError(w, r, log.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "assistant not configured", RequestID: requestIDFromHeader(r)})
		return
	}
	var in askRequest
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, log.OpAsk, err)
		return
	}
	snap := s.state.Snapshot()
	answer, err := s.assistant.Ask(r.Context(), sanitizeInput(in.Question), snap.Bills, snap.Transactions)
	if err != nil {
		s.writeError(w, r, log.OpAsk, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Turns: s.assistant.History.Len()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeJSON(w, http.StatusOK, historyResponse{Turns: []assistant.Turn{}})
		return
	}
	turns := s.assistant.History.Turns()
	if turns == nil {
		turns = []assistant.Turn{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Turns: turns})
}

func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	if s.assistant != nil {
		s.assistant.History.Reset()
	}
	w.WriteHeader(http.StatusNoContent)
}
