package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kumunzee/villagebank/pkg/auth"
	"github.com/kumunzee/villagebank/pkg/config"
	"github.com/kumunzee/villagebank/pkg/ledger"
	"github.com/kumunzee/villagebank/pkg/models"
	"github.com/kumunzee/villagebank/pkg/store"
)

const sessionCookie = "session"

type contextKey string

const memberContextKey contextKey = "member"

// Server wires the ledger and auth services to the HTTP routes.
type Server struct {
	ledger  *ledger.Ledger
	auth    *auth.Service
	storage store.Storage
	logger  *logrus.Logger
}

func NewServer(s store.Storage, sessionTTL time.Duration, logger *logrus.Logger) *Server {
	return &Server{
		ledger:  ledger.NewLedger(s, logger),
		auth:    auth.NewService(s, sessionTTL, logger),
		storage: s,
		logger:  logger,
	}
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/login", s.loginHandler).Methods("POST")
	r.HandleFunc("/auth/logout", s.logoutHandler).Methods("POST")

	r.HandleFunc("/members", s.requireAdmin(s.listMembersHandler)).Methods("GET")
	r.HandleFunc("/members", s.requireAdmin(s.createMemberHandler)).Methods("POST")

	r.HandleFunc("/savings", s.requireAdmin(s.listSavingsHandler)).Methods("GET")
	r.HandleFunc("/savings", s.requireAdmin(s.recordSavingsHandler)).Methods("POST")

	r.HandleFunc("/loans", s.requireAuth(s.listLoansHandler)).Methods("GET")
	r.HandleFunc("/loans", s.requireAdmin(s.createLoanHandler)).Methods("POST")
	r.HandleFunc("/loans/{id}", s.requireAuth(s.getLoanHandler)).Methods("GET")
	r.HandleFunc("/loans/{id}/repayments", s.requireAuth(s.listRepaymentsHandler)).Methods("GET")
	r.HandleFunc("/loans/{id}/repayments", s.requireAdmin(s.recordRepaymentHandler)).Methods("POST")

	r.HandleFunc("/penalties", s.requireAuth(s.listPenaltiesHandler)).Methods("GET")
	r.HandleFunc("/penalties", s.requireAdmin(s.recordPenaltyHandler)).Methods("POST")

	r.HandleFunc("/month-end/process", s.requireAdmin(s.processMonthEndHandler)).Methods("POST")

	r.HandleFunc("/dashboard", s.requireAuth(s.dashboardHandler)).Methods("GET")

	return r
}

// ---- middleware ----

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		member, err := s.auth.Authenticate(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), memberContextKey, member)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if currentMember(r).Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "Unauthorized")
			return
		}
		next(w, r)
	})
}

func currentMember(r *http.Request) *models.Member {
	return r.Context().Value(memberContextKey).(*models.Member)
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain sentinels to client statuses; anything
// else is an internal failure and the detail stays out of the response.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrBelowMinimumSavings),
		errors.Is(err, models.ErrInvalidPIN),
		errors.Is(err, models.ErrPhoneTaken),
		errors.Is(err, models.ErrRepaymentExceedsBalance),
		errors.Is(err, models.ErrMonthAlreadyClosed),
		errors.Is(err, models.ErrNoMembers):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.WithError(err).Error("Internal error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseMonth accepts a full date or a year-month and returns it as
// given; normalization to the first of the month happens in the ledger.
func parseMonth(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01", value)
}

// ---- auth ----

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		PIN   string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Phone == "" || req.PIN == "" {
		writeError(w, http.StatusBadRequest, "Phone and PIN are required")
		return
	}

	member, sessionID, err := s.auth.Login(req.Phone, req.PIN)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(auth.DefaultSessionTTL),
	})
	writeJSON(w, http.StatusOK, map[string]any{"member": member})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.auth.Logout(cookie.Value); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---- members ----

func (s *Server) listMembersHandler(w http.ResponseWriter, r *http.Request) {
	members, err := s.ledger.GetAllMembers()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (s *Server) createMemberHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string      `json:"name"`
		Phone string      `json:"phone"`
		PIN   string      `json:"pin"`
		Role  models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Phone == "" || req.PIN == "" {
		writeError(w, http.StatusBadRequest, "Name, phone, and PIN are required")
		return
	}

	member, err := s.ledger.RegisterMember(req.Name, req.Phone, req.PIN, req.Role)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"member": member})
}

// ---- savings ----

func (s *Server) listSavingsHandler(w http.ResponseWriter, r *http.Request) {
	month := time.Now()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := parseMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = m
	}

	savings, err := s.ledger.GetSavingsForMonth(month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"savings": savings})
}

func (s *Server) recordSavingsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID uuid.UUID       `json:"member_id"`
		Amount   decimal.Decimal `json:"amount"`
		Month    string          `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month")
		return
	}

	record, err := s.ledger.RecordSavings(req.MemberID, req.Amount, month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"saving": record})
}

// ---- loans ----

func (s *Server) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	member := currentMember(r)

	var loans []*models.Loan
	var err error
	if member.Role == models.RoleAdmin {
		loans, err = s.ledger.GetAllLoans()
	} else {
		loans, err = s.ledger.GetLoansForMember(member.ID)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

func (s *Server) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID          uuid.UUID       `json:"member_id"`
		Principal         decimal.Decimal `json:"principal"`
		DisbursementMonth string          `json:"disbursement_month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	month, err := parseMonth(req.DisbursementMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid disbursement month")
		return
	}

	loan, err := s.ledger.DisburseLoan(req.MemberID, req.Principal, month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"loan": loan})
}

func (s *Server) loanFromRequest(w http.ResponseWriter, r *http.Request) *models.Loan {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid loan ID")
		return nil
	}
	loan, err := s.ledger.GetLoan(loanID)
	if err != nil {
		s.writeDomainError(w, err)
		return nil
	}
	member := currentMember(r)
	if member.Role != models.RoleAdmin && loan.MemberID != member.ID {
		writeError(w, http.StatusForbidden, "Unauthorized")
		return nil
	}
	return loan
}

func (s *Server) getLoanHandler(w http.ResponseWriter, r *http.Request) {
	loan := s.loanFromRequest(w, r)
	if loan == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loan": loan})
}

func (s *Server) listRepaymentsHandler(w http.ResponseWriter, r *http.Request) {
	loan := s.loanFromRequest(w, r)
	if loan == nil {
		return
	}
	repayments, err := s.ledger.GetRepaymentsForLoan(loan.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repayments": repayments})
}

func (s *Server) recordRepaymentHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	var req struct {
		Amount       decimal.Decimal `json:"amount"`
		PaymentMonth string          `json:"payment_month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	month, err := parseMonth(req.PaymentMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment month")
		return
	}

	repayment, err := s.ledger.RecordRepayment(loanID, req.Amount, month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "Repayment recorded and interest distributed",
		"repayment": repayment,
	})
}

// ---- penalties ----

func (s *Server) listPenaltiesHandler(w http.ResponseWriter, r *http.Request) {
	member := currentMember(r)

	if member.Role != models.RoleAdmin {
		penalties, err := s.storage.GetPenaltiesForMember(member.ID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"penalties": penalties})
		return
	}

	month := time.Now()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := parseMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = m
	}
	penalties, err := s.ledger.GetPenaltiesForMonth(month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"penalties": penalties})
}

func (s *Server) recordPenaltyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID uuid.UUID       `json:"member_id"`
		Amount   decimal.Decimal `json:"amount"`
		Month    string          `json:"month"`
		Reason   string          `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month")
		return
	}

	penalty, err := s.ledger.RecordPenalty(req.MemberID, req.Amount, month, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"penalty": penalty})
}

// ---- month end ----

func (s *Server) processMonthEndHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month")
		return
	}

	if err := s.ledger.ProcessMonthEnd(month); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Month-end processed successfully. Penalties distributed and admin fees deducted.",
	})
}

// ---- dashboard ----

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	member := currentMember(r)
	summary, err := s.ledger.Summary(member.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member_name": member.Name,
		"summary":     summary,
	})
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	sqliteStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	server := NewServer(sqliteStore, cfg.SessionTTL, logger)

	// Nightly sweep of expired sessions.
	c := cron.New()
	if _, err := c.AddFunc("@daily", server.auth.Sweep); err != nil {
		logger.Fatalf("Failed to schedule session sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	logger.Infof("Server starting on %s", cfg.ListenAddr)
	logger.Fatal(http.ListenAndServe(cfg.ListenAddr, server.router()))
}
