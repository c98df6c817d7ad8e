package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/account-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/account-ledger-system/internal/models"
)

// APIHandler is a thin REST adapter over the ledger engine. Its only job
// is parsing requests and mapping engine failure kinds to status codes.
type APIHandler struct {
	ledger         *ledger.Ledger
	store          interfaces.LedgerStore
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(ledgerService *ledger.Ledger, store interfaces.LedgerStore, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		ledger:         ledgerService,
		store:          store,
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

func (h *APIHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/api/accounts", h.CreateAccount).Methods(http.MethodPost)
	r.HandleFunc("/api/accounts/{accountNumber}", h.GetAccount).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{accountNumber}/balance", h.GetBalance).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{accountNumber}/transactions", h.ListTransactions).Methods(http.MethodGet)

	r.HandleFunc("/api/transactions/deposit", h.Deposit).Methods(http.MethodPost)
	r.HandleFunc("/api/transactions/withdraw", h.Withdraw).Methods(http.MethodPost)
	r.HandleFunc("/api/transactions/transfer", h.Transfer).Methods(http.MethodPost)

	return r
}

func (h *APIHandler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

type createAccountRequest struct {
	AccountNumber string `json:"account_number"`
	Currency      string `json:"currency,omitempty"`
}

type moveRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Description   string          `json:"description,omitempty"`
}

type transferRequest struct {
	SourceAccount string          `json:"source_account"`
	TargetAccount string          `json:"target_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Description   string          `json:"description,omitempty"`
}

type balanceResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccountNumber == "" {
		h.sendError(w, http.StatusBadRequest, "account_number is required")
		return
	}

	currency, ok := h.parseCurrency(req.Currency)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "unknown currency code: "+req.Currency)
		return
	}

	account, err := h.ledger.CreateAccount(ctx, req.AccountNumber, currency)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

func (h *APIHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	account, err := h.ledger.GetAccount(ctx, mux.Vars(r)["accountNumber"])
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

func (h *APIHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	account, err := h.ledger.GetAccount(ctx, mux.Vars(r)["accountNumber"])
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		Currency:      string(account.Currency),
	})
}

func (h *APIHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	accountNumber := mux.Vars(r)["accountNumber"]
	query := r.URL.Query()

	// No pagination params means the full newest-first sequence.
	if query.Get("page") == "" && query.Get("size") == "" {
		transactions, err := h.ledger.ListTransactions(ctx, accountNumber)
		if err != nil {
			h.mapError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, transactions)
		return
	}

	page := parseIntDefault(query.Get("page"), 0)
	size := parseIntDefault(query.Get("size"), 20)

	result, err := h.ledger.ListTransactionsPage(ctx, accountNumber, page, size)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	currency, ok := h.parseCurrency(req.Currency)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "unknown currency code: "+req.Currency)
		return
	}

	tx, err := h.ledger.Deposit(ctx, req.AccountNumber, req.Amount, currency, req.Description)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *APIHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	currency, ok := h.parseCurrency(req.Currency)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "unknown currency code: "+req.Currency)
		return
	}

	tx, err := h.ledger.Withdraw(ctx, req.AccountNumber, req.Amount, currency, req.Description)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *APIHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	currency, ok := h.parseCurrency(req.Currency)
	if !ok {
		h.sendError(w, http.StatusBadRequest, "unknown currency code: "+req.Currency)
		return
	}

	tx, err := h.ledger.Transfer(ctx, req.SourceAccount, req.TargetAccount, req.Amount, currency, req.Description)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// parseCurrency resolves an optional currency code, defaulting when empty.
func (h *APIHandler) parseCurrency(code string) (models.Currency, bool) {
	if code == "" {
		return models.DefaultCurrency, true
	}
	return models.CurrencyFromCode(code)
}

// mapError translates engine failure kinds into status codes. The mapping
// is mechanical: every kind the engine can return has exactly one row.
func (h *APIHandler) mapError(w http.ResponseWriter, err error) {
	var unsupported *ledger.UnsupportedCurrencyError
	var insufficient *ledger.InsufficientFundsError

	switch {
	case errors.Is(err, interfaces.ErrAccountNotFound):
		h.sendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, interfaces.ErrDuplicateAccount),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccount),
		errors.As(err, &unsupported),
		errors.As(err, &insufficient):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interfaces.ErrAccountBusy):
		w.Header().Set("Retry-After", "1")
		h.sendError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("request failed", slog.String("error", err.Error()))
		h.sendError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *APIHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

func (h *APIHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encoding failed", slog.String("error", err.Error()))
	}
}

func parseIntDefault(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
