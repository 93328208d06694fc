package handlers

import (
	"encoding/json"
	"net/http"

	"stip-taxii-backend/internal/domain/services"
	"stip-taxii-backend/internal/infrastructure/database/repository"
	"stip-taxii-backend/pkg/logger"
)

// AccountsHandler manages API caller accounts for operators.
type AccountsHandler struct {
	accounts *repository.AccountRepository
	auth     *services.AuthBackend
	logger   *logger.Logger
}

// NewAccountsHandler creates a new AccountsHandler
func NewAccountsHandler(accounts *repository.AccountRepository, auth *services.AuthBackend, log *logger.Logger) *AccountsHandler {
	return &AccountsHandler{
		accounts: accounts,
		auth:     auth,
		logger:   log.WithComponent("accounts"),
	}
}

type accountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Create handles POST /api/v1/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password are required"}`, http.StatusBadRequest)
		return
	}

	id, err := h.accounts.Create(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error().Err(err).Str("username", req.Username).Msg("failed to create account")
		http.Error(w, `{"error":"failed to create account"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id, "username": req.Username})
}

// Verify handles POST /api/v1/accounts/verify. Rejected credentials are a
// 401, never an error: this mirrors the backend contract the TAXII layer
// relies on.
func (h *AccountsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error().Err(err).Msg("identity check failed")
		http.Error(w, `{"error":"identity check failed"}`, http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": account.ID, "username": account.Username})
}
