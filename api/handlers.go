package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultDenomination = 1000

type loginRequest struct {
	UUID     string `json:"uuid" validate:"required"`
	Username string `json:"username" validate:"required,min=1,max=48"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type depositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type withdrawRequest struct {
	Count        int64 `json:"count" validate:"required,gt=0"`
	Denomination int64 `json:"denomination" validate:"omitempty,gt=0"`
}

type payRequest struct {
	To     string `json:"to" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type mutationResponse struct {
	NewBalance int64 `json:"new_balance"`
}

type withdrawResponse struct {
	Withdrawn    int64 `json:"withdrawn"`
	Denomination int64 `json:"denomination"`
	Count        int64 `json:"count"`
	NewBalance   int64 `json:"new_balance"`
}

type dailyResponse struct {
	Message    string `json:"message"`
	NewBalance int64  `json:"new_balance"`
}

type leaderboardEntry struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type registerRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=64"`
}

type registerResponse struct {
	ServerID int64  `json:"server_id"`
	GroupID  int64  `json:"group_id"`
	APIKey   string `json:"api_key"`
}

// decodeAndValidate unmarshals the request body into dst and runs the
// struct validation tags.
func (s *Server) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return s.validate.Struct(dst)
}

// handleLogin authenticates the game server by its API key, establishes a
// session for the player named in the body and returns a signed token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.ParseInt(r.Header.Get("X-Server-Id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid server credentials")
		return
	}
	apiKey := r.Header.Get("X-Server-Key")
	if apiKey == "" {
		writeError(w, http.StatusUnauthorized, "invalid server credentials")
		return
	}

	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player uuid")
		return
	}

	server, err := s.registry.GetServer(r.Context(), serverID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if server == nil || !VerifyAPIKey(apiKey, s.cfg.ServerAPISalt, server.APIKeyHash) {
		log.WithField("serverId", serverID).Warn("Login with invalid server credentials")
		writeError(w, http.StatusUnauthorized, "invalid server credentials")
		return
	}

	session, err := s.registry.EstablishSession(r.Context(), serverID, playerUUID.String(), req.Username)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	claims := &SessionClaims{
		UUID:      playerUUID.String(),
		Name:      req.Username,
		ServerID:  serverID,
		GroupID:   session.GroupID,
		PlayerID:  session.PlayerID,
		AccountID: session.AccountID,
	}
	token, err := signToken(claims, s.cfg.JWTSecret, time.Duration(s.cfg.JWTExpiryMinutes)*time.Minute, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to sign session token")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	balance, err := s.ledger.GetBalance(r.Context(), claims.GroupID, claims.UUID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	var req depositRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newBalance, err := s.ledger.Deposit(r.Context(), claims.GroupID, claims.UUID, req.Amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{NewBalance: newBalance})
}

// handleWithdraw debits count whole notes of the requested denomination.
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	var req withdrawRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	denomination := req.Denomination
	if denomination == 0 {
		denomination = defaultDenomination
	}
	// The product must not wrap; a wrapped amount could pass the positive
	// checks downstream while debiting far less than the notes dispensed.
	if req.Count > math.MaxInt64/denomination {
		writeError(w, http.StatusBadRequest, "withdrawal amount out of range")
		return
	}
	amount := req.Count * denomination

	newBalance, err := s.ledger.Withdraw(r.Context(), claims.GroupID, claims.UUID, amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{
		Withdrawn:    amount,
		Denomination: denomination,
		Count:        req.Count,
		NewBalance:   newBalance,
	})
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	var req payRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recipientUUID, err := uuid.Parse(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient uuid")
		return
	}

	newBalance, err := s.ledger.Pay(r.Context(), claims.GroupID, claims.UUID, recipientUUID.String(), req.Amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{NewBalance: newBalance})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	result, err := s.ledger.ClaimDailyBonus(r.Context(), claims.ServerID, claims.GroupID, claims.UUID, time.Now())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyResponse{Message: result.Message, NewBalance: result.NewBalance})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	entries, err := s.ledger.Leaderboard(r.Context(), claims.ServerID, 0)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	top := make([]leaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		top = append(top, leaderboardEntry{Username: entry.Username, Balance: entry.Balance})
	}
	writeJSON(w, http.StatusOK, top)
}

// handleRegister creates a group and a server and returns the plaintext
// API key. The key is never shown again.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RegistrationSecret != "" && r.Header.Get("X-Registration-Secret") != s.cfg.RegistrationSecret {
		writeError(w, http.StatusUnauthorized, "registration secret required")
		return
	}

	var req registerRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	apiKey, err := GenerateAPIKey()
	if err != nil {
		log.WithError(err).Error("Failed to generate api key")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	registered, err := s.registry.RegisterServer(r.Context(), req.Name, HashAPIKey(apiKey, s.cfg.ServerAPISalt))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"serverId": registered.ServerID,
		"groupId":  registered.GroupID,
	}).Info("Registered new server")

	writeJSON(w, http.StatusCreated, registerResponse{
		ServerID: registered.ServerID,
		GroupID:  registered.GroupID,
		APIKey:   apiKey,
	})
}
