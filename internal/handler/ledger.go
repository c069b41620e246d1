package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendhq/tend/internal/badge"
	"github.com/tendhq/tend/internal/credibility"
	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/ledger"
)

// BalanceResponse is the display surface for a member's XP standing:
// the balance plus the trust tier the UI renders next to it.
type BalanceResponse struct {
	UserID                string `json:"user_id"`
	CurrentXP             int    `json:"current_xp"`
	AtSoftCap             bool   `json:"at_soft_cap"`
	SoftCapPercentage     int    `json:"soft_cap_percentage"`
	CredibilityScore      int    `json:"credibility_score"`
	TierName              string `json:"tier_name"`
	EarningRatePercentage int    `json:"earning_rate_percentage"`
}

// TransactionListResponse wraps a transaction listing
type TransactionListResponse struct {
	Transactions []domain.XPTransaction `json:"transactions"`
	Count        int                    `json:"count"`
}

// RedeemRequest represents the request to convert XP into screen time.
// Amount is range-checked by the service so zero and negative amounts
// fail the same invalid-amount path.
type RedeemRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Amount int    `json:"amount"`
}

// ReconcileResponse reports whether the stored balance matches the
// transaction fold.
type ReconcileResponse struct {
	UserID     string `json:"user_id"`
	Consistent bool   `json:"consistent"`
}

// HandleGetBalance returns the member's balance with tier display data
func HandleGetBalance(ledgerService ledger.Service, credService credibility.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		balance, err := ledgerService.GetBalance(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get balance", err)
			return
		}

		score, err := credService.CurrentScore(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get balance", err)
			return
		}

		respondJSON(w, http.StatusOK, BalanceResponse{
			UserID:                userID,
			CurrentXP:             balance.CurrentXP,
			AtSoftCap:             balance.IsAtSoftCap(),
			SoftCapPercentage:     balance.SoftCapPercentage(),
			CredibilityScore:      score,
			TierName:              credService.TierName(score),
			EarningRatePercentage: credService.EarningRatePercentage(score),
		})
	}
}

// TierResponse is the credibility standing without the balance attached
type TierResponse struct {
	UserID                string `json:"user_id"`
	CredibilityScore      int    `json:"credibility_score"`
	TierName              string `json:"tier_name"`
	EarningRatePercentage int    `json:"earning_rate_percentage"`
}

// HandleGetTier returns the member's credibility tier standing
func HandleGetTier(credService credibility.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		score, err := credService.CurrentScore(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get tier", err)
			return
		}

		respondJSON(w, http.StatusOK, TierResponse{
			UserID:                userID,
			CredibilityScore:      score,
			TierName:              credService.TierName(score),
			EarningRatePercentage: credService.EarningRatePercentage(score),
		})
	}
}

// HandleGetTransactions lists the most recent transactions
func HandleGetTransactions(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		limit, ok := GetLimitParam(r, w, 0)
		if !ok {
			return
		}

		txns, err := ledgerService.GetRecentTransactions(r.Context(), userID, limit)
		if err != nil {
			respondServiceError(w, r, "Get transactions", err)
			return
		}

		respondJSON(w, http.StatusOK, TransactionListResponse{Transactions: txns, Count: len(txns)})
	}
}

// HandleGetDailyStats returns today's earned/redeemed/net aggregate
func HandleGetDailyStats(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		stats, err := ledgerService.GetDailyStats(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get daily stats", err)
			return
		}

		respondJSON(w, http.StatusOK, stats)
	}
}

// HandleRedeem converts XP into screen-time minutes
func HandleRedeem(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RedeemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Redeem XP"); err != nil {
			return
		}

		result, err := ledgerService.Redeem(r.Context(), req.UserID, req.Amount)
		if err != nil {
			respondServiceError(w, r, "Redeem XP", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleReconcile verifies the stored balance against the transaction fold
func HandleReconcile(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		consistent, err := ledgerService.Reconcile(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Reconcile ledger", err)
			return
		}

		respondJSON(w, http.StatusOK, ReconcileResponse{UserID: userID, Consistent: consistent})
	}
}

// HandleGetBadgeProgress returns the member's badge progress
func HandleGetBadgeProgress(badgeService badge.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		respondJSON(w, http.StatusOK, badgeService.GetProgress(r.Context(), userID))
	}
}
