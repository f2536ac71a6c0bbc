package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sravan-dsai/newslens/internal/billing"
	"github.com/sravan-dsai/newslens/internal/database"
)

// handleGetUsage returns the user's usage statistics for the current month.
func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	stats, err := s.usageChecker.GetUsageStats(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get usage stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tier":            stats.Tier,
		"used_this_month": stats.UsedThisMonth,
		"limit":           stats.Limit,
		"remaining":       stats.Remaining,
		"reset_date":      stats.ResetDate,
	})
}

// handleCreateCheckout creates a Stripe checkout session for a tier upgrade.
func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Tier       string `json:"tier"`
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}

	session, err := s.billingClient.CreateCheckoutSession(billing.CreateCheckoutParams{
		CustomerID: customerID,
		Email:      user.Email,
		UserID:     user.ID.String(),
		Tier:       req.Tier,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"checkout_url": session.URL,
	})
}

// handleCreatePortal creates a Stripe billing portal session.
func (s *Server) handleCreatePortal(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ReturnURL string `json:"return_url"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		writeError(w, http.StatusBadRequest, "user has no billing account")
		return
	}

	session, err := s.billingClient.CreatePortalSession(*user.StripeCustomerID, req.ReturnURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create portal session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"portal_url": session.URL,
	})
}

// createWebhookHandler returns the Stripe webhook handler. Subscription
// changes update the user's tier.
func (s *Server) createWebhookHandler() http.Handler {
	return billing.NewWebhookHandler(s.billingClient, func(event billing.WebhookEvent) error {
		ctx := context.Background()

		user, err := s.resolveWebhookUser(ctx, event)
		if err != nil || user == nil {
			return err
		}

		switch event.Type {
		case "checkout.session.completed":
			if event.CustomerID != "" {
				if err := s.db.UpdateUserStripeCustomer(ctx, user.ID, event.CustomerID); err != nil {
					return err
				}
			}
			if event.PriceID != "" {
				return s.db.UpdateUserTier(ctx, user.ID, s.billingClient.TierFromPriceID(event.PriceID))
			}
		case "customer.subscription.created", "customer.subscription.updated":
			return s.db.UpdateUserTier(ctx, user.ID, s.billingClient.TierFromPriceID(event.PriceID))
		case "customer.subscription.deleted":
			return s.db.UpdateUserTier(ctx, user.ID, billing.TierFree)
		}

		return nil
	})
}

// resolveWebhookUser finds the user a webhook event refers to, preferring the
// user_id metadata and falling back to the Stripe customer ID.
func (s *Server) resolveWebhookUser(ctx context.Context, event billing.WebhookEvent) (*database.User, error) {
	if event.UserID != "" {
		userID, err := uuid.Parse(event.UserID)
		if err == nil {
			return s.db.GetUserByID(ctx, userID)
		}
	}
	if event.CustomerID != "" {
		return s.db.GetUserByStripeCustomer(ctx, event.CustomerID)
	}
	return nil, nil
}
