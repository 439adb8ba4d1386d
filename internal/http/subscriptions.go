package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/subscriptions"
	"github.com/openshelf/openshelf/internal/entities"
)

// SubscriptionsController manages reader subscriptions, which grant full
// reading access to the whole catalog while active.
type SubscriptionsController struct {
	subscriptions *subscriptions.Repository
	audit         *audit.Service
}

func NewSubscriptionsController(repo *subscriptions.Repository, auditService *audit.Service) *SubscriptionsController {
	return &SubscriptionsController{subscriptions: repo, audit: auditService}
}

type subscribeRequest struct {
	Plan         string `json:"plan"`
	DurationDays int    `json:"duration_days"`
}

// Subscribe starts a subscription for the current user.
// POST /api/v1/subscriptions
func (sc *SubscriptionsController) Subscribe(c *gin.Context) {
	user := auth.CurrentUser(c)

	// The body is optional; an empty POST subscribes to the default plan
	var req subscribeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	plan := entities.SubscriptionPlan(req.Plan)
	switch plan {
	case "":
		plan = entities.SubscriptionPlanBasic
	case entities.SubscriptionPlanBasic, entities.SubscriptionPlanPremium:
	default:
		respondBadRequest(c, "unknown plan")
		return
	}

	duration := req.DurationDays
	if duration <= 0 {
		duration = 30
	}

	subscription, err := sc.subscriptions.Create(user.ID, plan, duration, time.Now())
	if err != nil {
		if errors.Is(err, subscriptions.ErrAlreadySubscribed) {
			respondConflict(c, "an active subscription already exists")
			return
		}
		respondInternalError(c, err, "create subscription")
		return
	}

	sc.audit.Record(auth.UserIDPtr(c), "subscription_create", "subscription", subscription.ID, map[string]any{
		"plan":    string(plan),
		"ends_at": subscription.EndsAt,
	})

	respondCreated(c, subscription)
}

// CurrentSubscription reports the user's active subscription, if any.
// GET /api/v1/subscriptions/current
func (sc *SubscriptionsController) CurrentSubscription(c *gin.Context) {
	user := auth.CurrentUser(c)

	subscription, err := sc.subscriptions.ActiveSubscription(user.ID, time.Now())
	if err != nil {
		respondInternalError(c, err, "get subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":       subscription != nil,
		"subscription": subscription,
	})
}

// ListSubscriptions returns the user's subscription history, newest first.
// GET /api/v1/subscriptions
func (sc *SubscriptionsController) ListSubscriptions(c *gin.Context) {
	user := auth.CurrentUser(c)

	history, err := sc.subscriptions.History(user.ID)
	if err != nil {
		respondInternalError(c, err, "list subscriptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": history, "count": len(history)})
}
