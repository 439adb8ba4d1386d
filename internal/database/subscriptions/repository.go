// Package subscriptions provides database operations for reader
// subscriptions.
package subscriptions

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// ErrAlreadySubscribed is reported when creating a subscription for a user
// who already holds an active one.
var ErrAlreadySubscribed = fmt.Errorf("user already has an active subscription")

// Repository handles all subscription database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveSubscription retrieves the user's subscription covering the given
// instant, or nil.
func (r *Repository) ActiveSubscription(userID uint, now time.Time) (*entities.Subscription, error) {
	var subscription entities.Subscription
	err := r.db.
		Where("user_id = ? AND starts_at <= ? AND ends_at > ?", userID, now, now).
		First(&subscription).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// Create starts a subscription for the user, running from now for the given
// number of days. A second active subscription is rejected.
func (r *Repository) Create(userID uint, plan entities.SubscriptionPlan, durationDays int, now time.Time) (*entities.Subscription, error) {
	existing, err := r.ActiveSubscription(userID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubscribed
	}

	subscription := &entities.Subscription{
		UserID:   userID,
		Plan:     plan,
		StartsAt: now,
		EndsAt:   now.AddDate(0, 0, durationDays),
	}
	if err := r.db.Create(subscription).Error; err != nil {
		return nil, err
	}
	return subscription, nil
}

// History retrieves all of a user's subscriptions, newest first.
func (r *Repository) History(userID uint) ([]entities.Subscription, error) {
	var subscriptions []entities.Subscription
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subscriptions).Error
	return subscriptions, err
}
