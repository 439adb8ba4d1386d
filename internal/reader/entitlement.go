package reader

import (
	"fmt"
	"time"

	"github.com/openshelf/openshelf/internal/entities"
)

// Level is the access level a caller holds for a book's content.
type Level string

const (
	// LevelFull grants every page unwatermarked.
	LevelFull Level = "full"
	// LevelPreview grants pages up to the preview ceiling, watermarked.
	LevelPreview Level = "preview"
	// LevelDenied applies to anonymous callers. Only the full-content
	// operation rejects it; page and preview operations treat it as
	// LevelPreview.
	LevelDenied Level = "denied"
)

// Identity is the resolved caller passed into the reader core. A nil
// *Identity means an anonymous request.
type Identity struct {
	UserID uint
}

// SubscriptionStore looks up a user's subscription active at the given
// instant. A (nil, nil) return means no active subscription.
type SubscriptionStore interface {
	ActiveSubscription(userID uint, now time.Time) (*entities.Subscription, error)
}

// LoanStore looks up a user's unreturned loan of a specific book.
// A (nil, nil) return means no active loan.
type LoanStore interface {
	ActiveLoan(userID, bookID uint) (*entities.Loan, error)
}

// EntitlementResolver computes the access level for a (identity, book) pair.
// It holds no state and caches nothing: entitlement can change between
// requests (a loan return, a subscription expiry), so it is re-evaluated
// every time.
type EntitlementResolver struct {
	subscriptions SubscriptionStore
	loans         LoanStore
}

func NewEntitlementResolver(subscriptions SubscriptionStore, loans LoanStore) *EntitlementResolver {
	return &EntitlementResolver{
		subscriptions: subscriptions,
		loans:         loans,
	}
}

// Resolve returns LevelDenied for anonymous callers, LevelFull when the user
// holds an active subscription or an unreturned loan of this book, and
// LevelPreview otherwise.
func (r *EntitlementResolver) Resolve(identity *Identity, book *entities.Book, now time.Time) (Level, error) {
	if identity == nil {
		return LevelDenied, nil
	}

	subscription, err := r.subscriptions.ActiveSubscription(identity.UserID, now)
	if err != nil {
		return LevelDenied, fmt.Errorf("look up subscription: %w", err)
	}
	if subscription != nil && subscription.ActiveAt(now) {
		return LevelFull, nil
	}

	loan, err := r.loans.ActiveLoan(identity.UserID, book.ID)
	if err != nil {
		return LevelDenied, fmt.Errorf("look up loan: %w", err)
	}
	if loan != nil && loan.Active() {
		return LevelFull, nil
	}

	return LevelPreview, nil
}
