package entities

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionPlan string

const (
	SubscriptionPlanBasic   SubscriptionPlan = "basic"
	SubscriptionPlanPremium SubscriptionPlan = "premium"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:255" json:"email"`
	Token     string         `gorm:"uniqueIndex;size:64" json:"-"` // API token, hidden from JSON
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;size:512" json:"title"`
	Author      string `gorm:"index;size:256" json:"author"`
	Year        int    `json:"year"`
	Genre       string `gorm:"index;size:100" json:"genre,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	ISBN        string `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverPath   string `gorm:"size:1024" json:"cover_path,omitempty"`

	// DocumentPath is an opaque handle into the document store. Empty when
	// no document has been uploaded for the book.
	DocumentPath string `gorm:"size:1024" json:"-"`

	Loans []Loan `gorm:"foreignKey:BookID" json:"-"`
	Likes []Like `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Subscription struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"index:idx_subscriptions_user_ends" json:"user_id"`
	Plan      SubscriptionPlan `gorm:"size:20;default:'basic'" json:"plan"`
	StartsAt  time.Time        `json:"starts_at"`
	EndsAt    time.Time        `gorm:"index:idx_subscriptions_user_ends" json:"ends_at"`
	User      User             `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ActiveAt reports whether the subscription covers the given instant.
// The window is half-open: [StartsAt, EndsAt).
func (s Subscription) ActiveAt(now time.Time) bool {
	return !now.Before(s.StartsAt) && now.Before(s.EndsAt)
}

type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index:idx_loans_user_returned" json:"user_id"`
	BookID     uint       `gorm:"index:idx_loans_book_returned" json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `gorm:"index:idx_loans_user_returned;index:idx_loans_book_returned" json:"returned_at,omitempty"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Active reports whether the loan is still out (not returned).
func (l Loan) Active() bool {
	return l.ReturnedAt == nil
}

// OverdueAt reports whether the loan is out past its due date.
func (l Loan) OverdueAt(now time.Time) bool {
	return l.Active() && l.DueAt.Before(now)
}

type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_likes_user_book" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_likes_user_book" json:"book_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLog records a catalog or loan action for later inspection.
// Entries are append-only and purged by the maintenance scheduler.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"index;size:50" json:"action"`
	Entity    string    `gorm:"size:50" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Meta      string    `gorm:"type:text" json:"meta,omitempty"` // JSON payload
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (Loan) TableName() string {
	return "loans"
}

func (Like) TableName() string {
	return "likes"
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
