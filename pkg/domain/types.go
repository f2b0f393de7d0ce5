package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleAdmin   UserRole = "admin"
)

// ValidRole reports whether the role is one of the three known roles.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

type AdStatus string

const (
	AdAvailable AdStatus = "available"
	AdPending   AdStatus = "pending"
	AdSold      AdStatus = "sold"
)

type TransactionType string

const (
	TypePurchase TransactionType = "purchase"
	TypeReserve  TransactionType = "reserve"
)

// ValidTransactionType reports whether t is purchase or reserve.
func ValidTransactionType(t TransactionType) bool {
	return t == TypePurchase || t == TypeReserve
}

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	// TxCancelled is modeled for completeness; no operation produces it.
	TxCancelled TransactionStatus = "cancelled"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Year         string    `json:"year,omitempty"`
	Branch       string    `json:"branch,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Book is the static catalog record an ad sells; it never mutates.
type Book struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	PubYear int    `json:"pubYear,omitempty"`
}

// Ad is a for-sale listing of one book by one owner.
// Status moves available -> pending -> sold; there is no way back.
type Ad struct {
	ID          string    `json:"id"`
	BookID      string    `json:"bookId"`
	OwnerID     string    `json:"ownerId"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	Status      AdStatus  `json:"status"`
	SoldTo      string    `json:"soldTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Transaction struct {
	ID        string            `json:"id"`
	AdID      string            `json:"adId"`
	BuyerID   string            `json:"buyerId"`
	Type      TransactionType   `json:"type"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NotificationMeta links a notification back to the records it mentions.
type NotificationMeta struct {
	AdID          string `json:"adId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Content   string           `json:"content"`
	Meta      NotificationMeta `json:"meta"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

type Blog struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type InterviewPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Material struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	Semester     string    `json:"semester,omitempty"`
	AcademicYear string    `json:"academicYear,omitempty"`
	Filename     string    `json:"filename"`
	StorageKey   string    `json:"-"`
	UploadedBy   string    `json:"uploadedBy"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReportedAd struct {
	ID         string    `json:"id"`
	AdID       string    `json:"adId"`
	ReporterID string    `json:"reporterId"`
	Reason     string    `json:"reason"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"createdAt"`
}
