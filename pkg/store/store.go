package store

import (
	"errors"

	"bookshare/pkg/domain"
)

var (
	// ErrAdNotAvailable is returned when a transition expects an available ad
	// and the ad is pending, sold, or was grabbed by a concurrent request.
	ErrAdNotAvailable = errors.New("ad not available for requests")

	// ErrTransactionNotPending is returned when completing a transaction that
	// is not in the pending state anymore.
	ErrTransactionNotPending = errors.New("transaction is not pending")
)

// Store defines persistence for the marketplace ledger and its side stores.
//
// OpenTransaction and CompleteTransaction are the only two mutations of the
// ad/transaction pair; both must run atomically so the pair never
// desynchronizes (an ad can hold at most one pending transaction, and a sold
// ad always carries soldTo plus one completed transaction).
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	DeleteUser(id string) error

	// books
	GetBook(id string) (domain.Book, bool, error)

	// ads
	CreateListing(book domain.Book, ad domain.Ad) error
	GetAd(id string) (domain.Ad, bool, error)
	ListAvailableAds() ([]domain.Ad, error)
	ListSoldAdsByOwner(ownerID string) ([]domain.Ad, error)
	DeleteAd(id string) error

	// transactions
	OpenTransaction(t domain.Transaction) error
	CompleteTransaction(txID, adID, buyerID string) error
	GetTransaction(id string) (domain.Transaction, bool, error)
	ListPendingSales(ownerID string) ([]domain.Transaction, error)
	ListTransactionsByBuyer(buyerID string) ([]domain.Transaction, error)

	// notifications
	SaveNotification(domain.Notification) error
	ListNotificationsByUser(userID string) ([]domain.Notification, error)
	MarkNotificationRead(id, userID string) (bool, error)

	// blogs
	SaveBlog(domain.Blog) error
	GetBlog(id string) (domain.Blog, bool, error)
	ListBlogs() ([]domain.Blog, error)
	DeleteBlog(id string) error

	// interview posts
	SaveInterviewPost(domain.InterviewPost) error
	GetInterviewPost(id string) (domain.InterviewPost, bool, error)
	ListInterviewPosts() ([]domain.InterviewPost, error)
	DeleteInterviewPost(id string) error

	// materials
	SaveMaterial(domain.Material) error
	GetMaterial(id string) (domain.Material, bool, error)
	ListMaterials() ([]domain.Material, error)
	SetMaterialVerified(id string) error

	// reported ads
	SaveReport(domain.ReportedAd) error
	ListReports() ([]domain.ReportedAd, error)
	SetReportResolved(id string) error
}

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
