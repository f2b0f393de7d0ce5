package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookshare/internal/util"
	"bookshare/pkg/authz"
	"bookshare/pkg/domain"
)

const minPubYear = 1400

// CreateAdInput carries a new listing: the book being sold plus the terms.
type CreateAdInput struct {
	Title       string
	Author      string
	PubYear     int
	Price       float64
	Description string
}

// Listing pairs an ad with the book it sells.
type Listing struct {
	Ad   domain.Ad   `json:"ad"`
	Book domain.Book `json:"book"`
}

// Sale is a pending request against one of the seller's ads.
type Sale struct {
	Transaction domain.Transaction `json:"transaction"`
	Ad          domain.Ad          `json:"ad"`
	Book        domain.Book        `json:"book"`
	Buyer       string             `json:"buyer"`
}

// History partitions a user's marketplace activity.
type History struct {
	Pending   []domain.Transaction `json:"pending"`
	Purchased []domain.Transaction `json:"purchased"`
	Reserved  []domain.Transaction `json:"reserved"`
	Sold      []Listing            `json:"sold"`
}

// CreateAd lists a book for sale. The ad starts available and the owner gets
// a confirmation notification.
func (a *App) CreateAd(ctx context.Context, owner domain.User, in CreateAdInput) (Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if in.Title == "" || in.Author == "" {
		return Listing{}, ErrMissingFields
	}
	if in.Price < 0 {
		return Listing{}, ErrInvalidPrice
	}
	if in.PubYear != 0 && (in.PubYear < minPubYear || in.PubYear > time.Now().Year()+1) {
		return Listing{}, ErrInvalidYear
	}
	now := time.Now().UTC()
	book := domain.Book{
		ID:      util.NewID(),
		Title:   in.Title,
		Author:  in.Author,
		PubYear: in.PubYear,
	}
	ad := domain.Ad{
		ID:          util.NewID(),
		BookID:      book.ID,
		OwnerID:     owner.ID,
		Price:       in.Price,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.AdAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.CreateListing(book, ad); err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}
	a.notify(ctx, owner.ID, fmt.Sprintf("Your ad for %q was created", book.Title),
		domain.NotificationMeta{AdID: ad.ID})
	return Listing{Ad: ad, Book: book}, nil
}

// ListAds returns all ads that can still be requested.
func (a *App) ListAds() ([]Listing, error) {
	ads, err := a.store.ListAvailableAds()
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	return a.attachBooks(ads)
}

// GetListing returns one ad with its book, whatever its status.
func (a *App) GetListing(adID string) (Listing, error) {
	ad, ok, err := a.store.GetAd(adID)
	if err != nil {
		return Listing{}, fmt.Errorf("load ad: %w", err)
	}
	if !ok {
		return Listing{}, ErrAdNotFound
	}
	book, _, err := a.store.GetBook(ad.BookID)
	if err != nil {
		return Listing{}, fmt.Errorf("load book: %w", err)
	}
	return Listing{Ad: ad, Book: book}, nil
}

// RequestTransaction opens a purchase or reservation against an available ad.
// The ad flips to pending atomically; when two buyers race, exactly one
// request wins and the loser gets store.ErrAdNotAvailable.
func (a *App) RequestTransaction(ctx context.Context, buyer domain.User, adID string, txType domain.TransactionType) (domain.Transaction, error) {
	if txType == "" {
		txType = domain.TypePurchase
	}
	if !domain.ValidTransactionType(txType) {
		return domain.Transaction{}, ErrInvalidTransactionType
	}
	ad, ok, err := a.store.GetAd(adID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("load ad: %w", err)
	}
	if !ok {
		return domain.Transaction{}, ErrAdNotFound
	}
	if ad.OwnerID == buyer.ID {
		return domain.Transaction{}, ErrOwnListing
	}
	now := time.Now().UTC()
	t := domain.Transaction{
		ID:        util.NewID(),
		AdID:      ad.ID,
		BuyerID:   buyer.ID,
		Type:      txType,
		Status:    domain.TxPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.OpenTransaction(t); err != nil {
		return domain.Transaction{}, err
	}

	book, _, err := a.store.GetBook(ad.BookID)
	if err != nil {
		a.logger.Warn("load book for notification", "ad_id", ad.ID, "error", err)
	}
	verb := "buy"
	if txType == domain.TypeReserve {
		verb = "reserve"
	}
	meta := domain.NotificationMeta{AdID: ad.ID, TransactionID: t.ID}
	a.notify(ctx, ad.OwnerID, fmt.Sprintf("%s wants to %s %q", buyer.Name, verb, book.Title), meta)
	a.notify(ctx, buyer.ID, fmt.Sprintf("Your request for %q was sent to the seller", book.Title), meta)
	return t, nil
}

// AcceptTransaction lets the ad's owner complete a pending request. The
// transaction moves to completed and the ad to sold in one atomic step.
func (a *App) AcceptTransaction(ctx context.Context, actor domain.User, txID string) (domain.Transaction, error) {
	t, ok, err := a.store.GetTransaction(txID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	if !ok {
		return domain.Transaction{}, ErrTransactionNotFound
	}
	ad, ok, err := a.store.GetAd(t.AdID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("load ad: %w", err)
	}
	if !ok {
		return domain.Transaction{}, ErrAdNotFound
	}
	if !authz.CanAcceptTransaction(actor.ID, ad.OwnerID) {
		return domain.Transaction{}, ErrNotAllowed
	}
	if err := a.store.CompleteTransaction(t.ID, ad.ID, t.BuyerID); err != nil {
		return domain.Transaction{}, err
	}
	t.Status = domain.TxCompleted

	book, _, err := a.store.GetBook(ad.BookID)
	if err != nil {
		a.logger.Warn("load book for notification", "ad_id", ad.ID, "error", err)
	}
	meta := domain.NotificationMeta{AdID: ad.ID, TransactionID: t.ID}
	a.notify(ctx, t.BuyerID, fmt.Sprintf("The seller accepted your request for %q", book.Title), meta)
	a.notify(ctx, ad.OwnerID, fmt.Sprintf("%q is marked as sold", book.Title), meta)
	return t, nil
}

// DeleteAd removes a listing. The owner can always remove their own ad;
// faculty can remove student ads and admins can remove any ad. The owner is
// told either way.
func (a *App) DeleteAd(ctx context.Context, actor domain.User, adID string) error {
	ad, ok, err := a.store.GetAd(adID)
	if err != nil {
		return fmt.Errorf("load ad: %w", err)
	}
	if !ok {
		return ErrAdNotFound
	}
	owner, ok, err := a.store.GetUserByID(ad.OwnerID)
	if err != nil {
		return fmt.Errorf("load owner: %w", err)
	}
	if !ok {
		owner = domain.User{ID: ad.OwnerID}
	}
	if !authz.CanDeleteAd(actor, owner) {
		return ErrNotAllowed
	}
	if err := a.store.DeleteAd(ad.ID); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	book, _, _ := a.store.GetBook(ad.BookID)
	a.notify(ctx, ad.OwnerID, fmt.Sprintf("Your listing %q was removed by %s", book.Title, actor.Name),
		domain.NotificationMeta{AdID: ad.ID})
	return nil
}

// Sales returns the pending requests buyers have opened against the seller's ads.
func (a *App) Sales(seller domain.User) ([]Sale, error) {
	txs, err := a.store.ListPendingSales(seller.ID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]Sale, 0, len(txs))
	for _, t := range txs {
		ad, ok, err := a.store.GetAd(t.AdID)
		if err != nil {
			return nil, fmt.Errorf("load ad: %w", err)
		}
		if !ok {
			continue
		}
		book, _, err := a.store.GetBook(ad.BookID)
		if err != nil {
			return nil, fmt.Errorf("load book: %w", err)
		}
		buyerName := ""
		if buyer, ok, err := a.store.GetUserByID(t.BuyerID); err == nil && ok {
			buyerName = buyer.Name
		}
		sales = append(sales, Sale{Transaction: t, Ad: ad, Book: book, Buyer: buyerName})
	}
	return sales, nil
}

// UserHistory partitions the user's activity: requests still pending, books
// bought, books reserved and own ads that sold.
func (a *App) UserHistory(user domain.User) (History, error) {
	txs, err := a.store.ListTransactionsByBuyer(user.ID)
	if err != nil {
		return History{}, fmt.Errorf("list transactions: %w", err)
	}
	h := History{
		Pending:   []domain.Transaction{},
		Purchased: []domain.Transaction{},
		Reserved:  []domain.Transaction{},
		Sold:      []Listing{},
	}
	for _, t := range txs {
		switch {
		case t.Status == domain.TxPending:
			h.Pending = append(h.Pending, t)
		case t.Status == domain.TxCompleted && t.Type == domain.TypePurchase:
			h.Purchased = append(h.Purchased, t)
		case t.Status == domain.TxCompleted && t.Type == domain.TypeReserve:
			h.Reserved = append(h.Reserved, t)
		}
	}
	sold, err := a.store.ListSoldAdsByOwner(user.ID)
	if err != nil {
		return History{}, fmt.Errorf("list sold ads: %w", err)
	}
	h.Sold, err = a.attachBooks(sold)
	if err != nil {
		return History{}, err
	}
	return h, nil
}

func (a *App) attachBooks(ads []domain.Ad) ([]Listing, error) {
	listings := make([]Listing, 0, len(ads))
	for _, ad := range ads {
		book, _, err := a.store.GetBook(ad.BookID)
		if err != nil {
			return nil, fmt.Errorf("load book: %w", err)
		}
		listings = append(listings, Listing{Ad: ad, Book: book})
	}
	return listings, nil
}
