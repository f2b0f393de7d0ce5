package app

import (
	"context"
	"errors"
	"testing"

	"bookshare/pkg/domain"
	"bookshare/pkg/store"
)

func mustCreateAd(t *testing.T, a *App, owner domain.User, title string) Listing {
	t.Helper()
	listing, err := a.CreateAd(context.Background(), owner, CreateAdInput{
		Title:  title,
		Author: "Donovan",
		Price:  12.50,
	})
	if err != nil {
		t.Fatalf("create ad: %v", err)
	}
	return listing
}

func TestCreateAdValidation(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	owner := mustRegister(t, a, "Seller", "seller@campus.edu", domain.RoleStudent)

	if _, err := a.CreateAd(ctx, owner, CreateAdInput{Author: "X", Price: 1}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("missing title: got %v", err)
	}
	if _, err := a.CreateAd(ctx, owner, CreateAdInput{Title: "T", Author: "X", Price: -1}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price: got %v", err)
	}
	if _, err := a.CreateAd(ctx, owner, CreateAdInput{Title: "T", Author: "X", PubYear: 1200}); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("ancient year: got %v", err)
	}
	listing, err := a.CreateAd(ctx, owner, CreateAdInput{Title: "T", Author: "X", PubYear: 2020, Price: 0})
	if err != nil {
		t.Fatalf("valid ad: %v", err)
	}
	if listing.Ad.Status != domain.AdAvailable {
		t.Fatalf("new ad status = %q, want available", listing.Ad.Status)
	}
	// the owner is told their ad went live
	notes, err := a.Notifications(owner)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(notes) != 1 || notes[0].Meta.AdID != listing.Ad.ID {
		t.Fatalf("owner notifications = %+v", notes)
	}
}

func TestRequestTransactionFlow(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	seller := mustRegister(t, a, "Seller", "seller@campus.edu", domain.RoleStudent)
	buyer := mustRegister(t, a, "Buyer", "buyer@campus.edu", domain.RoleStudent)
	listing := mustCreateAd(t, a, seller, "Algorithms")

	if _, err := a.RequestTransaction(ctx, seller, listing.Ad.ID, domain.TypePurchase); !errors.Is(err, ErrOwnListing) {
		t.Fatalf("own listing: got %v", err)
	}
	if _, err := a.RequestTransaction(ctx, buyer, listing.Ad.ID, "loan"); !errors.Is(err, ErrInvalidTransactionType) {
		t.Fatalf("bad type: got %v", err)
	}
	if _, err := a.RequestTransaction(ctx, buyer, "missing", domain.TypePurchase); !errors.Is(err, ErrAdNotFound) {
		t.Fatalf("missing ad: got %v", err)
	}

	tx, err := a.RequestTransaction(ctx, buyer, listing.Ad.ID, domain.TypePurchase)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if tx.Status != domain.TxPending {
		t.Fatalf("transaction status = %q, want pending", tx.Status)
	}
	got, err := a.GetListing(listing.Ad.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if got.Ad.Status != domain.AdPending {
		t.Fatalf("ad status = %q, want pending", got.Ad.Status)
	}

	// the ad is no longer available so a second buyer is rejected
	other := mustRegister(t, a, "Other", "other@campus.edu", domain.RoleStudent)
	if _, err := a.RequestTransaction(ctx, other, listing.Ad.ID, domain.TypePurchase); !errors.Is(err, store.ErrAdNotAvailable) {
		t.Fatalf("second request: got %v", err)
	}

	// both sides were told, with the transaction pinned in the meta
	sellerNotes, err := a.Notifications(seller)
	if err != nil {
		t.Fatalf("seller notifications: %v", err)
	}
	if len(sellerNotes) != 2 {
		t.Fatalf("seller notifications = %d, want create + request", len(sellerNotes))
	}
	found := false
	for _, n := range sellerNotes {
		if n.Meta.TransactionID == tx.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("no seller notification references transaction %s: %+v", tx.ID, sellerNotes)
	}
	buyerNotes, err := a.Notifications(buyer)
	if err != nil {
		t.Fatalf("buyer notifications: %v", err)
	}
	if len(buyerNotes) != 1 || buyerNotes[0].Meta.AdID != listing.Ad.ID {
		t.Fatalf("buyer notifications = %+v", buyerNotes)
	}
}

func TestAcceptTransactionFlow(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	seller := mustRegister(t, a, "Seller", "seller@campus.edu", domain.RoleStudent)
	buyer := mustRegister(t, a, "Buyer", "buyer@campus.edu", domain.RoleStudent)
	listing := mustCreateAd(t, a, seller, "Algorithms")

	tx, err := a.RequestTransaction(ctx, buyer, listing.Ad.ID, domain.TypePurchase)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := a.AcceptTransaction(ctx, buyer, tx.ID); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("buyer accepting: got %v", err)
	}
	if _, err := a.AcceptTransaction(ctx, seller, "missing"); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("missing transaction: got %v", err)
	}

	done, err := a.AcceptTransaction(ctx, seller, tx.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if done.Status != domain.TxCompleted {
		t.Fatalf("transaction status = %q, want completed", done.Status)
	}
	got, err := a.GetListing(listing.Ad.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if got.Ad.Status != domain.AdSold || got.Ad.SoldTo != buyer.ID {
		t.Fatalf("ad after accept = %+v", got.Ad)
	}

	// accepting twice fails: the transaction already left pending
	if _, err := a.AcceptTransaction(ctx, seller, tx.ID); !errors.Is(err, store.ErrTransactionNotPending) {
		t.Fatalf("double accept: got %v", err)
	}

	// seller: create + request + accept; buyer: request + accept
	sellerNotes, _ := a.Notifications(seller)
	buyerNotes, _ := a.Notifications(buyer)
	if len(sellerNotes) != 3 || len(buyerNotes) != 2 {
		t.Fatalf("notification counts seller=%d buyer=%d, want 3 and 2", len(sellerNotes), len(buyerNotes))
	}
}

func TestDeleteAdPermissions(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	student := mustRegister(t, a, "Asha", "asha@campus.edu", domain.RoleStudent)
	other := mustRegister(t, a, "Ben", "ben@campus.edu", domain.RoleStudent)
	faculty := mustRegister(t, a, "Prof", "prof@campus.edu", domain.RoleFaculty)

	listing := mustCreateAd(t, a, student, "Networks")
	if err := a.DeleteAd(ctx, other, listing.Ad.ID); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("stranger delete: got %v", err)
	}
	if err := a.DeleteAd(ctx, faculty, listing.Ad.ID); err != nil {
		t.Fatalf("faculty delete of student ad: %v", err)
	}
	// the owner is told their listing went away (create + removal)
	notes, _ := a.Notifications(student)
	if len(notes) != 2 {
		t.Fatalf("owner notifications = %d, want 2", len(notes))
	}

	own := mustCreateAd(t, a, student, "Databases")
	if err := a.DeleteAd(ctx, student, own.Ad.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	notes, _ = a.Notifications(student)
	if len(notes) != 4 {
		t.Fatalf("owner notifications after self delete = %d, want 4", len(notes))
	}

	facultyAd := mustCreateAd(t, a, faculty, "Compilers")
	if err := a.DeleteAd(ctx, student, facultyAd.Ad.ID); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("student deleting faculty ad: got %v", err)
	}
}

func TestSalesAndHistory(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	seller := mustRegister(t, a, "Seller", "seller@campus.edu", domain.RoleStudent)
	buyer := mustRegister(t, a, "Buyer", "buyer@campus.edu", domain.RoleStudent)

	sold := mustCreateAd(t, a, seller, "Sold Book")
	pending := mustCreateAd(t, a, seller, "Pending Book")
	reserved := mustCreateAd(t, a, seller, "Reserved Book")

	soldTx, err := a.RequestTransaction(ctx, buyer, sold.Ad.ID, domain.TypePurchase)
	if err != nil {
		t.Fatalf("request sold: %v", err)
	}
	if _, err := a.AcceptTransaction(ctx, seller, soldTx.ID); err != nil {
		t.Fatalf("accept sold: %v", err)
	}
	if _, err := a.RequestTransaction(ctx, buyer, pending.Ad.ID, domain.TypePurchase); err != nil {
		t.Fatalf("request pending: %v", err)
	}
	reservedTx, err := a.RequestTransaction(ctx, buyer, reserved.Ad.ID, domain.TypeReserve)
	if err != nil {
		t.Fatalf("request reserved: %v", err)
	}
	if _, err := a.AcceptTransaction(ctx, seller, reservedTx.ID); err != nil {
		t.Fatalf("accept reserved: %v", err)
	}

	sales, err := a.Sales(seller)
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	if len(sales) != 1 || sales[0].Ad.ID != pending.Ad.ID {
		t.Fatalf("sales = %+v, want only the pending request", sales)
	}
	if sales[0].Buyer != "Buyer" {
		t.Fatalf("sale buyer name = %q", sales[0].Buyer)
	}

	h, err := a.UserHistory(buyer)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Pending) != 1 || len(h.Purchased) != 1 || len(h.Reserved) != 1 || len(h.Sold) != 0 {
		t.Fatalf("buyer history = %+v", h)
	}

	sh, err := a.UserHistory(seller)
	if err != nil {
		t.Fatalf("seller history: %v", err)
	}
	if len(sh.Sold) != 2 {
		t.Fatalf("seller sold = %d, want 2", len(sh.Sold))
	}

	// only the available ad is hidden from the public list
	ads, err := a.ListAds()
	if err != nil {
		t.Fatalf("list ads: %v", err)
	}
	if len(ads) != 0 {
		t.Fatalf("available ads = %d, want 0", len(ads))
	}
}

func TestMarkNotificationRead(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	seller := mustRegister(t, a, "Seller", "seller@campus.edu", domain.RoleStudent)
	buyer := mustRegister(t, a, "Buyer", "buyer@campus.edu", domain.RoleStudent)
	listing := mustCreateAd(t, a, seller, "Algorithms")
	if _, err := a.RequestTransaction(ctx, buyer, listing.Ad.ID, domain.TypePurchase); err != nil {
		t.Fatalf("request: %v", err)
	}

	notes, _ := a.Notifications(seller)
	if len(notes) != 2 {
		t.Fatalf("seller notifications = %d, want 2", len(notes))
	}
	target := notes[0]
	// a notification can only be read by its recipient
	if err := a.MarkNotificationRead(buyer, target.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("foreign mark read: got %v", err)
	}
	if err := a.MarkNotificationRead(seller, target.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	read := 0
	notes, _ = a.Notifications(seller)
	for _, n := range notes {
		if n.IsRead {
			read++
		}
	}
	if read != 1 {
		t.Fatalf("read notifications = %d, want 1", read)
	}
}
