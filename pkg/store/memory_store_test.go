package store

import (
	"errors"
	"testing"
	"time"

	"bookshare/pkg/domain"
)

func seedListing(t *testing.T, s *MemoryStore, adID, ownerID string) {
	t.Helper()
	now := time.Now().UTC()
	err := s.CreateListing(
		domain.Book{ID: "book-" + adID, Title: "Clean Code", Author: "Robert C. Martin", PubYear: 2008},
		domain.Ad{ID: adID, BookID: "book-" + adID, OwnerID: ownerID, Price: 35, Status: domain.AdAvailable, CreatedAt: now, UpdatedAt: now},
	)
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
}

func TestOpenTransactionFlipsAdToPending(t *testing.T) {
	s := NewMemoryStore()
	seedListing(t, s, "ad-1", "owner-1")

	tx := domain.Transaction{ID: "tx-1", AdID: "ad-1", BuyerID: "buyer-1", Type: domain.TypePurchase, Status: domain.TxPending, CreatedAt: time.Now().UTC()}
	if err := s.OpenTransaction(tx); err != nil {
		t.Fatalf("open transaction: %v", err)
	}
	ad, ok, err := s.GetAd("ad-1")
	if err != nil || !ok {
		t.Fatalf("get ad: ok=%v err=%v", ok, err)
	}
	if ad.Status != domain.AdPending {
		t.Fatalf("ad status = %q, want pending", ad.Status)
	}
}

func TestOpenTransactionRejectsNonAvailableAd(t *testing.T) {
	s := NewMemoryStore()
	seedListing(t, s, "ad-1", "owner-1")

	first := domain.Transaction{ID: "tx-1", AdID: "ad-1", BuyerID: "buyer-1", Type: domain.TypePurchase, Status: domain.TxPending, CreatedAt: time.Now().UTC()}
	if err := s.OpenTransaction(first); err != nil {
		t.Fatalf("first open: %v", err)
	}
	second := domain.Transaction{ID: "tx-2", AdID: "ad-1", BuyerID: "buyer-2", Type: domain.TypeReserve, Status: domain.TxPending, CreatedAt: time.Now().UTC()}
	if err := s.OpenTransaction(second); !errors.Is(err, ErrAdNotAvailable) {
		t.Fatalf("second open: got %v, want ErrAdNotAvailable", err)
	}
	if _, ok, _ := s.GetTransaction("tx-2"); ok {
		t.Fatalf("losing transaction must not be stored")
	}
}

func TestCompleteTransactionMarksAdSold(t *testing.T) {
	s := NewMemoryStore()
	seedListing(t, s, "ad-1", "owner-1")
	tx := domain.Transaction{ID: "tx-1", AdID: "ad-1", BuyerID: "buyer-1", Type: domain.TypePurchase, Status: domain.TxPending, CreatedAt: time.Now().UTC()}
	if err := s.OpenTransaction(tx); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := s.CompleteTransaction("tx-1", "ad-1", "buyer-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	ad, _, _ := s.GetAd("ad-1")
	if ad.Status != domain.AdSold || ad.SoldTo != "buyer-1" {
		t.Fatalf("ad after complete = %+v, want sold to buyer-1", ad)
	}
	got, _, _ := s.GetTransaction("tx-1")
	if got.Status != domain.TxCompleted {
		t.Fatalf("transaction status = %q, want completed", got.Status)
	}

	// Completing twice must fail.
	if err := s.CompleteTransaction("tx-1", "ad-1", "buyer-1"); !errors.Is(err, ErrTransactionNotPending) {
		t.Fatalf("second complete: got %v, want ErrTransactionNotPending", err)
	}
}

func TestListPendingSalesJoinsOwnership(t *testing.T) {
	s := NewMemoryStore()
	seedListing(t, s, "ad-1", "owner-1")
	seedListing(t, s, "ad-2", "owner-2")
	_ = s.OpenTransaction(domain.Transaction{ID: "tx-1", AdID: "ad-1", BuyerID: "buyer-1", Type: domain.TypePurchase, Status: domain.TxPending, CreatedAt: time.Now().UTC()})
	_ = s.OpenTransaction(domain.Transaction{ID: "tx-2", AdID: "ad-2", BuyerID: "buyer-1", Type: domain.TypePurchase, Status: domain.TxPending, CreatedAt: time.Now().UTC()})

	sales, err := s.ListPendingSales("owner-1")
	if err != nil {
		t.Fatalf("list pending sales: %v", err)
	}
	if len(sales) != 1 || sales[0].ID != "tx-1" {
		t.Fatalf("sales = %+v, want only tx-1", sales)
	}
}

func TestMarkNotificationReadChecksRecipient(t *testing.T) {
	s := NewMemoryStore()
	_ = s.SaveNotification(domain.Notification{ID: "n-1", UserID: "u-1", Content: "hello", CreatedAt: time.Now().UTC()})

	ok, err := s.MarkNotificationRead("n-1", "u-2")
	if err != nil || ok {
		t.Fatalf("foreign recipient: ok=%v err=%v, want not found", ok, err)
	}
	ok, err = s.MarkNotificationRead("n-1", "u-1")
	if err != nil || !ok {
		t.Fatalf("recipient: ok=%v err=%v", ok, err)
	}
	notes, _ := s.ListNotificationsByUser("u-1")
	if len(notes) != 1 || !notes[0].IsRead {
		t.Fatalf("notification not marked read: %+v", notes)
	}
}

func TestDeleteUserClearsEmailIndex(t *testing.T) {
	s := NewMemoryStore()
	_ = s.SaveUser(domain.User{ID: "u-1", Email: "a@example.com", Role: domain.RoleStudent, CreatedAt: time.Now().UTC()})
	if err := s.DeleteUser("u-1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	exists, _ := s.HasUserEmail("a@example.com")
	if exists {
		t.Fatalf("email must be free after delete")
	}
}
