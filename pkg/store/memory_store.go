package store

import (
	"sort"
	"sync"
	"time"

	"bookshare/pkg/domain"
)

// MemoryStore keeps all records in-process. It backs tests and local runs and
// mirrors the GormStore transition semantics: OpenTransaction and
// CompleteTransaction hold the lock across the whole read-check-write, so the
// compare-and-set behavior is identical.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	emails        map[string]string // email -> user ID
	books         map[string]domain.Book
	ads           map[string]domain.Ad
	transactions  map[string]domain.Transaction
	notifications map[string]domain.Notification
	blogs         map[string]domain.Blog
	interviews    map[string]domain.InterviewPost
	materials     map[string]domain.Material
	reports       map[string]domain.ReportedAd
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]domain.User),
		emails:        make(map[string]string),
		books:         make(map[string]domain.Book),
		ads:           make(map[string]domain.Ad),
		transactions:  make(map[string]domain.Transaction),
		notifications: make(map[string]domain.Notification),
		blogs:         make(map[string]domain.Blog),
		interviews:    make(map[string]domain.InterviewPost),
		materials:     make(map[string]domain.Material),
		reports:       make(map[string]domain.ReportedAd),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.users[u.ID]; ok && old.Email != u.Email {
		delete(m.emails, old.Email)
	}
	m.users[u.ID] = u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.emails[email]
	return ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.emails, u.Email)
		delete(m.users, id)
	}
	return nil
}

func (m *MemoryStore) GetBook(id string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

func (m *MemoryStore) CreateListing(book domain.Book, ad domain.Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
	m.ads[ad.ID] = ad
	return nil
}

func (m *MemoryStore) GetAd(id string) (domain.Ad, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.ads[id]
	return a, ok, nil
}

func (m *MemoryStore) ListAvailableAds() ([]domain.Ad, error) {
	return m.listAds(func(a domain.Ad) bool { return a.Status == domain.AdAvailable })
}

func (m *MemoryStore) ListSoldAdsByOwner(ownerID string) ([]domain.Ad, error) {
	return m.listAds(func(a domain.Ad) bool {
		return a.OwnerID == ownerID && a.Status == domain.AdSold
	})
}

func (m *MemoryStore) listAds(keep func(domain.Ad) bool) ([]domain.Ad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Ad, 0)
	for _, a := range m.ads {
		if keep(a) {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteAd(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ads, id)
	return nil
}

func (m *MemoryStore) OpenTransaction(t domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ad, ok := m.ads[t.AdID]
	if !ok || ad.Status != domain.AdAvailable {
		return ErrAdNotAvailable
	}
	ad.Status = domain.AdPending
	ad.UpdatedAt = time.Now().UTC()
	m.ads[t.AdID] = ad
	m.transactions[t.ID] = t
	return nil
}

func (m *MemoryStore) CompleteTransaction(txID, adID, buyerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[txID]
	if !ok || t.Status != domain.TxPending {
		return ErrTransactionNotPending
	}
	ad, ok := m.ads[adID]
	if !ok || ad.Status != domain.AdPending {
		return ErrTransactionNotPending
	}
	now := time.Now().UTC()
	t.Status = domain.TxCompleted
	t.UpdatedAt = now
	ad.Status = domain.AdSold
	ad.SoldTo = buyerID
	ad.UpdatedAt = now
	m.transactions[txID] = t
	m.ads[adID] = ad
	return nil
}

func (m *MemoryStore) GetTransaction(id string) (domain.Transaction, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	return t, ok, nil
}

func (m *MemoryStore) ListPendingSales(ownerID string) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Transaction, 0)
	for _, t := range m.transactions {
		if t.Status != domain.TxPending {
			continue
		}
		ad, ok := m.ads[t.AdID]
		if ok && ad.OwnerID == ownerID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) ListTransactionsByBuyer(buyerID string) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Transaction, 0)
	for _, t := range m.transactions {
		if t.BuyerID == buyerID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) SaveNotification(n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	return nil
}

func (m *MemoryStore) ListNotificationsByUser(userID string) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) MarkNotificationRead(id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	m.notifications[id] = n
	return true, nil
}

func (m *MemoryStore) SaveBlog(b domain.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blogs[b.ID] = b
	return nil
}

func (m *MemoryStore) GetBlog(id string) (domain.Blog, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blogs[id]
	return b, ok, nil
}

func (m *MemoryStore) ListBlogs() ([]domain.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Blog, 0, len(m.blogs))
	for _, b := range m.blogs {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteBlog(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blogs, id)
	return nil
}

func (m *MemoryStore) SaveInterviewPost(p domain.InterviewPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews[p.ID] = p
	return nil
}

func (m *MemoryStore) GetInterviewPost(id string) (domain.InterviewPost, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.interviews[id]
	return p, ok, nil
}

func (m *MemoryStore) ListInterviewPosts() ([]domain.InterviewPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.InterviewPost, 0, len(m.interviews))
	for _, p := range m.interviews {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteInterviewPost(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.interviews, id)
	return nil
}

func (m *MemoryStore) SaveMaterial(mat domain.Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials[mat.ID] = mat
	return nil
}

func (m *MemoryStore) GetMaterial(id string) (domain.Material, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[id]
	return mat, ok, nil
}

func (m *MemoryStore) ListMaterials() ([]domain.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Material, 0, len(m.materials))
	for _, mat := range m.materials {
		res = append(res, mat)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) SetMaterialVerified(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mat, ok := m.materials[id]; ok {
		mat.Verified = true
		mat.UpdatedAt = time.Now().UTC()
		m.materials[id] = mat
	}
	return nil
}

func (m *MemoryStore) SaveReport(r domain.ReportedAd) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = r
	return nil
}

func (m *MemoryStore) ListReports() ([]domain.ReportedAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ReportedAd, 0, len(m.reports))
	for _, r := range m.reports {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) SetReportResolved(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok {
		r.Resolved = true
		m.reports[id] = r
	}
	return nil
}
