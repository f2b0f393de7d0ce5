package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bookshare/pkg/domain"
)

const migrateLockID int64 = 52305230

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&UserModel{},
			&BookModel{},
			&AdModel{},
			&TransactionModel{},
			&NotificationModel{},
			&BlogModel{},
			&InterviewPostModel{},
			&MaterialModel{},
			&ReportedAdModel{},
		)
	}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password_hash", "role", "year", "branch", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users ordered by created_at.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// DeleteUser removes a user record.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

// GetBook retrieves a catalog record.
func (s *GormStore) GetBook(id string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// CreateListing stores the book and its ad in one transaction.
func (s *GormStore) CreateListing(book domain.Book, ad domain.Ad) error {
	bookModel := bookToModel(book)
	adModel := adToModel(ad)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bookModel).Error; err != nil {
			return err
		}
		return tx.Create(&adModel).Error
	})
}

// GetAd retrieves an ad.
func (s *GormStore) GetAd(id string) (domain.Ad, bool, error) {
	var model AdModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Ad{}, false, nil
		}
		return domain.Ad{}, false, err
	}
	return adFromModel(model), true, nil
}

// ListAvailableAds returns available ads, newest first.
func (s *GormStore) ListAvailableAds() ([]domain.Ad, error) {
	return s.listAds("created_at DESC", "status = ?", string(domain.AdAvailable))
}

// ListSoldAdsByOwner returns the owner's sold ads, newest first.
func (s *GormStore) ListSoldAdsByOwner(ownerID string) ([]domain.Ad, error) {
	return s.listAds("created_at DESC", "owner_id = ? AND status = ?", ownerID, string(domain.AdSold))
}

func (s *GormStore) listAds(order string, conds ...any) ([]domain.Ad, error) {
	var models []AdModel
	tx := s.db.Order(order)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Ad, 0, len(models))
	for _, m := range models {
		res = append(res, adFromModel(m))
	}
	return res, nil
}

// DeleteAd removes the ad row.
func (s *GormStore) DeleteAd(id string) error {
	return s.db.Delete(&AdModel{}, "id = ?", id).Error
}

// OpenTransaction creates a pending transaction and flips the ad from
// available to pending in one atomic unit. The status update is a
// compare-and-set: a concurrent request that lost the race sees zero affected
// rows and gets ErrAdNotAvailable, so an ad can never be double-booked.
func (s *GormStore) OpenTransaction(t domain.Transaction) error {
	model := transactionToModel(t)
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&AdModel{}).
			Where("id = ? AND status = ?", t.AdID, string(domain.AdAvailable)).
			Updates(map[string]any{
				"status":     string(domain.AdPending),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAdNotAvailable
		}
		return tx.Create(&model).Error
	})
}

// CompleteTransaction marks the transaction completed and the ad sold in one
// atomic unit. Both updates are compare-and-sets; if either state moved
// underneath us the whole transition rolls back.
func (s *GormStore) CompleteTransaction(txID, adID, buyerID string) error {
	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TransactionModel{}).
			Where("id = ? AND status = ?", txID, string(domain.TxPending)).
			Updates(map[string]any{
				"status":     string(domain.TxCompleted),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransactionNotPending
		}
		res = tx.Model(&AdModel{}).
			Where("id = ? AND status = ?", adID, string(domain.AdPending)).
			Updates(map[string]any{
				"status":     string(domain.AdSold),
				"sold_to":    buyerID,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransactionNotPending
		}
		return nil
	})
}

// GetTransaction retrieves a transaction.
func (s *GormStore) GetTransaction(id string) (domain.Transaction, bool, error) {
	var model TransactionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Transaction{}, false, nil
		}
		return domain.Transaction{}, false, err
	}
	return transactionFromModel(model), true, nil
}

// ListPendingSales returns pending transactions against the owner's ads.
func (s *GormStore) ListPendingSales(ownerID string) ([]domain.Transaction, error) {
	var models []TransactionModel
	if err := s.db.Model(&TransactionModel{}).
		Joins("JOIN ad_models ON ad_models.id = transaction_models.ad_id").
		Where("ad_models.owner_id = ? AND transaction_models.status = ?", ownerID, string(domain.TxPending)).
		Order("transaction_models.created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Transaction, 0, len(models))
	for _, m := range models {
		res = append(res, transactionFromModel(m))
	}
	return res, nil
}

// ListTransactionsByBuyer returns the buyer's transactions, newest first.
func (s *GormStore) ListTransactionsByBuyer(buyerID string) ([]domain.Transaction, error) {
	var models []TransactionModel
	if err := s.db.Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Transaction, 0, len(models))
	for _, m := range models {
		res = append(res, transactionFromModel(m))
	}
	return res, nil
}

// SaveNotification records a notification.
func (s *GormStore) SaveNotification(n domain.Notification) error {
	model := notificationToModel(n)
	return s.db.Create(&model).Error
}

// ListNotificationsByUser returns notifications for a user, newest first.
func (s *GormStore) ListNotificationsByUser(userID string) ([]domain.Notification, error) {
	var models []NotificationModel
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Notification, 0, len(models))
	for _, m := range models {
		res = append(res, notificationFromModel(m))
	}
	return res, nil
}

// MarkNotificationRead flips is_read for the recipient's own notification.
func (s *GormStore) MarkNotificationRead(id, userID string) (bool, error) {
	res := s.db.Model(&NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveBlog stores or updates a blog post.
func (s *GormStore) SaveBlog(b domain.Blog) error {
	model := blogToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at"}),
	}).Create(&model).Error
}

// GetBlog retrieves a blog post.
func (s *GormStore) GetBlog(id string) (domain.Blog, bool, error) {
	var model BlogModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Blog{}, false, nil
		}
		return domain.Blog{}, false, err
	}
	return blogFromModel(model), true, nil
}

// ListBlogs returns blog posts, newest first.
func (s *GormStore) ListBlogs() ([]domain.Blog, error) {
	var models []BlogModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Blog, 0, len(models))
	for _, m := range models {
		res = append(res, blogFromModel(m))
	}
	return res, nil
}

// DeleteBlog removes a blog post.
func (s *GormStore) DeleteBlog(id string) error {
	return s.db.Delete(&BlogModel{}, "id = ?", id).Error
}

// SaveInterviewPost stores or updates an interview post.
func (s *GormStore) SaveInterviewPost(p domain.InterviewPost) error {
	model := interviewPostToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at"}),
	}).Create(&model).Error
}

// GetInterviewPost retrieves an interview post.
func (s *GormStore) GetInterviewPost(id string) (domain.InterviewPost, bool, error) {
	var model InterviewPostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.InterviewPost{}, false, nil
		}
		return domain.InterviewPost{}, false, err
	}
	return interviewPostFromModel(model), true, nil
}

// ListInterviewPosts returns interview posts, newest first.
func (s *GormStore) ListInterviewPosts() ([]domain.InterviewPost, error) {
	var models []InterviewPostModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.InterviewPost, 0, len(models))
	for _, m := range models {
		res = append(res, interviewPostFromModel(m))
	}
	return res, nil
}

// DeleteInterviewPost removes an interview post.
func (s *GormStore) DeleteInterviewPost(id string) error {
	return s.db.Delete(&InterviewPostModel{}, "id = ?", id).Error
}

// SaveMaterial stores a material record.
func (s *GormStore) SaveMaterial(m domain.Material) error {
	model := materialToModel(m)
	return s.db.Create(&model).Error
}

// GetMaterial retrieves a material record.
func (s *GormStore) GetMaterial(id string) (domain.Material, bool, error) {
	var model MaterialModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Material{}, false, nil
		}
		return domain.Material{}, false, err
	}
	return materialFromModel(model), true, nil
}

// ListMaterials returns materials, newest first.
func (s *GormStore) ListMaterials() ([]domain.Material, error) {
	var models []MaterialModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Material, 0, len(models))
	for _, m := range models {
		res = append(res, materialFromModel(m))
	}
	return res, nil
}

// SetMaterialVerified marks a material as verified.
func (s *GormStore) SetMaterialVerified(id string) error {
	return s.db.Model(&MaterialModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"verified":   true,
			"updated_at": time.Now().UTC(),
		}).Error
}

// SaveReport records a reported ad.
func (s *GormStore) SaveReport(r domain.ReportedAd) error {
	model := reportToModel(r)
	return s.db.Create(&model).Error
}

// ListReports returns reported ads, newest first.
func (s *GormStore) ListReports() ([]domain.ReportedAd, error) {
	var models []ReportedAdModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ReportedAd, 0, len(models))
	for _, m := range models {
		res = append(res, reportFromModel(m))
	}
	return res, nil
}

// SetReportResolved marks a report as resolved.
func (s *GormStore) SetReportResolved(id string) error {
	return s.db.Model(&ReportedAdModel{}).
		Where("id = ?", id).
		Update("resolved", true).Error
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Year:         u.Year,
		Branch:       u.Branch,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		Year:         m.Year,
		Branch:       m.Branch,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ID:      b.ID,
		Title:   b.Title,
		Author:  b.Author,
		PubYear: b.PubYear,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ID:      m.ID,
		Title:   m.Title,
		Author:  m.Author,
		PubYear: m.PubYear,
	}
}

func adToModel(a domain.Ad) AdModel {
	var soldTo *string
	if a.SoldTo != "" {
		value := a.SoldTo
		soldTo = &value
	}
	return AdModel{
		ID:          a.ID,
		BookID:      a.BookID,
		OwnerID:     a.OwnerID,
		Price:       a.Price,
		Description: a.Description,
		Status:      string(a.Status),
		SoldTo:      soldTo,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func adFromModel(m AdModel) domain.Ad {
	soldTo := ""
	if m.SoldTo != nil {
		soldTo = *m.SoldTo
	}
	return domain.Ad{
		ID:          m.ID,
		BookID:      m.BookID,
		OwnerID:     m.OwnerID,
		Price:       m.Price,
		Description: m.Description,
		Status:      domain.AdStatus(m.Status),
		SoldTo:      soldTo,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func transactionToModel(t domain.Transaction) TransactionModel {
	return TransactionModel{
		ID:        t.ID,
		AdID:      t.AdID,
		BuyerID:   t.BuyerID,
		Type:      string(t.Type),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func transactionFromModel(m TransactionModel) domain.Transaction {
	return domain.Transaction{
		ID:        m.ID,
		AdID:      m.AdID,
		BuyerID:   m.BuyerID,
		Type:      domain.TransactionType(m.Type),
		Status:    domain.TransactionStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func notificationToModel(n domain.Notification) NotificationModel {
	meta, _ := json.Marshal(n.Meta)
	return NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Content:   n.Content,
		Meta:      meta,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func notificationFromModel(m NotificationModel) domain.Notification {
	var meta domain.NotificationMeta
	if len(m.Meta) > 0 {
		_ = json.Unmarshal(m.Meta, &meta)
	}
	return domain.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		Meta:      meta,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func blogToModel(b domain.Blog) BlogModel {
	return BlogModel{
		ID:         b.ID,
		Title:      b.Title,
		Content:    b.Content,
		AuthorID:   b.AuthorID,
		AuthorName: b.AuthorName,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func blogFromModel(m BlogModel) domain.Blog {
	return domain.Blog{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func interviewPostToModel(p domain.InterviewPost) InterviewPostModel {
	return InterviewPostModel{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func interviewPostFromModel(m InterviewPostModel) domain.InterviewPost {
	return domain.InterviewPost{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		AuthorID:  m.AuthorID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func materialToModel(m domain.Material) MaterialModel {
	return MaterialModel{
		ID:           m.ID,
		Subject:      m.Subject,
		Semester:     m.Semester,
		AcademicYear: m.AcademicYear,
		Filename:     m.Filename,
		StorageKey:   m.StorageKey,
		UploadedBy:   m.UploadedBy,
		Verified:     m.Verified,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func materialFromModel(m MaterialModel) domain.Material {
	return domain.Material{
		ID:           m.ID,
		Subject:      m.Subject,
		Semester:     m.Semester,
		AcademicYear: m.AcademicYear,
		Filename:     m.Filename,
		StorageKey:   m.StorageKey,
		UploadedBy:   m.UploadedBy,
		Verified:     m.Verified,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func reportToModel(r domain.ReportedAd) ReportedAdModel {
	return ReportedAdModel{
		ID:         r.ID,
		AdID:       r.AdID,
		ReporterID: r.ReporterID,
		Reason:     r.Reason,
		Resolved:   r.Resolved,
		CreatedAt:  r.CreatedAt,
	}
}

func reportFromModel(m ReportedAdModel) domain.ReportedAd {
	return domain.ReportedAd{
		ID:         m.ID,
		AdID:       m.AdID,
		ReporterID: m.ReporterID,
		Reason:     m.Reason,
		Resolved:   m.Resolved,
		CreatedAt:  m.CreatedAt,
	}
}
