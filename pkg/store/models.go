package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	Year         string
	Branch       string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type BookModel struct {
	ID      string `gorm:"primaryKey"`
	Title   string `gorm:"not null"`
	Author  string `gorm:"not null"`
	PubYear int
}

type AdModel struct {
	ID          string `gorm:"primaryKey"`
	BookID      string `gorm:"not null;index"`
	OwnerID     string `gorm:"not null;index"`
	Price       float64
	Description string `gorm:"type:text"`
	Status      string `gorm:"not null;index"`
	SoldTo      *string
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type TransactionModel struct {
	ID        string `gorm:"primaryKey"`
	AdID      string `gorm:"not null;index"`
	BuyerID   string `gorm:"not null;index"`
	Type      string `gorm:"not null"`
	Status    string `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

type NotificationModel struct {
	ID        string         `gorm:"primaryKey"`
	UserID    string         `gorm:"not null;index"`
	Content   string         `gorm:"not null"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
	IsRead    bool           `gorm:"not null;default:false"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

type BlogModel struct {
	ID         string `gorm:"primaryKey"`
	Title      string `gorm:"not null"`
	Content    string `gorm:"type:text;not null"`
	AuthorID   string `gorm:"not null;index"`
	AuthorName string `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time
}

type InterviewPostModel struct {
	ID        string `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	AuthorID  string `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time
}

type MaterialModel struct {
	ID           string `gorm:"primaryKey"`
	Subject      string `gorm:"not null"`
	Semester     string
	AcademicYear string
	Filename     string `gorm:"not null"`
	StorageKey   string
	UploadedBy   string `gorm:"not null;index"`
	Verified     bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type ReportedAdModel struct {
	ID         string `gorm:"primaryKey"`
	AdID       string `gorm:"not null;index"`
	ReporterID string `gorm:"not null;index"`
	Reason     string `gorm:"not null"`
	Resolved   bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null;index"`
}
