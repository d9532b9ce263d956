package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookInstanceStatus string

const (
	BookInstanceAvailable   BookInstanceStatus = "Available"
	BookInstanceMaintenance BookInstanceStatus = "Maintenance"
	BookInstanceLoaned      BookInstanceStatus = "Loaned"
	BookInstanceReserved    BookInstanceStatus = "Reserved"
)

// BookInstanceStatuses lists the statuses a copy can be in, in display order.
var BookInstanceStatuses = []BookInstanceStatus{
	BookInstanceAvailable,
	BookInstanceMaintenance,
	BookInstanceLoaned,
	BookInstanceReserved,
}

// Field limits shared by the forms and the column definitions.
const (
	GenreNameMaxLength  = 100
	AuthorNameMaxLength = 100
	BookTitleMaxLength  = 200
	ISBNMaxLength       = 20
)

type Genre struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	FirstName   string     `gorm:"size:100;not null" json:"first_name"`
	FamilyName  string     `gorm:"size:100;not null;index" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Book references its Author and (optionally) its Genre. Both foreign keys are
// declared with ON DELETE RESTRICT so the database refuses to orphan a book.
type Book struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null;index" json:"title"`
	Summary   string         `gorm:"type:text;not null" json:"summary"`
	ISBN      string         `gorm:"size:20;not null" json:"isbn"`
	AuthorID  string         `gorm:"type:char(36);not null;index" json:"author_id"`
	Author    Author         `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author,omitempty"`
	GenreID   *string        `gorm:"type:char(36);index" json:"genre_id,omitempty"`
	Genre     *Genre         `gorm:"foreignKey:GenreID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"genre,omitempty"`
	Instances []BookInstance `gorm:"foreignKey:BookID" json:"instances,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type BookInstance struct {
	ID        string             `gorm:"type:char(36);primaryKey" json:"id"`
	BookID    string             `gorm:"type:char(36);not null;index" json:"book_id"`
	Book      Book               `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"book,omitempty"`
	Imprint   string             `gorm:"size:200;not null" json:"imprint"`
	Status    BookInstanceStatus `gorm:"size:20;not null;default:'Maintenance';index" json:"status"`
	DueBack   time.Time          `json:"due_back"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Genre) TableName() string {
	return "genres"
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

func (BookInstance) TableName() string {
	return "book_instances"
}

// Identifiers are assigned on insert so callers never choose them.

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (bi *BookInstance) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == "" {
		bi.ID = uuid.NewString()
	}
	if bi.Status == "" {
		bi.Status = BookInstanceMaintenance
	}
	if bi.DueBack.IsZero() {
		bi.DueBack = time.Now()
	}
	return nil
}
