package models

// Title represents a cataloged work of art being reviewed.
type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Description string    `json:"description"`
	Year        int       `gorm:"not null" json:"year"`
	CategoryID  *uint     `json:"-"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE" json:"genre"`
	// Rating is the average review score, computed at query time.
	// Absent from responses while the title has no reviews.
	Rating *float64 `gorm:"-" json:"rating,omitempty"`
}

func (t Title) String() string { return t.Name }

func (t Title) PK() uint { return t.ID }
