package models

// Category is a coarse classification for titles (film, book, music...).
// Deleting a category never deletes its titles; their reference is nulled.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"size:256;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

func (c Category) String() string { return c.Name }

func (c Category) PK() uint { return c.ID }
