package models

// Genre tags a title; the association is pure many-to-many with no cascade
// semantics of its own.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"size:256;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

func (g Genre) String() string { return g.Name }

func (g Genre) PK() uint { return g.ID }
