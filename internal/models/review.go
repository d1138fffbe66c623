package models

import "time"

// Review is a scored write-up of a title. A user may review a given title at
// most once; the composite unique index enforces it at the store.
type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	Title    *Title    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	Author   *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"not null" json:"text"`
	Score    int       `gorm:"not null" json:"score"`
	PubDate  time.Time `gorm:"autoCreateTime" json:"pub_date"`

	// AuthorUsername is filled from the preloaded author for serialization.
	AuthorUsername string `gorm:"-" json:"author"`
}

func (r Review) String() string { return r.Text }

func (r Review) PK() uint { return r.ID }
