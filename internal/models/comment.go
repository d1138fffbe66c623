package models

import "time"

// Comment is a reply attached to a review. It follows the review's lifecycle:
// deleting the review (or the comment's author) removes it.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ReviewID uint      `gorm:"not null" json:"-"`
	Review   *Review   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null" json:"-"`
	Author   *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime" json:"pub_date"`

	AuthorUsername string `gorm:"-" json:"author"`
}

func (c Comment) String() string { return c.Text }

func (c Comment) PK() uint { return c.ID }
