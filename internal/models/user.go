package models

import (
	"time"
)

// User is a registered account. Email and username are unique.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	Email        string    `gorm:"size:200;not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"size:200;not null;uniqueIndex" json:"username"`
	FirstName    string    `gorm:"size:200;not null" json:"first_name"`
	LastName     string    `gorm:"size:200;not null" json:"last_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
}

// Subscription records that User follows Author.
type Subscription struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscription_user_author"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscription_user_author;index;check:chk_subscription_not_self,user_id <> author_id"`
	User      User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author    User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
