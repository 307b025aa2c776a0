package model

import "time"

// BoardType classifies a board post.
type BoardType string

const (
	BoardNotice BoardType = "notice"
	BoardFree   BoardType = "free"
)

// Board is a single post on the bulletin board.
//
// The owning user is referenced by UserID. User is only populated when a caller
// loads it explicitly; list and detail queries never join the user table.
type Board struct {
	ID          int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title"`
	SubTitle    string    `json:"subTitle"`
	Content     string    `json:"content"`
	BoardType   BoardType `json:"boardType"`
	CreatedDate time.Time `json:"createdDate"`
	UpdatedDate time.Time `json:"updatedDate"`
	UserID      int64     `json:"userId"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Board) TableName() string { return "board" }

// IsZero reports whether b is the empty placeholder returned for a missing id.
func (b *Board) IsZero() bool {
	return b == nil || b.ID == 0
}
