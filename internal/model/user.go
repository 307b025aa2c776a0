// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// SocialType tags which identity provider a user signed in with.
// Local accounts (seeded users, form login) carry the empty SocialType.
type SocialType string

const (
	SocialFacebook SocialType = "facebook"
	SocialGoogle   SocialType = "google"
	SocialKakao    SocialType = "kakao"
)

// ParseSocialType maps a provider registration id ("google", "kakao") to a SocialType.
func ParseSocialType(s string) (SocialType, bool) {
	switch t := SocialType(strings.ToLower(s)); t {
	case SocialFacebook, SocialGoogle, SocialKakao:
		return t, true
	}
	return "", false
}

// RoleType is the granted authority a user of this provider receives, e.g. "ROLE_KAKAO".
func (t SocialType) RoleType() string {
	return "ROLE_" + strings.ToUpper(string(t))
}

func (t SocialType) String() string { return string(t) }

// User represents a local account.
//
// Email is the natural key used to match an incoming provider identity against
// an existing row; Principal is the provider's own id for the user. Password is
// a bcrypt hash and only set for local accounts.
type User struct {
	ID          int64      `json:"id"          gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	Principal   string     `json:"principal"`
	SocialType  SocialType `json:"socialType"`
	CreatedDate time.Time  `json:"createdDate"`
}

// TableName pins the table to "user" instead of gorm's pluralised default.
func (User) TableName() string { return "user" }

// IsSocial reports whether the account was created through a social login.
func (u *User) IsSocial() bool {
	return u.SocialType != ""
}
