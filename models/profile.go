package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Niches is a list of content categories stored as a JSON column.
type Niches []string

func (n Niches) Value() (driver.Value, error) {
	if n == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(n))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (n *Niches) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*n = Niches{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("niches: unsupported column type")
	}
	return json.Unmarshal(raw, (*[]string)(n))
}

// Has reports whether the list contains niche.
func (n Niches) Has(niche string) bool {
	for _, v := range n {
		if v == niche {
			return true
		}
	}
	return false
}

// RateCard holds a creator's advertised prices per deliverable type.
type RateCard struct {
	ReelPrice   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"reelPrice"`
	StoryPrice  decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"storyPrice"`
	PostPrice   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"postPrice"`
	BundlePrice decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"bundlePrice"`
}

// CreatorProfile is the public marketplace card of a creator account
type CreatorProfile struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	UserID          string    `gorm:"uniqueIndex;not null;size:64" json:"userId"`
	Name            string    `gorm:"not null" json:"name"`
	Bio             string    `gorm:"type:text" json:"bio"`
	Location        string    `gorm:"index" json:"location"`
	ProfilePhotoURL string    `json:"profilePhotoUrl"`
	InstagramHandle string    `json:"instagramHandle"`
	InstagramURL    string    `json:"instagramUrl"`
	FollowersCount  int       `gorm:"index" json:"followersCount"`
	Niches          Niches    `gorm:"type:text" json:"niches"`
	IsOpenToBarter  bool      `json:"isOpenToBarter"`
	Rates           RateCard  `gorm:"embedded;embeddedPrefix:rate_" json:"rates"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the CreatorProfile model
func (CreatorProfile) TableName() string {
	return "creator_profiles"
}

// BusinessProfile is the public marketplace card of a business account
type BusinessProfile struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	UserID          string    `gorm:"uniqueIndex;not null;size:64" json:"userId"`
	BrandName       string    `gorm:"not null" json:"brandName"`
	Category        string    `json:"category"`
	Bio             string    `gorm:"type:text" json:"bio"`
	Location        string    `json:"location"`
	WebsiteURL      string    `json:"websiteUrl"`
	InstagramHandle string    `json:"instagramHandle"`
	InstagramURL    string    `json:"instagramUrl"`
	ProfilePhotoURL string    `json:"profilePhotoUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the BusinessProfile model
func (BusinessProfile) TableName() string {
	return "business_profiles"
}

// DisplayInfo is the denormalized name and photo of a party.
type DisplayInfo struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}
