package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"gorm.io/gorm"
)

// SeedAccount is a demo login created by the seed
type SeedAccount struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Token  string `json:"token,omitempty"`
}

// SeedResult summarizes what the seed created
type SeedResult struct {
	Message    string        `json:"message"`
	Creators   int           `json:"creators"`
	Businesses int           `json:"businesses"`
	RequestID  string        `json:"requestId"`
	Accounts   []SeedAccount `json:"accounts"`
}

// SeedService resets the database to a small demo marketplace
type SeedService struct {
	db     *gorm.DB
	tokens *TokenIssuer
	now    func() time.Time
}

// Seeder resets the marketplace to demo data
type Seeder interface {
	Seed(ctx context.Context) (*SeedResult, error)
}

var seederInstance Seeder

// GetSeeder returns the seeder mounted by the router, or nil
func GetSeeder() Seeder {
	return seederInstance
}

// SetSeeder sets the seeder instance
func SetSeeder(seeder Seeder) {
	seederInstance = seeder
}

// NewSeedService creates a seed service. tokens may be nil, in which case no
// demo tokens are returned.
func NewSeedService(db *gorm.DB, tokens *TokenIssuer) *SeedService {
	return &SeedService{db: db, tokens: tokens, now: time.Now}
}

func rates(reel, story, post, bundle int64) models.RateCard {
	return models.RateCard{
		ReelPrice:   decimal.NewFromInt(reel),
		StoryPrice:  decimal.NewFromInt(story),
		PostPrice:   decimal.NewFromInt(post),
		BundlePrice: decimal.NewFromInt(bundle),
	}
}

var seedCreators = []models.CreatorProfile{
	{
		Name:            "Priya Sharma",
		Bio:             "Fashion & lifestyle creator. Making everyday looks pop! 500K+ community of style lovers.",
		Location:        "Mumbai, India",
		InstagramHandle: "@priyasharma",
		InstagramURL:    "https://instagram.com/priyasharma",
		FollowersCount:  520000,
		Niches:          models.Niches{"Fashion", "Lifestyle"},
		IsOpenToBarter:  true,
		Rates:           rates(15000, 5000, 10000, 25000),
		ProfilePhotoURL: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=400",
	},
	{
		Name:            "Arjun Kapoor",
		Bio:             "Fitness enthusiast & sports content creator. Transforming bodies and minds.",
		Location:        "Delhi, India",
		InstagramHandle: "@arjunfitness",
		InstagramURL:    "https://instagram.com/arjunfitness",
		FollowersCount:  280000,
		Niches:          models.Niches{"Fitness", "Sports"},
		Rates:           rates(12000, 4000, 8000, 20000),
		ProfilePhotoURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400",
	},
	{
		Name:            "Meera Patel",
		Bio:             "Beauty guru & skincare addict. Honest reviews and glam tutorials.",
		Location:        "Bangalore, India",
		InstagramHandle: "@meerabellebeauty",
		InstagramURL:    "https://instagram.com/meerabellebeauty",
		FollowersCount:  150000,
		Niches:          models.Niches{"Beauty", "Skincare"},
		IsOpenToBarter:  true,
		Rates:           rates(8000, 3000, 6000, 15000),
		ProfilePhotoURL: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=400",
	},
	{
		Name:            "Rohan Desai",
		Bio:             "Tech reviewer & gadget geek. Unboxing the future, one device at a time.",
		Location:        "Pune, India",
		InstagramHandle: "@rohantech",
		InstagramURL:    "https://instagram.com/rohantech",
		FollowersCount:  95000,
		Niches:          models.Niches{"Tech", "Gaming"},
		Rates:           rates(10000, 3500, 7000, 18000),
		ProfilePhotoURL: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=400",
	},
	{
		Name:            "Ananya Iyer",
		Bio:             "Food blogger & culinary explorer. From street food to fine dining.",
		Location:        "Chennai, India",
		InstagramHandle: "@ananyaeats",
		InstagramURL:    "https://instagram.com/ananyaeats",
		FollowersCount:  320000,
		Niches:          models.Niches{"Food", "Travel"},
		IsOpenToBarter:  true,
		Rates:           rates(14000, 4500, 9000, 22000),
		ProfilePhotoURL: "https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=400",
	},
}

var seedBusinesses = []models.BusinessProfile{
	{
		BrandName:       "Glow Cosmetics",
		Category:        "Beauty",
		Bio:             "Clean beauty for the modern generation",
		Location:        "Mumbai, India",
		WebsiteURL:      "https://glowcosmetics.com",
		InstagramHandle: "@glowcosmetics",
		InstagramURL:    "https://instagram.com/glowcosmetics",
		ProfilePhotoURL: "https://images.unsplash.com/photo-1522335789203-aabd1fc54bc9?w=400",
	},
	{
		BrandName:       "FitLife Nutrition",
		Category:        "Health & Fitness",
		Bio:             "Fueling your fitness journey with premium supplements",
		Location:        "Delhi, India",
		WebsiteURL:      "https://fitlifenutrition.com",
		InstagramHandle: "@fitlifenutrition",
		InstagramURL:    "https://instagram.com/fitlifenutrition",
		ProfilePhotoURL: "https://images.unsplash.com/photo-1571019614242-c5c5dee9f50b?w=400",
	},
}

// Seed wipes every marketplace table and inserts the demo data set
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	now := s.now().UTC()
	result := &SeedResult{Message: "Seed data created successfully"}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Message{}, &models.Request{}, &models.CreatorProfile{}, &models.BusinessProfile{}, &models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return errors.Wrap(err, "clear table")
			}
		}

		var creatorIDs []string
		for i, profile := range seedCreators {
			user := models.User{
				ID:    uuid.NewString(),
				Name:  profile.Name,
				Email: fmt.Sprintf("creator%d@orange.com", i+1),
				Role:  models.RoleCreator,
			}
			if err := tx.Create(&user).Error; err != nil {
				return errors.Wrap(err, "create creator user")
			}

			profile.ID = uuid.NewString()
			profile.UserID = user.ID
			profile.CreatedAt, profile.UpdatedAt = now, now
			if err := tx.Create(&profile).Error; err != nil {
				return errors.Wrap(err, "create creator profile")
			}

			creatorIDs = append(creatorIDs, user.ID)
			result.Accounts = append(result.Accounts, SeedAccount{UserID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name})
		}

		var businessIDs []string
		for i, profile := range seedBusinesses {
			user := models.User{
				ID:    uuid.NewString(),
				Name:  profile.BrandName,
				Email: fmt.Sprintf("business%d@orange.com", i+1),
				Role:  models.RoleBusiness,
			}
			if err := tx.Create(&user).Error; err != nil {
				return errors.Wrap(err, "create business user")
			}

			profile.ID = uuid.NewString()
			profile.UserID = user.ID
			profile.CreatedAt, profile.UpdatedAt = now, now
			if err := tx.Create(&profile).Error; err != nil {
				return errors.Wrap(err, "create business profile")
			}

			businessIDs = append(businessIDs, user.ID)
			result.Accounts = append(result.Accounts, SeedAccount{UserID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name})
		}

		request := models.Request{
			ID:           uuid.NewString(),
			BusinessID:   businessIDs[0],
			CreatorID:    creatorIDs[0],
			Title:        "Summer Collection Campaign",
			Brief:        "We'd love to collaborate with you on our new summer collection! Looking for 3 reels and 5 stories showcasing our products.",
			OfferAmount:  decimal.NewFromInt(30000),
			Deliverables: "3 Reels, 5 Stories",
			Timeline:     "2 weeks",
			Status:       models.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&request).Error; err != nil {
			return errors.Wrap(err, "create sample request")
		}

		result.Creators = len(creatorIDs)
		result.Businesses = len(businessIDs)
		result.RequestID = request.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.tokens != nil {
		for i := range result.Accounts {
			account := &result.Accounts[i]
			token, err := s.tokens.Issue(account.UserID, account.Role, account.Email, account.Name)
			if err != nil {
				return nil, err
			}
			account.Token = token
		}
	}

	return result, nil
}
