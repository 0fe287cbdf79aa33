package services

import (
	"io"
	"testing"

	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/tests/testutil"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// marketplace is a business, a creator and an unrelated user sharing one database
type marketplace struct {
	db       *gorm.DB
	profiles *GormProfileService
	requests *GormRequestService
	messages *GormMessageService
	business models.User
	creator  models.User
	outsider models.User
}

func newMarketplace(t *testing.T, opts MessageServiceOptions) *marketplace {
	t.Helper()

	db := testutil.NewTestDB(t)
	profiles := NewProfileService(db)
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}

	m := &marketplace{
		db:       db,
		profiles: profiles,
		requests: NewRequestService(db, profiles, quietLogger()),
		messages: NewMessageService(db, profiles, opts),
	}
	m.business, _ = testutil.CreateBusiness(t, db, "Glow Cosmetics")
	m.creator, _ = testutil.CreateCreator(t, db, "Priya Sharma")
	m.outsider, _ = testutil.CreateBusiness(t, db, "FitLife Nutrition")
	return m
}
