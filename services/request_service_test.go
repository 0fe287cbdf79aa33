package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summerLaunch(creatorID string) CreateRequestInput {
	return CreateRequestInput{
		CreatorID:    creatorID,
		Title:        "Summer Launch",
		Brief:        "3 reels",
		OfferAmount:  decimal.NewFromInt(15000),
		Deliverables: "3 Reels",
		Timeline:     "2 weeks",
	}
}

func TestCreateRequest_ListedForBothParties(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{AllowOnDeclined: true})
	ctx := context.Background()

	req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, m.business.ID, req.BusinessID)
	assert.Equal(t, m.creator.ID, req.CreatorID)
	assert.True(t, decimal.NewFromInt(15000).Equal(req.OfferAmount))
	assert.Equal(t, "Priya Sharma", req.CreatorName)
	assert.Equal(t, "Glow Cosmetics", req.BusinessName)

	sent, err := m.requests.ListSentRequests(ctx, m.business.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, req.ID, sent[0].ID)
	assert.Equal(t, "Priya Sharma", sent[0].CreatorName)

	received, err := m.requests.ListReceivedRequests(ctx, m.creator.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, req.ID, received[0].ID)
	assert.Equal(t, "Glow Cosmetics", received[0].BusinessName)

	none, err := m.requests.ListSentRequests(ctx, m.outsider.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCreateRequest_Rejections(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  models.Actor
		mutate func(in *CreateRequestInput)
		kind   error
		code   string
	}{
		{
			name:  "creator cannot send requests",
			actor: testutil.Actor(m.creator),
			kind:  ErrAuthorization,
			code:  "FORBIDDEN",
		},
		{
			name:   "empty title",
			actor:  testutil.Actor(m.business),
			mutate: func(in *CreateRequestInput) { in.Title = "" },
			kind:   ErrValidation,
		},
		{
			name:   "whitespace brief",
			actor:  testutil.Actor(m.business),
			mutate: func(in *CreateRequestInput) { in.Brief = "   " },
			kind:   ErrValidation,
		},
		{
			name:   "negative offer",
			actor:  testutil.Actor(m.business),
			mutate: func(in *CreateRequestInput) { in.OfferAmount = decimal.NewFromInt(-1) },
			kind:   ErrValidation,
		},
		{
			name:   "unknown creator",
			actor:  testutil.Actor(m.business),
			mutate: func(in *CreateRequestInput) { in.CreatorID = "nobody" },
			kind:   ErrValidation,
			code:   "CREATOR_NOT_FOUND",
		},
		{
			name:   "business is not a creator",
			actor:  testutil.Actor(m.business),
			mutate: func(in *CreateRequestInput) { in.CreatorID = m.outsider.ID },
			kind:   ErrValidation,
			code:   "CREATOR_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := summerLaunch(m.creator.ID)
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			req, err := m.requests.CreateRequest(ctx, tt.actor, input)
			assert.Nil(t, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			if tt.code != "" {
				se, ok := AsServiceError(err)
				require.True(t, ok)
				assert.Equal(t, tt.code, se.Code)
			}
		})
	}

	var count int64
	m.db.Model(&models.Request{}).Count(&count)
	assert.Zero(t, count, "rejected requests must not be stored")
}

func TestCreateRequest_ZeroOfferIsBarter(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})

	input := summerLaunch(m.creator.ID)
	input.OfferAmount = decimal.Zero

	req, err := m.requests.CreateRequest(context.Background(), testutil.Actor(m.business), input)
	require.NoError(t, err)
	assert.True(t, req.OfferAmount.IsZero())
}

func TestGetRequest(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
	require.NoError(t, err)

	t.Run("business party", func(t *testing.T) {
		got, err := m.requests.GetRequest(ctx, req.ID, m.business.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, got.ID)
		assert.Equal(t, "Priya Sharma", got.CreatorName)
		assert.NotEmpty(t, got.CreatorPhoto)
	})

	t.Run("creator party", func(t *testing.T) {
		got, err := m.requests.GetRequest(ctx, req.ID, m.creator.ID)
		require.NoError(t, err)
		assert.Equal(t, "Glow Cosmetics", got.BusinessName)
	})

	t.Run("outsider", func(t *testing.T) {
		_, err := m.requests.GetRequest(ctx, req.ID, m.outsider.ID)
		assert.True(t, errors.Is(err, ErrAuthorization))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := m.requests.GetRequest(ctx, "does-not-exist", m.business.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("repeat reads are identical", func(t *testing.T) {
		first, err := m.requests.GetRequest(ctx, req.ID, m.business.ID)
		require.NoError(t, err)
		second, err := m.requests.GetRequest(ctx, req.ID, m.business.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestListRequests_NewestFirst(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Minute
		m.requests.now = func() time.Time { return base.Add(offset) }
		req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}

	sent, err := m.requests.ListSentRequests(ctx, m.business.ID)
	require.NoError(t, err)
	require.Len(t, sent, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{sent[0].ID, sent[1].ID, sent[2].ID})
}

func TestUpdateStatus_AcceptThenDecline(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
	require.NoError(t, err)

	accepted, err := m.requests.UpdateStatus(ctx, req.ID, testutil.Actor(m.creator), models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	got, err := m.requests.GetRequest(ctx, req.ID, m.business.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status, "transition must be visible to the next read")

	_, err = m.requests.UpdateStatus(ctx, req.ID, testutil.Actor(m.creator), models.StatusDeclined)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	got, err = m.requests.GetRequest(ctx, req.ID, m.creator.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
}

func TestUpdateStatus_TerminalStatesAreFinal(t *testing.T) {
	pairs := []struct {
		first  models.RequestStatus
		second models.RequestStatus
	}{
		{models.StatusAccepted, models.StatusDeclined},
		{models.StatusDeclined, models.StatusAccepted},
		{models.StatusAccepted, models.StatusAccepted},
		{models.StatusDeclined, models.StatusDeclined},
		{models.StatusDeclined, models.StatusPending},
	}

	for _, p := range pairs {
		t.Run(string(p.first)+"->"+string(p.second), func(t *testing.T) {
			m := newMarketplace(t, MessageServiceOptions{})
			ctx := context.Background()

			req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
			require.NoError(t, err)

			_, err = m.requests.UpdateStatus(ctx, req.ID, testutil.Actor(m.creator), p.first)
			require.NoError(t, err)

			_, err = m.requests.UpdateStatus(ctx, req.ID, testutil.Actor(m.creator), p.second)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "got %v", err)
		})
	}
}

func TestUpdateStatus_Guards(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
	require.NoError(t, err)

	otherCreator, _ := testutil.CreateCreator(t, m.db, "Arjun Kapoor")

	tests := []struct {
		name      string
		requestID string
		actor     models.Actor
		status    models.RequestStatus
		kind      error
	}{
		{"business cannot accept", req.ID, testutil.Actor(m.business), models.StatusAccepted, ErrAuthorization},
		{"outsider cannot decline", req.ID, testutil.Actor(m.outsider), models.StatusDeclined, ErrAuthorization},
		{"other creator cannot accept", req.ID, testutil.Actor(otherCreator), models.StatusAccepted, ErrAuthorization},
		{"creator id with business role", req.ID, models.Actor{ID: m.creator.ID, Role: models.RoleBusiness}, models.StatusAccepted, ErrAuthorization},
		{"back to pending", req.ID, testutil.Actor(m.creator), models.StatusPending, ErrInvalidTransition},
		{"unknown status", req.ID, testutil.Actor(m.creator), models.RequestStatus("cancelled"), ErrValidation},
		{"missing request", "nope", testutil.Actor(m.creator), models.StatusAccepted, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.requests.UpdateStatus(ctx, tt.requestID, tt.actor, tt.status)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}

	got, err := m.requests.GetRequest(ctx, req.ID, m.business.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status, "failed transitions must leave the status unchanged")
}

func TestUpdateStatus_ConcurrentResolutionsApplyOnce(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
	require.NoError(t, err)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		applied   []models.RequestStatus
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		status := models.StatusAccepted
		if i%2 == 1 {
			status = models.StatusDeclined
		}
		wg.Add(1)
		go func(status models.RequestStatus) {
			defer wg.Done()
			_, err := m.requests.UpdateStatus(ctx, req.ID, testutil.Actor(m.creator), status)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				applied = append(applied, status)
				return
			}
			if errors.Is(err, ErrInvalidTransition) {
				conflicts++
			}
		}(status)
	}
	wg.Wait()

	require.Len(t, applied, 1, "exactly one transition may win")
	assert.Equal(t, attempts-1, conflicts)

	got, err := m.requests.GetRequest(ctx, req.ID, m.creator.ID)
	require.NoError(t, err)
	assert.Equal(t, applied[0], got.Status)
}

func TestUpdateStatus_LostRaceReportsInvalidTransition(t *testing.T) {
	m := newMarketplace(t, MessageServiceOptions{})
	ctx := context.Background()

	req, err := m.requests.CreateRequest(ctx, testutil.Actor(m.business), summerLaunch(m.creator.ID))
	require.NoError(t, err)

	// The caller read the row while pending, then another resolution landed
	stale := *req
	require.NoError(t, m.db.Model(&models.Request{}).Where("id = ?", req.ID).Update("status", models.StatusDeclined).Error)

	err = m.requests.transition(ctx, &stale, testutil.Actor(m.creator), models.StatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "declined")

	got, err := m.requests.GetRequest(ctx, req.ID, m.creator.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, got.Status)
}
