package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/shreyasiddheshwar12/orangesample/config"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/shreyasiddheshwar12/orangesample/tests/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testEnv wires the service singletons to a fresh database holding a business,
// a creator and an unrelated business
type testEnv struct {
	db       *gorm.DB
	business models.User
	creator  models.User
	outsider models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test", UploadDir: t.TempDir()})

	profiles := services.InitProfileService(db)
	services.InitIdentityService(db)
	services.InitRequestService(db, profiles, quietLogger())
	services.InitMessageService(db, profiles, services.MessageServiceOptions{
		AllowOnDeclined: true,
		Logger:          quietLogger(),
	})
	services.SetUserInfoService(nil)
	services.SetSeeder(nil)

	env := &testEnv{db: db}
	env.business, _ = testutil.CreateBusiness(t, db, "Glow Cosmetics")
	env.creator, _ = testutil.CreateCreator(t, db, "Priya Sharma")
	env.outsider, _ = testutil.CreateBusiness(t, db, "FitLife Nutrition")
	return env
}

// routerAs builds a router that authenticates every request as user
func routerAs(user models.User, register func(r *gin.Engine)) *gin.Engine {
	router := setupTestRouter()
	router.Use(testutil.MockAuthMiddleware(user.ID, user.Role, "token-"+user.ID))
	register(router)
	return router
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	}
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

// createPendingRequest inserts a request from env.business to env.creator
func createPendingRequest(t *testing.T, env *testEnv) *models.Request {
	t.Helper()

	request, err := services.GetRequestService().CreateRequest(
		context.Background(),
		testutil.Actor(env.business),
		services.CreateRequestInput{
			CreatorID:   env.creator.ID,
			Title:       "Summer Collection Campaign",
			Brief:       "Showcase the summer range",
			OfferAmount: decimal.RequireFromString("30000"),
		},
	)
	require.NoError(t, err)
	return request
}
