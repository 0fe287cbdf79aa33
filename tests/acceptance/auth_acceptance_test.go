package acceptance

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shreyasiddheshwar12/orangesample/config"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/shreyasiddheshwar12/orangesample/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// AuthAcceptanceTestSuite defines the acceptance test suite for authentication
type AuthAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	cfg    *config.Config
	issuer *services.TokenIssuer
	user   models.User
}

// SetupSuite runs once before all tests
func (suite *AuthAcceptanceTestSuite) SetupSuite() {
	cfg, err := loadTestConfig(suite.T().Setenv)
	suite.Require().NoError(err)
	suite.cfg = cfg

	suite.issuer, err = newIssuer(cfg)
	suite.Require().NoError(err)

	db := testutil.NewTestDB(suite.T())
	suite.user, _ = testutil.CreateCreator(suite.T(), db, "Priya Sharma")

	suite.server = httptest.NewServer(createRouter(cfg, db))
}

// TearDownSuite runs once after all tests
func (suite *AuthAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
}

// makeRequest is a helper function to make HTTP requests
func (suite *AuthAcceptanceTestSuite) makeRequest(method, path string, authHeader string) *http.Response {
	req, err := http.NewRequest(method, suite.server.URL+path, nil)
	suite.Require().NoError(err)

	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthAcceptanceTestSuite) decode(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(body, &response), string(body))
	return response
}

// TestHealthEndpoint tests the health check endpoint
func (suite *AuthAcceptanceTestSuite) TestHealthEndpoint() {
	resp := suite.makeRequest(http.MethodGet, "/api/v1/health", "")
	response := suite.decode(resp)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.True(suite.T(), response["success"].(bool))
	assert.Equal(suite.T(), "Orange marketplace API is running", response["message"])
}

// TestProtectedEndpointWorkflow walks a caller from no token to a valid one
func (suite *AuthAcceptanceTestSuite) TestProtectedEndpointWorkflow() {
	suite.T().Run("Without Authentication", func(t *testing.T) {
		resp := suite.makeRequest(http.MethodGet, "/api/v1/users/me", "")
		response := suite.decode(resp)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.False(t, response["success"].(bool))
		assert.Equal(t, "UNAUTHORIZED", response["error"].(map[string]interface{})["code"])
	})

	suite.T().Run("With Invalid Token", func(t *testing.T) {
		resp := suite.makeRequest(http.MethodGet, "/api/v1/users/me", "Bearer invalid.token.here")
		response := suite.decode(resp)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_TOKEN", response["error"].(map[string]interface{})["code"])
	})

	suite.T().Run("With Malformed Header", func(t *testing.T) {
		resp := suite.makeRequest(http.MethodGet, "/api/v1/users/me", "Token abc")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	suite.T().Run("With Unknown Account", func(t *testing.T) {
		token, err := suite.issuer.Issue("auth0|nobody", models.RoleBusiness, "nobody@example.com", "Nobody")
		assert.NoError(t, err)

		resp := suite.makeRequest(http.MethodGet, "/api/v1/requests/sent", "Bearer "+token)
		response := suite.decode(resp)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "USER_NOT_FOUND", response["error"].(map[string]interface{})["code"])
	})

	suite.T().Run("With Valid Token", func(t *testing.T) {
		token, err := suite.issuer.Issue(suite.user.ID, suite.user.Role, suite.user.Email, suite.user.Name)
		assert.NoError(t, err)

		resp := suite.makeRequest(http.MethodGet, "/api/v1/users/me", "Bearer "+token)
		response := suite.decode(resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, suite.user.ID, data["id"])
		assert.Equal(t, models.RoleCreator, data["role"])
	})
}

// TestErrorResponseFormat checks the error envelope
func (suite *AuthAcceptanceTestSuite) TestErrorResponseFormat() {
	resp := suite.makeRequest(http.MethodGet, "/api/v1/requests/sent", "")
	response := suite.decode(resp)

	assert.Contains(suite.T(), response, "success")
	assert.Contains(suite.T(), response, "error")
	assert.False(suite.T(), response["success"].(bool))

	errorObj := response["error"].(map[string]interface{})
	assert.Contains(suite.T(), errorObj, "code")
	assert.Contains(suite.T(), errorObj, "message")
}

// TestContentTypeHeaders checks that every response is JSON
func (suite *AuthAcceptanceTestSuite) TestContentTypeHeaders() {
	testCases := []struct {
		name string
		path string
	}{
		{"Health endpoint", "/api/v1/health"},
		{"Protected endpoint", "/api/v1/users/me"},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			resp := suite.makeRequest(http.MethodGet, tc.path, "")
			resp.Body.Close()
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
		})
	}
}

// TestAuthAcceptanceTestSuite runs the test suite
func TestAuthAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthAcceptanceTestSuite))
}
