package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// UserInfo is the profile returned by an OIDC /userinfo endpoint
type UserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserInfoService looks up the profile behind an access token
type UserInfoService interface {
	GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}

// Auth0UserInfoService calls Auth0's /userinfo endpoint
type Auth0UserInfoService struct {
	domain     string
	httpClient *http.Client
}

// NewAuth0UserInfoService creates a client for the tenant at domain
func NewAuth0UserInfoService(domain string) *Auth0UserInfoService {
	return &Auth0UserInfoService{
		domain: domain,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Auth0UserInfoService) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	// A domain with a scheme is used as-is (test servers)
	url := "https://" + s.domain + "/userinfo"
	if strings.HasPrefix(s.domain, "http://") || strings.HasPrefix(s.domain, "https://") {
		url = strings.TrimSuffix(s.domain, "/") + "/userinfo"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create userinfo request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call userinfo endpoint")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "decode userinfo response")
	}
	return &info, nil
}

var userInfoServiceInstance UserInfoService

// GetUserInfoService returns the configured userinfo lookup, or nil when tokens
// are not issued by Auth0
func GetUserInfoService() UserInfoService {
	return userInfoServiceInstance
}

// SetUserInfoService sets the userinfo service instance
func SetUserInfoService(service UserInfoService) {
	userInfoServiceInstance = service
}
