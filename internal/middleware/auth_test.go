package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"famledger/internal/caching"
	"famledger/internal/common"
	"famledger/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthMiddlewareTestSuite struct {
	suite.Suite
	redis  *miniredis.Miniredis
	tokens *services.TokenService
	userID uuid.UUID
}

func (suite *AuthMiddlewareTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	assert.NoError(suite.T(), err)
	suite.redis = mr

	cache := caching.NewRedisCacheService(mr.Addr(), "", 0)
	suite.tokens = services.NewTokenService(cache, "test-secret", "app", time.Hour)
	suite.userID = uuid.New()
}

func (suite *AuthMiddlewareTestSuite) TearDownTest() {
	suite.redis.Close()
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

type boundIdentity struct {
	UserID      uuid.UUID
	HasUserID   bool
	Username    string
	HasUsername bool
}

func (suite *AuthMiddlewareTestSuite) invoke(req *http.Request) (*boundIdentity, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	captured := &boundIdentity{}
	handler := Authentication(suite.tokens)(func(c echo.Context) error {
		ctx := c.Request().Context()
		captured.UserID, captured.HasUserID = common.GetUserIDFromContext(ctx)
		captured.Username, captured.HasUsername = common.GetUsernameFromContext(ctx)
		return c.NoContent(http.StatusOK)
	})
	return captured, handler(c)
}

func (suite *AuthMiddlewareTestSuite) TestMissingHeaderIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)

	_, err := suite.invoke(req)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthMiddlewareTestSuite) TestWrongSchemeIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, err := suite.invoke(req)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthMiddlewareTestSuite) TestInvalidTokenIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	_, err := suite.invoke(req)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthMiddlewareTestSuite) TestValidTokenBindsIdentity() {
	token, err := suite.tokens.Issue(context.Background(), suite.userID, "alice")
	assert.NoError(suite.T(), err)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	captured, err := suite.invoke(req)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), captured.HasUserID)
	assert.Equal(suite.T(), suite.userID, captured.UserID)
	assert.True(suite.T(), captured.HasUsername)
	assert.Equal(suite.T(), "alice", captured.Username)
}

func (suite *AuthMiddlewareTestSuite) TestRevokedTokenIsUnauthorized() {
	token, err := suite.tokens.Issue(context.Background(), suite.userID, "alice")
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.tokens.Revoke(context.Background(), token))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = suite.invoke(req)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthMiddlewareTestSuite) TestSwaggerPrefixBypassesGate() {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)

	_, err := suite.invoke(req)
	assert.NoError(suite.T(), err)
}
