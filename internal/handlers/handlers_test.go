package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmun/delegation-api/internal/auth"
	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/domain/event"
	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/domain/registration"
	"github.com/openmun/delegation-api/internal/middleware/session"
	"github.com/openmun/delegation-api/internal/storage/memory"
)

type capturedMail struct {
	Kind  string
	Email string
	Token string
}

type captureMailer struct {
	mails []capturedMail
}

func (m *captureMailer) SendVerification(_ context.Context, email, _, token string) error {
	m.mails = append(m.mails, capturedMail{Kind: "verification", Email: email, Token: token})
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, _, token string) error {
	m.mails = append(m.mails, capturedMail{Kind: "reset", Email: email, Token: token})
	return nil
}

type testAPI struct {
	router *gin.Engine
	store  *memory.Store
	mail   *captureMailer
	tokens *auth.TokenManager
	hasher auth.BcryptHasher
	comm   *community.Community
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	mail := &captureMailer{}
	hasher := auth.NewBcryptHasher(4)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	reg := registration.NewService(store, hasher, mail, registration.Config{})
	identity := auth.NewService(store, hasher, tokens, mail, reg, auth.Config{})

	authHandler := NewAuthHandler(reg, identity)
	communityHandler := NewCommunityHandler(store.Communities(), store.People(), nil)
	eventHandler := NewEventHandler(store.Events())
	profileHandler := NewProfileHandler(store)

	router := gin.New()
	api := router.Group("/api")

	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/verify", authHandler.Verify)
	api.POST("/auth/resend-verification", authHandler.ResendVerification)
	api.POST("/auth/reset-password/request", authHandler.RequestPasswordReset)
	api.POST("/auth/reset-password/confirm", authHandler.ResetPassword)

	api.GET("/communities", communityHandler.List)
	api.GET("/communities/:id", communityHandler.Get)
	api.GET("/events", eventHandler.List)

	authed := api.Group("", session.RequireAuth(tokens))
	authed.GET("/profile", profileHandler.Get)

	admin := api.Group("", session.RequireAuth(tokens), session.RequireAdmin())
	admin.POST("/communities", communityHandler.Create)
	admin.GET("/communities/:id/roster", communityHandler.Roster)
	admin.POST("/events", eventHandler.Create)
	admin.DELETE("/events/:id", eventHandler.Delete)

	comm := community.NewCommunity("Security Council", 5, []string{"France", "Spain"})
	require.NoError(t, store.Communities().Create(comm))

	return &testAPI{
		router: router,
		store:  store,
		mail:   mail,
		tokens: tokens,
		hasher: hasher,
		comm:   comm,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) signupBody(email, country string) gin.H {
	return gin.H{
		"email":        email,
		"password":     "delegate-pass",
		"name":         "Test Delegate",
		"community_id": a.comm.ID.String(),
		"country":      country,
	}
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	id := uuid.New()
	hash, err := a.hasher.Hash("admin-pass")
	require.NoError(t, err)

	acc := account.NewAccount(id, "admin@example.org", hash)
	acc.EmailVerified = true
	require.NoError(t, a.store.Accounts().Create(acc))
	require.NoError(t, a.store.People().Create(&person.Person{
		ID:       id,
		Name:     "Admin",
		Email:    "admin@example.org",
		Role:     person.RoleAdmin,
		Verified: true,
	}))

	token, err := a.tokens.Issue(id, "admin")
	require.NoError(t, err)
	return token
}

func TestSignupEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/signup", "", api.signupBody("alice@example.org", "France"))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/signup", "", api.signupBody("bob@example.org", "France"))
	assert.Equal(t, http.StatusConflict, w.Code, "country already claimed")

	w = api.do(t, http.MethodPost, "/api/auth/signup", "", api.signupBody("alice@example.org", "Spain"))
	assert.Equal(t, http.StatusConflict, w.Code, "email already registered")

	w = api.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	unknown := api.signupBody("carol@example.org", "France")
	unknown["community_id"] = uuid.NewString()
	w = api.do(t, http.MethodPost, "/api/auth/signup", "", unknown)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated,
		api.do(t, http.MethodPost, "/api/auth/signup", "", api.signupBody("alice@example.org", "France")).Code)

	login := gin.H{"email": "alice@example.org", "password": "delegate-pass"}

	w := api.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusForbidden, w.Code, "unverified account cannot sign in")

	verify := gin.H{"token": api.mail.mails[len(api.mail.mails)-1].Token}
	require.Equal(t, http.StatusOK,
		api.do(t, http.MethodPost, "/api/auth/verify", "", verify).Code)

	w = api.do(t, http.MethodPost, "/api/auth/login", "", login)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.org", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyEndpointRejectsBadToken(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"token": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated,
		api.do(t, http.MethodPost, "/api/auth/signup", "", api.signupBody("alice@example.org", "France")).Code)

	w := api.do(t, http.MethodPost, "/api/auth/reset-password/request", "", gin.H{"email": "alice@example.org"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/reset-password/request", "", gin.H{"email": "unknown@example.org"})
	assert.Equal(t, http.StatusAccepted, w.Code, "unknown email gets the same reply")

	reset := api.mail.mails[len(api.mail.mails)-1]
	require.Equal(t, "reset", reset.Kind)

	w = api.do(t, http.MethodPost, "/api/auth/reset-password/confirm", "",
		gin.H{"token": reset.Token, "password": "new-delegate-pass"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/reset-password/confirm", "",
		gin.H{"token": "bogus", "password": "new-delegate-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommunityEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/communities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Security Council")
	assert.Contains(t, w.Body.String(), "available_countries")

	w = api.do(t, http.MethodGet, "/api/communities/"+api.comm.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"countries"`)

	w = api.do(t, http.MethodGet, "/api/communities/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommunityAdminEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.adminToken(t)

	body := gin.H{"name": "General Assembly", "seat_capacity": 20, "countries": []string{"Japan", "Brazil"}}

	w := api.do(t, http.MethodPost, "/api/communities", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/communities", admin, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodPost, "/api/communities", admin,
		gin.H{"name": "Bad", "seat_capacity": 20, "countries": []string{"X", "X"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/communities/"+api.comm.ID.String()+"/roster", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.adminToken(t)

	create := gin.H{
		"title":       "Opening Ceremony",
		"date":        time.Now().Add(30 * 24 * time.Hour).Format("2006-01-02"),
		"description": "The plenary opens.",
	}

	w := api.do(t, http.MethodPost, "/api/events", "", create)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/events", admin, create)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	w = api.do(t, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Opening Ceremony")

	w = api.do(t, http.MethodPost, "/api/events", admin,
		gin.H{"title": "Bad", "date": "not-a-date", "description": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/events", admin, gin.H{
		"title":       "Last Year",
		"date":        time.Now().Add(-365 * 24 * time.Hour).Format("2006-01-02"),
		"description": "Already happened.",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, "/api/events/"+created.Data.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/events/"+created.Data.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventListUpcomingFilter(t *testing.T) {
	api := newTestAPI(t)

	past := event.NewEvent("Last Year", "Already happened.", time.Now().Add(-365*24*time.Hour))
	future := event.NewEvent("Closing Ceremony", "The plenary closes.", time.Now().Add(30*24*time.Hour))
	require.NoError(t, api.store.Events().Create(past))
	require.NoError(t, api.store.Events().Create(future))

	w := api.do(t, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Last Year")
	assert.Contains(t, w.Body.String(), "Closing Ceremony")

	w = api.do(t, http.MethodGet, "/api/events?upcoming=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Last Year")
	assert.Contains(t, w.Body.String(), "Closing Ceremony")
}

func TestProfileEndpoint(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated,
		api.do(t, http.MethodPost, "/api/auth/signup", "", api.signupBody("alice@example.org", "France")).Code)

	verify := gin.H{"token": api.mail.mails[len(api.mail.mails)-1].Token}
	require.Equal(t, http.StatusOK,
		api.do(t, http.MethodPost, "/api/auth/verify", "", verify).Code)

	login := api.do(t, http.MethodPost, "/api/auth/login", "",
		gin.H{"email": "alice@example.org", "password": "delegate-pass"})
	require.Equal(t, http.StatusOK, login.Code)

	var signedIn struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &signedIn))
	require.NotEmpty(t, signedIn.Data.Token)

	w := api.do(t, http.MethodGet, "/api/profile", signedIn.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"profile"`)
	assert.Contains(t, w.Body.String(), "Security Council")

	w = api.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventDateOrdering(t *testing.T) {
	api := newTestAPI(t)
	admin := api.adminToken(t)

	for i, title := range []string{"Closing Ceremony", "Opening Ceremony"} {
		date := time.Now().Add(time.Duration(40-i*10) * 24 * time.Hour).Format("2006-01-02")
		w := api.do(t, http.MethodPost, "/api/events", admin,
			gin.H{"title": title, "date": date, "description": fmt.Sprintf("%s.", title)})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := api.do(t, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Opening Ceremony")
	assert.Contains(t, w.Body.String(), "Closing Ceremony")
}
