package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"multipos/internal/apperr"
	"multipos/internal/config"
	"multipos/internal/dto"
	"multipos/internal/model"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) (*memStore, AuthService, *model.User) {
	t.Helper()
	m := newMemStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	shop := m.addShop("Centro")
	u := &model.User{
		ID:           uuid.New(),
		Username:     "ana",
		Name:         "Ana Cashier",
		Email:        strPtr("ana@example.com"),
		PasswordHash: string(hash),
		Role:         model.RoleCashier,
		ShopID:       &shop.ID,
		IsActive:     true,
	}
	m.users[u.ID] = u
	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 24}
	return m, NewAuthService(fakeUserRepo{m}, cfg), u
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	_, svc, u := newAuthFixture(t)

	for _, login := range []string{"ana", "ana@example.com"} {
		resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: login, Password: "s3cret-pass"})
		require.NoError(t, err, login)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, 8*3600, resp.ExpiresIn)
		assert.Equal(t, u.ID.String(), resp.User.ID)

		access := parseClaims(t, resp.AccessToken)
		assert.Equal(t, TokenTypeAccess, access["token_type"])
		assert.Equal(t, u.ShopID.String(), access["shop_id"])
		assert.Equal(t, model.RoleCashier, access["role"])

		refresh := parseClaims(t, resp.RefreshToken)
		assert.Equal(t, TokenTypeRefresh, refresh["token_type"])
	}
}

func TestLoginFailures(t *testing.T) {
	m, svc, u := newAuthFixture(t)
	var ue *apperr.UnauthorizedError

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "wrong-pass"})
	assert.ErrorAs(t, err, &ue)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorAs(t, err, &ue)

	m.users[u.ID].IsActive = false
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "s3cret-pass"})
	assert.ErrorAs(t, err, &ue)
}

func TestRefresh(t *testing.T) {
	m, svc, u := newAuthFixture(t)
	ctx := context.Background()
	login, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "s3cret-pass"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), resp.User.ID)

	var ue *apperr.UnauthorizedError
	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorAs(t, err, &ue, "an access token is not a refresh token")

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorAs(t, err, &ue)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    u.ID.String(),
		"token_type": TokenTypeRefresh,
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, signed)
	assert.ErrorAs(t, err, &ue)

	m.users[u.ID].IsActive = false
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorAs(t, err, &ue)
}

func TestCreateAndUpdateUser(t *testing.T) {
	m, svc, _ := newAuthFixture(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "marco",
		Name:     "Marco Manager",
		Password: "longenough",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	assert.Nil(t, created.ShopID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.users[id].PasswordHash), []byte("longenough")))

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "marco", Name: "Other", Password: "longenough", Role: model.RoleCashier})
	var dk *apperr.DuplicateKeyError
	assert.ErrorAs(t, err, &dk)

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "x", Name: "Bad Shop", Password: "longenough", Role: model.RoleCashier, ShopID: strPtr("nope")})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	updated, err := svc.UpdateUser(ctx, id, dto.UpdateUserRequest{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.Equal(t, "Marco Manager", updated.Name)

	require.NoError(t, svc.DeactivateUser(ctx, id))
	active, err := svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
