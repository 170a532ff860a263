package service_test

import (
	"context"
	"net/http"
	"testing"

	"mercury/internal/apierror"
	"mercury/internal/config"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (service.AuthService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(repo, cfg), repo
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, rol model.Role, activo bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Email:        email,
		Nombre:       "Usuario de Prueba",
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       activo,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "admin@mercury.bo", "clave-segura", model.RoleAdmin, true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mercury.bo",
		Password: "clave-segura",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, string(model.RoleAdmin), resp.User.Rol)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "admin@mercury.bo", "clave-segura", model.RoleAdmin, true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mercury.bo",
		Password: "otra-clave",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))
}

func TestLoginInactiveUserUnauthorized(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "baja@mercury.bo", "clave-segura", model.RoleCajero, false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "baja@mercury.bo",
		Password: "clave-segura",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "admin@mercury.bo", "clave-segura", model.RoleAdmin, true)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mercury.bo",
		Password: "clave-segura",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshGarbageTokenUnauthorized(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))
}

func TestCreateUserImporterRequiresCompany(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:    "importador@andina.bo",
		Nombre:   "Importador",
		Password: "clave-segura",
		Rol:      string(model.RoleImportador),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestCreateUserBackOfficeRejectsCompany(t *testing.T) {
	svc, _ := newAuthFixture(t)
	companyID := uuid.NewString()

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:     "cajero@mercury.bo",
		Nombre:    "Cajero",
		Password:  "clave-segura",
		Rol:       string(model.RoleCajero),
		CompanyID: &companyID,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "admin@mercury.bo", "clave-segura", model.RoleAdmin, true)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:    "admin@mercury.bo",
		Nombre:   "Otro Admin",
		Password: "clave-segura",
		Rol:      string(model.RoleAdmin),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
}

func TestDeactivateBlocksLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUser(t, repo, "cajero@mercury.bo", "clave-segura", model.RoleCajero, true)

	require.NoError(t, svc.DeactivateUser(context.Background(), u.ID))

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "cajero@mercury.bo",
		Password: "clave-segura",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))

	require.NoError(t, svc.ReactivateUser(context.Background(), u.ID))
	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "cajero@mercury.bo",
		Password: "clave-segura",
	})
	require.NoError(t, err)
}
