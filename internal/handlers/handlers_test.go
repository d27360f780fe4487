package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/urbanstyle/tienda/internal/handlers"
	"github.com/urbanstyle/tienda/internal/hash"
	"github.com/urbanstyle/tienda/internal/middleware/auth"
	"github.com/urbanstyle/tienda/internal/models"
	"github.com/urbanstyle/tienda/internal/service/token"
	httpserver "github.com/urbanstyle/tienda/internal/transport/http"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	// one connection keeps every query on the same :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := InitTestDB(t)

	e := echo.New()
	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: testSecret},
		ProductHandler: &handlers.ProductHandler{DB: db},
		OrderHandler:   &handlers.OrderHandler{DB: db},
		Gate:           &auth.Gate{JWTSecret: testSecret},
	}
	httpserver.Register(e, &deps)

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) do(method, path, tok string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder) map[string]any {
	env.T.Helper()
	var out map[string]any
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func validProfile(email string) map[string]any {
	return map[string]any{
		"name":            "Ana",
		"lastname":        "García",
		"email":           email,
		"password":        "pw",
		"document_type":   "CC",
		"document_number": "12345678",
		"phone":           "3001234567",
	}
}

// createUser inserts a user straight into the store and mints a token for it.
func (env *testEnv) createUser(email string, role models.Role) (models.User, string) {
	env.T.Helper()

	pwHash, err := hash.HashPassword("pw")
	require.NoError(env.T, err)

	user := models.User{
		Email:          email,
		PasswordHash:   pwHash,
		Name:           "Ana",
		LastName:       "García",
		DocumentType:   "CC",
		DocumentNumber: "12345678",
		Phone:          "3001234567",
		Role:           role,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)

	tok, err := token.Sign(user.ID, user.Email, user.Role, testSecret)
	require.NoError(env.T, err)

	return user, tok
}

func (env *testEnv) createProduct(name, gender string, price float64) models.Product {
	env.T.Helper()
	prod := models.Product{
		Name:      name,
		Gender:    gender,
		PriceBase: price,
		Stock:     1,
		SKU:       "TST-H-1",
	}
	require.NoError(env.T, env.DB.Create(&prod).Error)
	return prod
}
