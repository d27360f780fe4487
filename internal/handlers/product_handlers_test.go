package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/urbanstyle/tienda/internal/models"
)

func productPayload() map[string]any {
	return map[string]any{
		"name":        "Camisa Oxford",
		"description": "Camisa de algodón",
		"category":    "Camisa",
		"gender":      "Hombre",
		"colors_json": `[{"name":"Negro","code":"#000"}]`,
		"sizes":       []string{"S", "M", "L"},
		"price_base":  39.99,
		"image":       "https://example.com/camisa.jpg",
	}
}

func TestListProductsIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct("Camisa", "Hombre", 10)
	env.createProduct("Falda", "Mujer", 20)

	rec := env.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, customerTok := env.createUser("a@test.com", models.RoleCustomer)

	rec := env.do(http.MethodPost, "/api/products", customerTok, productPayload())
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/api/products", "", productPayload())
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var count int64
	env.DB.Model(&models.Product{}).Count(&count)
	require.Zero(t, count)
}

func TestCreateProductAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.createUser("admin@urbanstyle.com", models.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/products", adminTok, productPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	body := env.decode(rec)
	require.Equal(t, true, body["success"])
	require.Regexp(t, regexp.MustCompile(`^CAM-H-\d{1,4}$`), body["sku"])

	var prod models.Product
	require.NoError(t, env.DB.First(&prod, uint(body["id"].(float64))).Error)
	require.Equal(t, "S,M,L", prod.Sizes)
	require.Equal(t, uint(1), prod.Stock)
	require.Equal(t, body["sku"], prod.SKU)
}

func TestCreateProductAcceptsDelimitedSizes(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.createUser("admin@urbanstyle.com", models.RoleAdmin)

	payload := productPayload()
	payload["sizes"] = "S,M"

	rec := env.do(http.MethodPost, "/api/products", adminTok, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var prod models.Product
	require.NoError(t, env.DB.First(&prod, uint(env.decode(rec)["id"].(float64))).Error)
	require.Equal(t, "S,M", prod.Sizes)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.createUser("admin@urbanstyle.com", models.RoleAdmin)

	payload := productPayload()
	payload["price_base"] = -1.0

	rec := env.do(http.MethodPost, "/api/products", adminTok, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductReplacesAllFields(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.createUser("admin@urbanstyle.com", models.RoleAdmin)
	prod := env.createProduct("Camisa", "Hombre", 10)

	payload := productPayload()
	payload["name"] = "Camisa Slim"
	payload["price_base"] = 49.99
	payload["stock"] = 7

	rec := env.do(http.MethodPut, "/api/products/"+strconv.Itoa(int(prod.ID)), adminTok, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	require.NoError(t, env.DB.First(&updated, prod.ID).Error)
	require.Equal(t, "Camisa Slim", updated.Name)
	require.Equal(t, 49.99, updated.PriceBase)
	require.Equal(t, uint(7), updated.Stock)
	// the SKU survives a full replace
	require.Equal(t, prod.SKU, updated.SKU)
}

func TestUpdateProductRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, customerTok := env.createUser("a@test.com", models.RoleCustomer)
	prod := env.createProduct("Camisa", "Hombre", 10)

	rec := env.do(http.MethodPut, "/api/products/"+strconv.Itoa(int(prod.ID)), customerTok, productPayload())
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.createUser("admin@urbanstyle.com", models.RoleAdmin)
	prod := env.createProduct("Camisa", "Hombre", 10)

	rec := env.do(http.MethodDelete, "/api/products/"+strconv.Itoa(int(prod.ID)), adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	env.DB.Model(&models.Product{}).Count(&count)
	require.Zero(t, count)
}

func TestDeleteMissingProductIs404(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.createUser("admin@urbanstyle.com", models.RoleAdmin)

	rec := env.do(http.MethodDelete, "/api/products/999", adminTok, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpiredTokenRejectedByGate(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser("a@test.com", models.RoleAdmin)

	claims := jwt.MapClaims{
		"sub":   fmt.Sprint(user.ID),
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(-time.Minute).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/products", expired, productPayload())
	require.Equal(t, http.StatusForbidden, rec.Code)
}
