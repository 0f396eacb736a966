package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"catalog/internal/dto"
	"catalog/internal/handlers"
	"catalog/internal/mapper"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "pass"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and the
// full handler/middleware wiring used in main.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Product{}))

	authService, err := services.NewAuthService(testAdminUsername, testAdminPassword, "test_jwt_secret")
	assert.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, mapper.NewProductMapper(), nil)

	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	writeGuard := middleware.AuthRequired(authService)
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, writeGuard)

	// Paths not registered above require authentication by default.
	app.Use(writeGuard)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func basicAuthHeader() string {
	credentials := testAdminUsername + ":" + testAdminPassword
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// doRequest performs one request against the app. An empty authHeader
// sends the request unauthenticated.
func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, authHeader string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	return resp
}

func decodeProduct(t *testing.T, resp *http.Response) dto.ProductResponse {
	t.Helper()
	var product dto.ProductResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	return product
}

func decodePage(t *testing.T, resp *http.Response) dto.ProductPage {
	t.Helper()
	var page dto.ProductPage
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func productBody(name, description, sku string, price float64) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"price":       price,
		"sku":         sku,
	}
}

func createProduct(t *testing.T, app *fiber.App, body map[string]interface{}) dto.ProductResponse {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", body, basicAuthHeader())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeProduct(t, resp)
}

func totalElements(t *testing.T, app *fiber.App) int64 {
	t.Helper()
	resp := doRequest(t, app, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	return decodePage(t, resp).TotalElements
}

func TestCreateProduct(t *testing.T) {
	app := setupApp(t)

	body := productBody("Laptop", "High performance laptop", "LAP-001", 1200)
	body["categoryId"] = 3

	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", body, basicAuthHeader())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeProduct(t, resp)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Laptop", created.Name)
	assert.Equal(t, "LAP-001", created.SKU)
	assert.Equal(t, int64(3), *created.CategoryID)
	assert.Equal(t, 0, created.Stock) // default when omitted
	assert.True(t, created.Active)    // default when omitted
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	// The id is stable across subsequent GETs.
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decodeProduct(t, resp).ID)
}

func TestCreateProduct_ValidationFailure(t *testing.T) {
	app := setupApp(t)

	body := map[string]interface{}{
		"name":        "",
		"description": "Missing name and non-positive price",
		"price":       -5,
		"sku":         "BAD-001",
	}

	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", body, basicAuthHeader())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Validation failed", payload.Message)
	assert.Contains(t, payload.Errors, "Name")
	assert.Contains(t, payload.Errors, "Price")

	assert.Equal(t, int64(0), totalElements(t, app))
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	app := setupApp(t)

	createProduct(t, app, productBody("Laptop", "First", "DUP-001", 1200))

	resp := doRequest(t, app, http.MethodPost, "/api/v1/products",
		productBody("Other laptop", "Second", "DUP-001", 900), basicAuthHeader())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Error)
	assert.Contains(t, payload.Message, "SKU")

	// The losing create leaves the store count unchanged.
	assert.Equal(t, int64(1), totalElements(t, app))
}

func TestCreateProduct_Unauthenticated(t *testing.T) {
	app := setupApp(t)

	body := productBody("Laptop", "High performance laptop", "LAP-001", 1200)

	// No credentials
	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), totalElements(t, app))

	// Wrong password
	wrong := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:nope"))
	resp = doRequest(t, app, http.MethodPost, "/api/v1/products", body, wrong)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), totalElements(t, app))

	// Valid credentials increment the count by exactly one.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/products", body, basicAuthHeader())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(1), totalElements(t, app))
}

func TestGetProductByID_NotFound(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/products/999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "999")
}

func TestListSearchAndFilter(t *testing.T) {
	app := setupApp(t)

	laptop := productBody("Laptop Gaming", "High performance laptop", "LAP-001", 1200)
	laptop["categoryId"] = 1
	mouse := productBody("Mouse Gaming", "Wireless mouse", "MOU-001", 25)
	mouse["categoryId"] = 2
	keyboard := productBody("Teclado", "Mechanical keyboard", "TEC-001", 75)
	keyboard["categoryId"] = 2

	createProduct(t, app, laptop)
	createProduct(t, app, mouse)
	createProduct(t, app, keyboard)

	// Substring search on name, case-insensitive.
	resp := doRequest(t, app, http.MethodGet, "/api/v1/products?keyword=Gaming", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodePage(t, resp)
	assert.Equal(t, int64(2), page.TotalElements)
	names := []string{page.Content[0].Name, page.Content[1].Name}
	assert.ElementsMatch(t, []string{"Laptop Gaming", "Mouse Gaming"}, names)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?keyword=GAMING", nil, "")
	page = decodePage(t, resp)
	assert.Equal(t, int64(2), page.TotalElements)

	// Description matches too.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?keyword=keyboard", nil, "")
	page = decodePage(t, resp)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Teclado", page.Content[0].Name)

	// Blank keyword falls back to list-all.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?keyword=%20%20", nil, "")
	page = decodePage(t, resp)
	assert.Equal(t, int64(3), page.TotalElements)

	// categoryId on the query takes precedence over the keyword.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?categoryId=1&keyword=Teclado", nil, "")
	page = decodePage(t, resp)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Laptop Gaming", page.Content[0].Name)

	// Dedicated category path.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products/category/2", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page = decodePage(t, resp)
	assert.Equal(t, int64(2), page.TotalElements)

	// Malformed category id.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?categoryId=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListProducts_Pagination(t *testing.T) {
	app := setupApp(t)

	createProduct(t, app, productBody("Laptop", "High performance laptop", "LAP-001", 1200))
	createProduct(t, app, productBody("Mouse", "Wireless mouse", "MOU-001", 25))
	createProduct(t, app, productBody("Teclado", "Mechanical keyboard", "TEC-001", 75))

	resp := doRequest(t, app, http.MethodGet, "/api/v1/products?page=0&size=2", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodePage(t, resp)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 2)
	// Default sort is name ascending.
	assert.Equal(t, "Laptop", page.Content[0].Name)
	assert.Equal(t, "Mouse", page.Content[1].Name)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?page=1&size=2", nil, "")
	page = decodePage(t, resp)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, "Teclado", page.Content[0].Name)

	// Explicit descending sort.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products?sort=price,desc", nil, "")
	page = decodePage(t, resp)
	assert.Equal(t, "Laptop", page.Content[0].Name)
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)

	body := productBody("Laptop", "High performance laptop", "LAP-001", 1200)
	body["stock"] = 5
	body["categoryId"] = 1
	created := createProduct(t, app, body)

	// Give UpdatedAt room to strictly advance.
	time.Sleep(10 * time.Millisecond)

	update := map[string]interface{}{
		"name":        "Laptop Pro",
		"description": "Even faster laptop",
		"price":       1500,
	}
	resp := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID), update, basicAuthHeader())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeProduct(t, resp)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Laptop Pro", updated.Name)
	// Fields omitted from the body keep their stored values.
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, int64(1), *updated.CategoryID)
	assert.Equal(t, "LAP-001", updated.SKU)
	assert.True(t, updated.Active)
	// CreatedAt survives, UpdatedAt strictly advances.
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// Present optional fields do overwrite.
	update["stock"] = 9
	update["sku"] = "LAP-002"
	update["active"] = false
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID), update, basicAuthHeader())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated = decodeProduct(t, resp)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "LAP-002", updated.SKU)
	assert.False(t, updated.Active)
}

func TestUpdateProduct_NotFoundAndUnauthenticated(t *testing.T) {
	app := setupApp(t)

	update := map[string]interface{}{
		"name":        "Laptop Pro",
		"description": "Even faster laptop",
		"price":       1500,
	}

	resp := doRequest(t, app, http.MethodPut, "/api/v1/products/999", update, basicAuthHeader())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "999")

	resp = doRequest(t, app, http.MethodPut, "/api/v1/products/1", update, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProduct_DuplicateSKU(t *testing.T) {
	app := setupApp(t)

	createProduct(t, app, productBody("Laptop", "First", "LAP-001", 1200))
	second := createProduct(t, app, productBody("Mouse", "Second", "MOU-001", 25))

	update := map[string]interface{}{
		"name":        "Mouse",
		"description": "Second",
		"price":       25,
		"sku":         "LAP-001",
	}
	resp := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", second.ID), update, basicAuthHeader())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)

	created := createProduct(t, app, productBody("Laptop", "High performance laptop", "LAP-001", 1200))

	// Unauthenticated delete is rejected.
	resp := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(1), totalElements(t, app))

	// Deleting a non-existent id does not alter the count.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/products/999", nil, basicAuthHeader())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(1), totalElements(t, app))

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, basicAuthHeader())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A subsequent GET for the deleted id misses.
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(0), totalElements(t, app))
}

func TestLoginAndBearerToken(t *testing.T) {
	app := setupApp(t)

	// Wrong credentials are rejected.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "admin", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid credentials yield a token.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": testAdminUsername, "password": testAdminPassword}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.NotEmpty(t, login.Token)

	// The token authorizes writes.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/products",
		productBody("Laptop", "High performance laptop", "LAP-001", 1200), "Bearer "+login.Token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// A garbage token does not.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/products",
		productBody("Mouse", "Wireless mouse", "MOU-001", 25), "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnlistedPathsRequireAuth(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/admin/metrics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authenticated requests to unknown paths fall through to a plain 404.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/admin/metrics", nil, basicAuthHeader())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
