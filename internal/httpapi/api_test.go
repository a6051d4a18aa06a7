package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/database"
	"github.com/atvtrailers/shop-api/internal/httpapi"
	"github.com/atvtrailers/shop-api/internal/model"
	"github.com/atvtrailers/shop-api/internal/notify"
	"github.com/atvtrailers/shop-api/internal/repository"
)

type testServer struct {
	app    *fiber.App
	users  *repository.Users
	orders *repository.Orders
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	logger := auth.DefaultLogger()
	tokens := auth.NewTokenService([]byte("test-signing-key"), "shop-api", logger)
	users := repository.NewUsers(db)
	orders := repository.NewOrders(db, "order-")

	app := httpapi.New(httpapi.Dependencies{
		Tokens:     tokens,
		Users:      users,
		Trailers:   repository.NewTrailers(db),
		Components: repository.NewComponents(db),
		Orders:     orders,
		Resets:     &notify.LogDispatcher{Logger: logger},
		Logger:     logger,
	})

	return &testServer{app: app, users: users, orders: orders, tokens: tokens}
}

// seedAdmin creates an admin account directly in storage and returns a
// token for it.
func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()

	hash, err := auth.HashPassword("admin-password")
	assert.NoError(t, err)

	admin, err := s.users.Create(context.Background(), &model.User{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	assert.NoError(t, err)

	token, err := s.tokens.Generate(adminIdentity{admin})
	assert.NoError(t, err)

	return token
}

type adminIdentity struct{ user *model.User }

func (a adminIdentity) ID() string    { return a.user.ID.String() }
func (a adminIdentity) Email() string { return a.user.Email }
func (a adminIdentity) Role() string  { return a.user.Role }

func (s *testServer) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	assert.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	body := map[string]any{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()

	var body []map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	return body
}

func (s *testServer) register(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	resp := s.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Test Customer",
		"email":    email,
		"password": "secret123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	user, _ := body["user"].(map[string]any)
	assert.NotNil(t, user)

	return body["token"].(string), user["id"].(string)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	resp := s.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Test Customer",
		"email":    "user@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "registration successful", body["message"])
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "user@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		payload fiber.Map
	}{
		{
			name:    "Missing name",
			payload: fiber.Map{"email": "user@example.com", "password": "secret123"},
		},
		{
			name:    "Bad email",
			payload: fiber.Map{"name": "X", "email": "not-an-email", "password": "secret123"},
		},
		{
			name:    "Short password",
			payload: fiber.Map{"name": "X", "email": "user@example.com", "password": "123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.request(t, http.MethodPost, "/api/auth/register", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "user@example.com")

	resp := s.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Second",
		"email":    "user@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "already exists")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "user@example.com")

	resp := s.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "user@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "login successful", body["message"])
	assert.NotEmpty(t, body["token"])
}

func TestLoginBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "user@example.com")

	tests := []struct {
		name    string
		payload fiber.Map
	}{
		{
			name:    "Wrong password",
			payload: fiber.Map{"email": "user@example.com", "password": "wrong-password"},
		},
		{
			name:    "Unknown email",
			payload: fiber.Map{"email": "nobody@example.com", "password": "secret123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.request(t, http.MethodPost, "/api/auth/login", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			// an unknown email and a wrong password answer identically
			body := decodeBody(t, resp)
			assert.Equal(t, "invalid credentials", body["message"])
		})
	}
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.register(t, "user@example.com")

	resp := s.request(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, userID, body["id"])
	assert.Equal(t, "user@example.com", body["email"])

	resp = s.request(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "user@example.com")

	resp := s.request(t, http.MethodPut, "/api/auth/me/profile", token, fiber.Map{
		"name":  "Renamed",
		"email": "renamed@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Renamed", user["name"])
	assert.Equal(t, "renamed@example.com", user["email"])

	// the re-issued token carries the new email
	fresh := body["token"].(string)
	assert.NotEmpty(t, fresh)

	resp = s.request(t, http.MethodGet, "/api/auth/me", fresh, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody(t, resp)
	assert.Equal(t, "renamed@example.com", me["email"])
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "first@example.com")
	token, _ := s.register(t, "second@example.com")

	resp := s.request(t, http.MethodPut, "/api/auth/me/profile", token, fiber.Map{
		"email": "first@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "user@example.com")

	resp := s.request(t, http.MethodPut, "/api/auth/me/password", token, fiber.Map{
		"oldPassword": "wrong-password",
		"newPassword": "changed123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "old password is incorrect", body["message"])

	resp = s.request(t, http.MethodPut, "/api/auth/me/password", token, fiber.Map{
		"oldPassword": "secret123",
		"newPassword": "changed123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// old password stops working, the new one logs in
	resp = s.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "user@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "user@example.com",
		"password": "changed123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestForgotPassword(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "user@example.com")

	known := s.request(t, http.MethodPost, "/api/auth/forgot-password", "", fiber.Map{
		"email": "user@example.com",
	})
	assert.Equal(t, http.StatusOK, known.StatusCode)

	unknown := s.request(t, http.MethodPost, "/api/auth/forgot-password", "", fiber.Map{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusOK, unknown.StatusCode)

	// known and unknown accounts answer with the same body
	assert.Equal(t, decodeBody(t, known)["message"], decodeBody(t, unknown)["message"])
}

func TestUsersAdminOnly(t *testing.T) {
	s := newTestServer(t)
	customerToken, _ := s.register(t, "user@example.com")
	adminToken := s.seedAdmin(t)

	resp := s.request(t, http.MethodGet, "/api/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/users/", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/users/", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 2)
}

func TestUsersAdminCRUD(t *testing.T) {
	s := newTestServer(t)
	_, userID := s.register(t, "user@example.com")
	adminToken := s.seedAdmin(t)

	resp := s.request(t, http.MethodGet, "/api/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user@example.com", decodeBody(t, resp)["email"])

	resp = s.request(t, http.MethodPut, "/api/users/"+userID, adminToken, fiber.Map{
		"role": "admin",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "user updated", body["message"])
	assert.Equal(t, "admin", body["user"].(map[string]any)["role"])

	resp = s.request(t, http.MethodPut, "/api/users/"+userID, adminToken, fiber.Map{
		"role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/users/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.request(t, http.MethodDelete, "/api/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCatalogCreateAndPublicRead(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)

	resp := s.request(t, http.MethodPost, "/api/trailers/", adminToken, fiber.Map{
		"name":  "Brand New Trailer",
		"price": 15000,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody(t, resp)
	assert.Equal(t, "brand-new-trailer", created["slug"])
	assert.Equal(t, "Причепи", created["category"])
	assert.Equal(t, "UAH", created["currency"])
	assert.Equal(t, true, created["inStock"])

	// reads are public
	resp = s.request(t, http.MethodGet, "/api/trailers/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 1)

	resp = s.request(t, http.MethodGet, "/api/trailers/slug/brand-new-trailer", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created["id"], decodeBody(t, resp)["id"])

	resp = s.request(t, http.MethodGet, "/api/trailers/"+created["id"].(string), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the components collection does not see trailers
	resp = s.request(t, http.MethodGet, "/api/components/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp))
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	customerToken, _ := s.register(t, "user@example.com")

	payload := fiber.Map{"name": "Trailer", "price": 1}

	resp := s.request(t, http.MethodPost, "/api/trailers/", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.request(t, http.MethodPost, "/api/trailers/", customerToken, payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the rejected request must not have created anything
	resp = s.request(t, http.MethodGet, "/api/trailers/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp))
}

func TestCatalogValidationAndConflicts(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)

	resp := s.request(t, http.MethodPost, "/api/trailers/", adminToken, fiber.Map{
		"price": 100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.request(t, http.MethodPost, "/api/trailers/", adminToken, fiber.Map{
		"name": "Negative", "price": -5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.request(t, http.MethodPost, "/api/trailers/", adminToken, fiber.Map{
		"name": "Brand New Trailer", "price": 100,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp)

	// a second item with the same derived slug conflicts
	resp = s.request(t, http.MethodPost, "/api/trailers/", adminToken, fiber.Map{
		"name": "Brand New Trailer", "price": 200,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["message"], "already exists")
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)

	resp := s.request(t, http.MethodPost, "/api/components/", adminToken, fiber.Map{
		"name": "Old Axle", "price": 500,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	id := created["id"].(string)

	resp = s.request(t, http.MethodPut, "/api/components/"+id, adminToken, fiber.Map{
		"name": "New Axle",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody(t, resp)
	assert.Equal(t, "New Axle", updated["name"])
	assert.Equal(t, "new-axle", updated["slug"])
	assert.Equal(t, 500.0, updated["price"])

	resp = s.request(t, http.MethodGet, "/api/components/slug/old-axle", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.request(t, http.MethodDelete, "/api/components/"+id, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "component deleted", decodeBody(t, resp)["message"])

	resp = s.request(t, http.MethodGet, "/api/components/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func orderPayload() fiber.Map {
	return fiber.Map{
		"customer": fiber.Map{
			"name":  "Order Customer",
			"email": "customer@example.com",
			"phone": "+380501234567",
		},
		"delivery": fiber.Map{"method": "pickup"},
		"payment":  fiber.Map{"method": "cash"},
		"items": []fiber.Map{
			{"id": "item-1", "name": "Brand New Trailer", "price": 15000, "quantity": 1},
		},
		"total": 15000,
	}
}

func TestOrderCreateAsGuest(t *testing.T) {
	s := newTestServer(t)

	resp := s.request(t, http.MethodPost, "/api/orders/", "", orderPayload())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.True(t, strings.HasPrefix(body["id"].(string), "order-"))
	assert.Equal(t, "Processing", body["status"])
	assert.NotContains(t, body, "userId")
}

func TestOrderCreateAttributesUser(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.register(t, "user@example.com")

	resp := s.request(t, http.MethodPost, "/api/orders/", token, orderPayload())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, userID, decodeBody(t, resp)["userId"])

	resp = s.request(t, http.MethodGet, "/api/orders/my-orders", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 1)

	// another account sees none of them
	otherToken, _ := s.register(t, "other@example.com")
	resp = s.request(t, http.MethodGet, "/api/orders/my-orders", otherToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp))
}

func TestOrderCreateValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(p fiber.Map)
	}{
		{
			name:   "Missing customer",
			mutate: func(p fiber.Map) { delete(p, "customer") },
		},
		{
			name:   "Missing delivery",
			mutate: func(p fiber.Map) { delete(p, "delivery") },
		},
		{
			name:   "Missing payment",
			mutate: func(p fiber.Map) { delete(p, "payment") },
		},
		{
			name:   "Empty items",
			mutate: func(p fiber.Map) { p["items"] = []fiber.Map{} },
		},
		{
			name:   "Missing total",
			mutate: func(p fiber.Map) { delete(p, "total") },
		},
		{
			name: "Bad delivery method",
			mutate: func(p fiber.Map) {
				p["delivery"] = fiber.Map{"method": "teleport"}
			},
		},
		{
			name: "Bad payment method",
			mutate: func(p fiber.Map) {
				p["payment"] = fiber.Map{"method": "barter"}
			},
		},
		{
			name: "Bad customer email",
			mutate: func(p fiber.Map) {
				p["customer"] = fiber.Map{"name": "X", "email": "nope", "phone": "+380501234567"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := orderPayload()
			tt.mutate(payload)

			resp := s.request(t, http.MethodPost, "/api/orders/", "", payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestOrderZeroTotalIsValid(t *testing.T) {
	s := newTestServer(t)

	payload := orderPayload()
	payload["total"] = 0

	resp := s.request(t, http.MethodPost, "/api/orders/", "", payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestOrderAdminManagement(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)

	resp := s.request(t, http.MethodPost, "/api/orders/", "", orderPayload())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := decodeBody(t, resp)["id"].(string)

	resp = s.request(t, http.MethodGet, "/api/orders/", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 1)

	resp = s.request(t, http.MethodGet, "/api/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, orderID, decodeBody(t, resp)["id"])

	resp = s.request(t, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, fiber.Map{
		"status": "Shipped",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "order status updated", body["message"])
	assert.Equal(t, "Shipped", body["order"].(map[string]any)["status"])

	resp = s.request(t, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, fiber.Map{
		"status": "Lost",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid order status", decodeBody(t, resp)["message"])

	resp = s.request(t, http.MethodDelete, "/api/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderRoutesGated(t *testing.T) {
	s := newTestServer(t)
	customerToken, _ := s.register(t, "user@example.com")

	resp := s.request(t, http.MethodGet, "/api/orders/", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/orders/my-orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.request(t, http.MethodPut, "/api/orders/order-x/status", customerToken, fiber.Map{
		"status": "Shipped",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
