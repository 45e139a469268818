package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"julianmorley.ca/con-plar/storefront/internal/service"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store/memory"
)

const adminKey = "let-me-in"

type envelope struct {
	Success bool                     `json:"success"`
	Data    json.RawMessage          `json:"data"`
	Message string                   `json:"message"`
	Errors  []global.ValidationError `json:"errors"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	tokens *auth.JWTProvider
}

func newTestServer(t *testing.T, adminHash string) *testServer {
	t.Helper()
	s := memory.New()
	tokens := auth.NewJWTProvider("router-test-secret", "")

	cfg := global.Config{
		Env:          "production",
		CORSOrigins:  []string{"http://localhost:5173"},
		AdminKeyHash: adminHash,
	}
	svc := Services{
		Store:      s,
		Catalog:    service.NewCatalog(s, nil),
		Cart:       service.NewCart(s, true),
		Orders:     service.NewOrders(s),
		Account:    service.NewAccount(s),
		Engagement: service.NewEngagement(s),
		Reporter:   ai.NewReporter(ai.Config{}),
	}
	return &testServer{t: t, engine: NewEngine(cfg, svc, tokens), store: s, tokens: tokens}
}

func hashAdminKey(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func (ts *testServer) token(subject string) string {
	ts.t.Helper()
	token, err := ts.tokens.Sign(jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(ts.t, err)
	return token
}

// do sends a request. subject "" sends no Authorization header.
func (ts *testServer) do(method, path, subject string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token(subject))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (ts *testServer) seed() []models.Product {
	ts.t.Helper()
	w, _ := ts.do(http.MethodPost, "/api/admin/seed", "", nil, adminKeyHeader, adminKey)
	require.Equal(ts.t, http.StatusCreated, w.Code)

	w, env := ts.do(http.MethodGet, "/api/products?page_size=50", "", nil)
	require.Equal(ts.t, http.StatusOK, w.Code)
	return decode[models.Page[models.Product]](ts.t, env.Data).Page
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "")
	w, env := ts.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestIdentityMiddleware(t *testing.T) {
	ts := newTestServer(t, "")

	w, env := ts.do(http.MethodGet, "/api/cart/items", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, env = ts.do(http.MethodGet, "/api/cart/items", "", nil, "Authorization", "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "invalid_token", env.Errors[0].Code)

	w, _ = ts.do(http.MethodGet, "/api/cart/items", "", nil, "Authorization", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(http.MethodPost, "/api/cart/items", "", models.AddToCartRequest{ProductID: bson.NewObjectID().Hex(), Quantity: 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		headers []string
		want    int
	}{
		{name: "not configured", hash: "", headers: []string{adminKeyHeader, adminKey}, want: http.StatusForbidden},
		{name: "missing key", hash: hashAdminKey(t), want: http.StatusUnauthorized},
		{name: "wrong key", hash: hashAdminKey(t), headers: []string{adminKeyHeader, "guess"}, want: http.StatusForbidden},
		{name: "valid key", hash: hashAdminKey(t), headers: []string{adminKeyHeader, adminKey}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.hash)
			w, _ := ts.do(http.MethodGet, "/api/admin/contacts", "", nil, tt.headers...)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestProducts(t *testing.T) {
	ts := newTestServer(t, hashAdminKey(t))
	products := ts.seed()
	require.Len(t, products, 6)

	w, env := ts.do(http.MethodGet, "/api/products?category=Accessories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page[models.Product]](t, env.Data)
	assert.Len(t, page.Page, 2)
	assert.True(t, page.IsDone)

	w, env = ts.do(http.MethodGet, "/api/products/featured?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, env.Data), 2)

	w, env = ts.do(http.MethodGet, "/api/products/"+products[0].ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, products[0].Name, decode[models.Product](t, env.Data).Name)
	assert.Empty(t, w.Header().Get("X-Cache"))

	w, _ = ts.do(http.MethodGet, "/api/products/"+bson.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = ts.do(http.MethodGet, "/api/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "id", env.Errors[0].Field)

	w, _ = ts.do(http.MethodGet, "/api/products?featured=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = ts.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]string](t, env.Data), 5)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t, hashAdminKey(t))
	products := ts.seed()
	dress, top := products[len(products)-1], products[len(products)-2]

	w, env := ts.do(http.MethodPost, "/api/cart/items", "alice", models.AddToCartRequest{ProductID: dress.ID.Hex(), Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	w, _ = ts.do(http.MethodPost, "/api/cart/items", "alice", models.AddToCartRequest{ProductID: dress.ID.Hex(), Quantity: 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = ts.do(http.MethodGet, "/api/cart", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[models.CartView](t, env.Data)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
	assert.Equal(t, 5, view.ItemCount)

	w, env = ts.do(http.MethodPost, "/api/orders", "alice", models.CreateOrderRequest{
		Items: []models.OrderItemRequest{
			{ProductID: dress.ID.Hex(), Quantity: 5},
			{ProductID: top.ID.Hex(), Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{Name: "Alice", Address: "1 Main St", City: "Springfield", ZipCode: "12345", Phone: "555-0100"},
		PaymentMethod:   "card",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	receipt := decode[models.OrderReceipt](t, env.Data)
	assert.NotEmpty(t, receipt.OrderNumber)

	w, env = ts.do(http.MethodGet, "/api/cart/items", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, env = ts.do(http.MethodGet, "/api/orders/"+receipt.OrderNumber, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	order := decode[models.Order](t, env.Data)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	w, _ = ts.do(http.MethodGet, "/api/orders/"+receipt.OrderNumber, "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = ts.do(http.MethodGet, "/api/orders", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.Page[models.Order]](t, env.Data).Page, 1)

	w, env = ts.do(http.MethodPut, "/api/admin/orders/"+receipt.OrderID.Hex()+"/status", "", models.UpdateOrderStatusRequest{Status: models.OrderStatusShipped}, adminKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, _ = ts.do(http.MethodPut, "/api/admin/orders/"+receipt.OrderID.Hex()+"/status", "", map[string]string{"status": "lost"}, adminKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = ts.do(http.MethodGet, "/api/admin/analytics/orders", "", nil, adminKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[service.OrderStats](t, env.Data)
	assert.Equal(t, 1, stats.TotalOrders)

	w, env = ts.do(http.MethodGet, "/api/admin/analytics/ai/sales-report", "", nil, adminKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[ai.Report](t, env.Data)
	assert.False(t, report.AIEnabled)
}

func TestCreateOrderErrors(t *testing.T) {
	ts := newTestServer(t, hashAdminKey(t))
	products := ts.seed()

	w, _ := ts.do(http.MethodPut, "/api/admin/products/"+products[0].ID.Hex(), "", models.ProductUpdate{InStock: new(bool)}, adminKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, w.Code)

	address := models.ShippingAddress{Name: "Alice", Address: "1 Main St", City: "Springfield", ZipCode: "12345", Phone: "555-0100"}

	w, env := ts.do(http.MethodPost, "/api/orders", "alice", models.CreateOrderRequest{
		Items:           []models.OrderItemRequest{{ProductID: products[0].ID.Hex(), Quantity: 1}},
		ShippingAddress: address,
		PaymentMethod:   "card",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "product_unavailable", env.Errors[0].Code)

	address.City = ""
	w, env = ts.do(http.MethodPost, "/api/orders", "alice", models.CreateOrderRequest{
		Items:           []models.OrderItemRequest{{ProductID: products[1].ID.Hex(), Quantity: 1}},
		ShippingAddress: address,
		PaymentMethod:   "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "shipping_address.city", env.Errors[0].Field)

	w, _ = ts.do(http.MethodPost, "/api/orders", "", models.CreateOrderRequest{
		Items:           []models.OrderItemRequest{{ProductID: products[1].ID.Hex(), Quantity: 1}},
		ShippingAddress: models.ShippingAddress{Name: "A", Address: "B", City: "C", ZipCode: "D", Phone: "E"},
		PaymentMethod:   "card",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartItemRoutes(t *testing.T) {
	ts := newTestServer(t, hashAdminKey(t))
	products := ts.seed()

	w, env := ts.do(http.MethodPost, "/api/cart/items", "alice", models.AddToCartRequest{ProductID: products[0].ID.Hex(), Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code)
	itemID := decode[map[string]string](t, env.Data)["id"]

	w, _ = ts.do(http.MethodPut, "/api/cart/items/"+itemID, "bob", map[string]int{"quantity": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodPut, "/api/cart/items/"+itemID, "alice", map[string]int{"quantity": 4})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(http.MethodGet, "/api/cart/items", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lines := decode[[]models.CartLine](t, env.Data)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	w, _ = ts.do(http.MethodPut, "/api/cart/items/"+itemID, "alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodPut, "/api/cart/items/"+itemID, "alice", map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(http.MethodGet, "/api/cart/items", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = ts.do(http.MethodDelete, "/api/cart/items/"+itemID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodDelete, "/api/cart", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserRoutes(t *testing.T) {
	ts := newTestServer(t, "")

	w, _ := ts.do(http.MethodGet, "/api/users/me", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodPatch, "/api/users/me", "alice", map[string]string{"city": "Paris"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := ts.do(http.MethodPut, "/api/users/me", "alice", models.UserInput{Name: "Alice", Email: "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, _ = ts.do(http.MethodPatch, "/api/users/me", "alice", map[string]string{"city": "Paris"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(http.MethodGet, "/api/users/me", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[models.User](t, env.Data)
	assert.Equal(t, "alice", user.UserID)
	require.NotNil(t, user.City)
	assert.Equal(t, "Paris", *user.City)

	w, env = ts.do(http.MethodPut, "/api/users/me", "alice", map[string]string{"name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "email", env.Errors[0].Field)
}

func TestEngagementRoutes(t *testing.T) {
	ts := newTestServer(t, hashAdminKey(t))

	w, _ := ts.do(http.MethodPost, "/api/contact", "", models.ContactInput{Name: "Visitor", Email: "v@example.com", Subject: "Hi", Message: "Hello"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := ts.do(http.MethodGet, "/api/admin/contacts", "", nil, adminKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	contacts := decode[[]models.Contact](t, env.Data)
	require.Len(t, contacts, 1)
	assert.Equal(t, models.ContactStatusNew, contacts[0].Status)

	w, env = ts.do(http.MethodPost, "/api/newsletter", "", models.NewsletterRequest{Email: "fan@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[map[string]string](t, env.Data)["id"]

	w, _ = ts.do(http.MethodDelete, "/api/newsletter?email=fan@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(http.MethodPost, "/api/newsletter", "", models.NewsletterRequest{Email: "FAN@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode[map[string]string](t, env.Data)["id"])

	w, _ = ts.do(http.MethodDelete, "/api/newsletter", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodPost, "/api/newsletter", "", models.NewsletterRequest{Email: "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
