package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/config"
	"github.com/example/gemmarket/internal/database/dbtest"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AppEnv:        "test",
		JWTSecret:     "routes-test-secret",
		TokenExpires:  time.Hour,
		SessionCookie: "session_token",
	}
	db := dbtest.New(t)
	app := NewApp(db, cfg, cache.New(cache.NewMemoryStore(), zap.NewNop()), zap.NewNop())
	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) user(t *testing.T, email, role string) (models.User, string) {
	t.Helper()
	user := models.User{Name: email, Email: email, Role: role}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	token, _, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error
}

func (e *testEnv) productCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&models.Product{}).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

const productBody = `{"title":"Pigeon blood ruby","sku":"RB-1","price":"1500.50","currency":"USD","product_type":"loose_stone","weight":"2.1"}`

func TestCreateProductRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/products", "", productBody)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if env.productCount(t) != 0 {
		t.Error("expected no product written")
	}
}

func TestCreateProductForSeller(t *testing.T) {
	env := newTestEnv(t)
	seller, token := env.user(t, "seller@example.com", models.RoleUser)

	resp := env.do(t, http.MethodPost, "/api/products", token, productBody)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, errorMessage(t, resp))
	}
	if resp.Header.Get(fiber.HeaderCacheControl) != "no-store" {
		t.Errorf("expected no-store on mutation, got %q", resp.Header.Get(fiber.HeaderCacheControl))
	}

	var product models.Product
	if err := env.db.First(&product).Error; err != nil {
		t.Fatalf("expected product stored: %v", err)
	}
	if product.SellerID != seller.ID || product.ModerationStatus != models.ModerationPending {
		t.Errorf("unexpected product %+v", product)
	}
}

func TestUpdateProductByOtherUserIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner@example.com", models.RoleUser)
	_, otherToken := env.user(t, "other@example.com", models.RoleUser)

	resp := env.do(t, http.MethodPost, "/api/products", ownerToken, productBody)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var product models.Product
	if err := env.db.First(&product).Error; err != nil {
		t.Fatalf("expected product stored: %v", err)
	}

	resp = env.do(t, http.MethodPatch, "/api/products/"+product.ID.String(), otherToken, `{"title":"Stolen"}`)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	var reloaded models.Product
	if err := env.db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Title != "Pigeon blood ruby" {
		t.Errorf("expected title unchanged, got %q", reloaded.Title)
	}
}

func TestMobileRegisterConflictAndLogin(t *testing.T) {
	env := newTestEnv(t)
	body := `{"phone":"09 1234-5678","password":"secret-pass","name":"Ko Ko"}`

	resp := env.do(t, http.MethodPost, "/api/mobile/register", "", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, errorMessage(t, resp))
	}

	resp = env.do(t, http.MethodPost, "/api/mobile/register", "", body)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "Phone number is already registered" {
		t.Errorf("unexpected message %q", msg)
	}

	resp = env.do(t, http.MethodPost, "/api/mobile/login", "", `{"phone":"0912345678","password":"secret-pass"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/mobile/login", "", `{"phone":"0912345678","password":"wrong-pass"}`)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "Invalid phone number or password" {
		t.Errorf("unexpected message %q", msg)
	}

	resp = env.do(t, http.MethodPost, "/api/mobile/login", "", `{"phone":"0912345678","password":""}`)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for empty password, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "Invalid phone number or password" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestMobileRegisterRejectsMalformedPhone(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/mobile/register", "", `{"phone":"+14155550100","password":"secret-pass","name":"Visitor"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAdminGateRedirects(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.user(t, "buyer@example.com", models.RoleUser)

	resp := env.do(t, http.MethodGet, "/admin/api/dashboard", "", "")
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get(fiber.HeaderLocation) != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", resp.StatusCode, resp.Header.Get(fiber.HeaderLocation))
	}

	resp = env.do(t, http.MethodGet, "/admin/api/dashboard", userToken, "")
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get(fiber.HeaderLocation) != "/" {
		t.Errorf("expected redirect to /, got %d %q", resp.StatusCode, resp.Header.Get(fiber.HeaderLocation))
	}
}

func TestAdminProductListing(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user(t, "admin@example.com", models.RoleAdmin)
	seller, _ := env.user(t, "seller@example.com", models.RoleUser)

	for i := 0; i < 3; i++ {
		product := models.Product{
			SellerID:         seller.ID,
			Title:            "Sapphire",
			SKU:              uuid.NewString(),
			Currency:         models.CurrencyMMK,
			ProductType:      models.ProductTypeLooseStone,
			Status:           models.StatusActive,
			ModerationStatus: models.ModerationPending,
		}
		if err := env.db.Create(&product).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	resp := env.do(t, http.MethodGet, "/admin/api/products?limit=2&moderation_status=pending", adminToken, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(fiber.HeaderCacheControl) != "no-store" {
		t.Errorf("expected no-store, got %q", resp.Header.Get(fiber.HeaderCacheControl))
	}

	var body struct {
		Data struct {
			Products []json.RawMessage `json:"products"`
			Total    int64             `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Data.Products) != 2 || body.Data.Total != 3 {
		t.Errorf("expected 2 of 3 products, got %d of %d", len(body.Data.Products), body.Data.Total)
	}

	resp = env.do(t, http.MethodGet, "/admin/api/products?limit=101", adminToken, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for oversized limit, got %d", resp.StatusCode)
	}
}

func TestPublicCacheHeaders(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "reader@example.com", models.RoleUser)

	resp := env.do(t, http.MethodGet, "/api/categories", "", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderCacheControl); !strings.HasPrefix(got, "public") {
		t.Errorf("expected public caching for anonymous read, got %q", got)
	}

	resp = env.do(t, http.MethodGet, "/api/categories", token, "")
	if got := resp.Header.Get(fiber.HeaderCacheControl); got != "no-store" {
		t.Errorf("expected no-store for signed-in read, got %q", got)
	}

	resp = env.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), "", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderCacheControl); got != "no-store" {
		t.Errorf("expected no-store for failed read, got %q", got)
	}
}

func TestProfileRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "member@example.com", models.RoleUser)

	if resp := env.do(t, http.MethodGet, "/api/profile", "", ""); resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}

	resp := env.do(t, http.MethodPatch, "/api/profile", token, `{"city":"Mandalay"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var user models.User
	if err := env.db.First(&user, "email = ?", "member@example.com").Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if user.City != "Mandalay" {
		t.Errorf("expected city updated, got %q", user.City)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	if resp := env.do(t, http.MethodGet, "/healthz", "", ""); resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestPublicProductShowsSellerSummaryOnly(t *testing.T) {
	env := newTestEnv(t)
	phone := "+959123456789"
	seller := models.User{
		Name:    "Daw Hla",
		Email:   "hla@example.com",
		Phone:   &phone,
		Role:    models.RoleUser,
		Address: "12 Bogyoke Road",
		City:    "Yangon",
		Points:  999,
	}
	if err := env.db.Create(&seller).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	product := models.Product{
		SellerID:         seller.ID,
		Title:            "Spinel",
		SKU:              uuid.NewString(),
		Currency:         models.CurrencyMMK,
		ProductType:      models.ProductTypeLooseStone,
		Status:           models.StatusActive,
		ModerationStatus: models.ModerationApproved,
	}
	if err := env.db.Create(&product).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	resp := env.do(t, http.MethodGet, "/api/products/"+product.ID.String(), "", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	var body struct {
		Data struct {
			Title  string                     `json:"title"`
			Seller map[string]json.RawMessage `json:"seller"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Data.Title != "Spinel" {
		t.Errorf("unexpected title %q", body.Data.Title)
	}
	if len(body.Data.Seller) != 2 || body.Data.Seller["id"] == nil || body.Data.Seller["name"] == nil {
		t.Errorf("expected seller id and name only, got %s", raw)
	}
	for _, secret := range []string{"hla@example.com", "12 Bogyoke Road", phone} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("response exposes %q", secret)
		}
	}
}

func TestDuplicateSlugIsConflict(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user(t, "admin@example.com", models.RoleAdmin)

	resp := env.do(t, http.MethodPost, "/admin/api/species", adminToken, `{"name":"Ruby","slug":"ruby"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, errorMessage(t, resp))
	}

	resp = env.do(t, http.MethodPost, "/admin/api/species", adminToken, `{"name":"Ruby again","slug":"ruby"}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var count int64
	env.db.Model(&models.Species{}).Where("slug = ?", "ruby").Count(&count)
	if count != 1 {
		t.Errorf("expected one species, got %d", count)
	}
}

func TestCategoryCycleIsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user(t, "admin@example.com", models.RoleAdmin)

	parent := models.Category{Name: "Corundum", Slug: "corundum"}
	if err := env.db.Create(&parent).Error; err != nil {
		t.Fatal(err)
	}
	child := models.Category{Name: "Sapphire", Slug: "sapphire", ParentID: &parent.ID}
	if err := env.db.Create(&child).Error; err != nil {
		t.Fatal(err)
	}

	resp := env.do(t, http.MethodPatch, "/admin/api/categories/"+parent.ID.String(), adminToken,
		`{"parent_id":"`+child.ID.String()+`"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/categories", "", "")
	var body struct {
		Data []struct {
			Slug     string            `json:"slug"`
			Children []json.RawMessage `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Slug != "corundum" || len(body.Data[0].Children) != 1 {
		t.Errorf("expected intact tree, got %+v", body.Data)
	}
}
