package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/database/dbtest"
	"github.com/example/gemmarket/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, name, email string, phone *string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Phone: phone, Role: models.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	if p.Currency == "" {
		p.Currency = models.CurrencyMMK
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.ModerationStatus == "" {
		p.ModerationStatus = models.ModerationPending
	}
	if p.ProductType == "" {
		p.ProductType = models.ProductTypeLooseStone
	}
	if p.SKU == "" {
		p.SKU = uuid.NewString()
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func TestAdminListPaginatesWithFilteredTotal(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seller := seedUser(t, db, "Aung", "aung@example.com", nil)
	for i := 0; i < 25; i++ {
		seedProduct(t, db, models.Product{
			Title:      fmt.Sprintf("Ruby %02d", i),
			Price:      decimal.NewFromInt(int64(1000 + i)),
			SellerID:   seller.ID,
			IsFeatured: i%5 == 0,
		})
	}

	page, err := repo.AdminList(ctx, AdminProductFilter{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if page.Total != 25 {
		t.Errorf("expected total 25, got %d", page.Total)
	}
	if len(page.Products) != 5 {
		t.Errorf("expected 5 rows on last page, got %d", len(page.Products))
	}

	featured := true
	page, err = repo.AdminList(ctx, AdminProductFilter{IsFeatured: &featured, Limit: 2})
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if page.Total != 5 || len(page.Products) != 2 {
		t.Errorf("expected 5 featured with 2 on page, got total %d rows %d", page.Total, len(page.Products))
	}
	for _, row := range page.Products {
		if !row.IsFeatured {
			t.Errorf("row %s is not featured", row.Title)
		}
	}
}

func TestAdminListSearchesSellerAndSorts(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	phone := "+959123456789"
	aung := seedUser(t, db, "Aung", "aung@example.com", &phone)
	mya := seedUser(t, db, "Mya", "mya@example.com", nil)

	seedProduct(t, db, models.Product{Title: "Sapphire", Price: decimal.NewFromInt(300), SellerID: aung.ID})
	seedProduct(t, db, models.Product{Title: "Spinel", Price: decimal.NewFromInt(100), SellerID: aung.ID})
	seedProduct(t, db, models.Product{Title: "Jade", Price: decimal.NewFromInt(200), SellerID: mya.ID})

	cases := []struct {
		search string
		want   int64
	}{
		{"AUNG", 2},
		{"9123456", 2},
		{"mya@", 1},
		{"jade", 1},
		{"emerald", 0},
	}
	for _, tc := range cases {
		page, err := repo.AdminList(ctx, AdminProductFilter{Search: tc.search})
		if err != nil {
			t.Fatalf("search %q failed: %v", tc.search, err)
		}
		if page.Total != tc.want {
			t.Errorf("search %q: expected %d, got %d", tc.search, tc.want, page.Total)
		}
	}

	page, err := repo.AdminList(ctx, AdminProductFilter{Sort: "price", Order: "asc"})
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if len(page.Products) != 3 || page.Products[0].Title != "Spinel" || page.Products[2].Title != "Sapphire" {
		t.Errorf("unexpected price order: %+v", page.Products)
	}
	if page.Products[0].SellerName != "Aung" || page.Products[0].SellerPhone == nil {
		t.Errorf("expected seller columns joined, got %+v", page.Products[0])
	}
}

func TestAdminListDateRangeIsInclusive(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)
	seller := seedUser(t, db, "Aung", "aung@example.com", nil)

	days := []time.Time{
		time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC),
	}
	for i, day := range days {
		p := models.Product{Title: fmt.Sprintf("Stone %d", i), SellerID: seller.ID}
		p.CreatedAt = day
		p.UpdatedAt = day
		seedProduct(t, db, p)
	}

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	page, err := repo.AdminList(context.Background(), AdminProductFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if page.Total != 1 || page.Products[0].Title != "Stone 1" {
		t.Errorf("expected only Stone 1, got %+v", page.Products)
	}
}

func TestAdminListThumbnailIsFirstImage(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)
	seller := seedUser(t, db, "Aung", "aung@example.com", nil)

	seedProduct(t, db, models.Product{
		Title:    "Ruby",
		SellerID: seller.ID,
		Images: []models.ProductImage{
			{URL: "https://cdn.example.com/b.jpg", SortOrder: 2},
			{URL: "https://cdn.example.com/a.jpg", SortOrder: 1},
		},
	})
	seedProduct(t, db, models.Product{Title: "Plain", SellerID: seller.ID})

	page, err := repo.AdminList(context.Background(), AdminProductFilter{Sort: "title", Order: "desc"})
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Products))
	}
	if thumb := page.Products[0].Thumbnail; thumb == nil || *thumb != "https://cdn.example.com/a.jpg" {
		t.Errorf("expected lowest sort order thumbnail, got %v", thumb)
	}
	if page.Products[1].Thumbnail != nil {
		t.Errorf("expected no thumbnail for product without images")
	}
}

func TestUpdateReplacesChildrenAndDeleteRemovesThem(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	seller := seedUser(t, db, "Aung", "aung@example.com", nil)

	product := seedProduct(t, db, models.Product{
		Title:    "Ring",
		SellerID: seller.ID,
		Images:   []models.ProductImage{{URL: "https://cdn.example.com/old.jpg"}},
	})

	images := []models.ProductImage{
		{URL: "https://cdn.example.com/1.jpg", SortOrder: 0},
		{URL: "https://cdn.example.com/2.jpg", SortOrder: 1},
	}
	updated, err := repo.Update(ctx, product.ID, map[string]any{"title": "Gold Ring"}, &images, nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Gold Ring" || updated.Description != product.Description {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if len(updated.Images) != 2 || updated.Images[0].URL != "https://cdn.example.com/1.jpg" {
		t.Errorf("expected replaced images, got %+v", updated.Images)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var remaining int64
	db.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("expected images deleted, %d remain", remaining)
	}
	if err := repo.Delete(ctx, product.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestCheckRefsRejectsMissingCategory(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)

	missing := uuid.New()
	err := repo.CheckRefs(context.Background(), ProductRefs{CategoryID: &missing})
	if err == nil {
		t.Fatal("expected invalid reference error")
	}
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db := dbtest.New(t)
	repo := NewProductRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	seller := seedUser(t, db, "Aung", "aung@example.com", nil)
	seedProduct(t, db, models.Product{Title: "Ruby 100% natural", SellerID: seller.ID,
		Status: models.StatusActive, ModerationStatus: models.ModerationApproved})
	seedProduct(t, db, models.Product{Title: "Ruby_lot", SellerID: seller.ID,
		Status: models.StatusActive, ModerationStatus: models.ModerationApproved})
	seedProduct(t, db, models.Product{Title: "Sapphire", SellerID: seller.ID,
		Status: models.StatusActive, ModerationStatus: models.ModerationApproved})

	cases := []struct {
		search string
		want   int64
	}{
		{"%", 1},
		{"_", 1},
		{"100%", 1},
		{"ruby", 2},
	}
	for _, tc := range cases {
		page, err := repo.AdminList(ctx, AdminProductFilter{Search: tc.search})
		if err != nil {
			t.Fatalf("admin search %q failed: %v", tc.search, err)
		}
		if page.Total != tc.want {
			t.Errorf("admin search %q: expected %d, got %d", tc.search, tc.want, page.Total)
		}

		_, total, err := repo.ListPublic(ctx, PublicProductFilter{Search: tc.search})
		if err != nil {
			t.Fatalf("public search %q failed: %v", tc.search, err)
		}
		if total != tc.want {
			t.Errorf("public search %q: expected %d, got %d", tc.search, tc.want, total)
		}
	}

	if _, total, err := users.List(ctx, UserFilter{Search: "%"}); err != nil || total != 0 {
		t.Errorf("user search %%: expected no match, got %d (%v)", total, err)
	}
}
