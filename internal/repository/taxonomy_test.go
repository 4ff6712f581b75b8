package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/database/dbtest"
	"github.com/example/gemmarket/internal/models"
)

func TestCategoryDeleteNullsReferences(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)
	species := NewSpeciesRepository(db)

	ruby := models.Species{Name: "Ruby", Slug: "ruby"}
	if err := species.Create(ctx, &ruby); err != nil {
		t.Fatal(err)
	}
	parent, err := categories.Create(ctx, &models.Category{Name: "Corundum", Slug: "corundum"}, []uuid.UUID{ruby.ID})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if len(parent.Species) != 1 {
		t.Fatalf("expected species link, got %+v", parent.Species)
	}
	child, err := categories.Create(ctx, &models.Category{Name: "Star", Slug: "star", ParentID: &parent.ID}, nil)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	seller := seedUser(t, db, "Aung", "aung@example.com", nil)
	product := seedProduct(t, db, models.Product{Title: "Ruby", SellerID: seller.ID, CategoryID: &parent.ID})

	if err := categories.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var reloaded models.Product
	db.First(&reloaded, "id = ?", product.ID)
	if reloaded.CategoryID != nil {
		t.Errorf("expected product category cleared, got %v", reloaded.CategoryID)
	}
	var orphan models.Category
	db.First(&orphan, "id = ?", child.ID)
	if orphan.ParentID != nil {
		t.Errorf("expected child parent cleared, got %v", orphan.ParentID)
	}
	var links int64
	db.Table("category_species").Where("category_id = ?", parent.ID).Count(&links)
	if links != 0 {
		t.Errorf("expected species links removed, %d remain", links)
	}
}

func TestReplaceSpeciesRejectsUnknownIDs(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	category, err := categories.Create(ctx, &models.Category{Name: "Beryl", Slug: "beryl"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := categories.ReplaceSpecies(ctx, category.ID, []uuid.UUID{uuid.New()}); err != ErrInvalidReference {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestBuildTreeNestsChildren(t *testing.T) {
	root := models.Category{Name: "Root"}
	root.ID = uuid.New()
	second := models.Category{Name: "Second", SortOrder: 2, ParentID: &root.ID}
	second.ID = uuid.New()
	first := models.Category{Name: "First", SortOrder: 1, ParentID: &root.ID}
	first.ID = uuid.New()
	missing := uuid.New()
	stray := models.Category{Name: "Stray", ParentID: &missing}
	stray.ID = uuid.New()

	tree := BuildTree([]models.Category{second, root, first, stray})
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	var got models.Category
	for _, n := range tree {
		if n.ID == root.ID {
			got = n
		}
	}
	if len(got.Children) != 2 || got.Children[0].Name != "First" {
		t.Errorf("expected ordered children, got %+v", got.Children)
	}
}

func TestLaboratoryDeleteNullsProductReference(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	labs := NewLaboratoryRepository(db)

	lab := models.Laboratory{Name: "GIA", Slug: "gia"}
	if err := labs.Create(ctx, &lab); err != nil {
		t.Fatal(err)
	}
	seller := seedUser(t, db, "Aung", "aung@example.com", nil)
	product := seedProduct(t, db, models.Product{Title: "Ruby", SellerID: seller.ID, LaboratoryID: &lab.ID})

	if err := labs.Delete(ctx, lab.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var reloaded models.Product
	db.First(&reloaded, "id = ?", product.ID)
	if reloaded.LaboratoryID != nil {
		t.Errorf("expected laboratory cleared")
	}
}

func TestCategoryUpdateRejectsCycles(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	a, err := categories.Create(ctx, &models.Category{Name: "A", Slug: "a"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := categories.Create(ctx, &models.Category{Name: "B", Slug: "b", ParentID: &a.ID}, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := categories.Create(ctx, &models.Category{Name: "C", Slug: "c", ParentID: &b.ID}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := categories.Update(ctx, a.ID, map[string]any{"parent_id": &c.ID}, nil); !errors.Is(err, ErrCategoryCycle) {
		t.Fatalf("expected ErrCategoryCycle for grandchild parent, got %v", err)
	}
	if _, err := categories.Update(ctx, a.ID, map[string]any{"parent_id": &b.ID}, nil); !errors.Is(err, ErrCategoryCycle) {
		t.Fatalf("expected ErrCategoryCycle for child parent, got %v", err)
	}

	var reloaded models.Category
	db.First(&reloaded, "id = ?", a.ID)
	if reloaded.ParentID != nil {
		t.Errorf("expected root unchanged, got parent %v", reloaded.ParentID)
	}

	// Moving a leaf under a sibling branch is still allowed.
	if _, err := categories.Update(ctx, c.ID, map[string]any{"parent_id": &a.ID}, nil); err != nil {
		t.Fatalf("expected reparent to succeed, got %v", err)
	}

	list, err := categories.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	tree := BuildTree(list)
	if len(tree) != 1 || len(tree[0].Children) != 2 {
		t.Errorf("expected one root with two children, got %+v", tree)
	}
}

func TestSpeciesDeleteNullsReferences(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)
	species := NewSpeciesRepository(db)

	sapphire := models.Species{Name: "Sapphire", Slug: "sapphire"}
	if err := species.Create(ctx, &sapphire); err != nil {
		t.Fatal(err)
	}
	category, err := categories.Create(ctx, &models.Category{Name: "Corundum", Slug: "corundum"}, []uuid.UUID{sapphire.ID})
	if err != nil {
		t.Fatal(err)
	}

	seller := seedUser(t, db, "Aung", "aung@example.com", nil)
	product := seedProduct(t, db, models.Product{
		Title:       "Sapphire ring",
		SellerID:    seller.ID,
		ProductType: models.ProductTypeJewellery,
		SpeciesID:   &sapphire.ID,
	})
	stone := models.ProductGemstone{ProductID: product.ID, CategoryID: &category.ID, SpeciesID: &sapphire.ID, Count: 1}
	if err := db.Create(&stone).Error; err != nil {
		t.Fatal(err)
	}

	if err := species.Delete(ctx, sapphire.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var reloaded models.Product
	db.First(&reloaded, "id = ?", product.ID)
	if reloaded.SpeciesID != nil {
		t.Errorf("expected product species cleared, got %v", reloaded.SpeciesID)
	}
	var reloadedStone models.ProductGemstone
	db.First(&reloadedStone, "id = ?", stone.ID)
	if reloadedStone.SpeciesID != nil {
		t.Errorf("expected gemstone species cleared, got %v", reloadedStone.SpeciesID)
	}
	if reloadedStone.CategoryID == nil || *reloadedStone.CategoryID != category.ID {
		t.Errorf("expected gemstone category kept, got %v", reloadedStone.CategoryID)
	}
	var links int64
	db.Table("category_species").Where("species_id = ?", sapphire.ID).Count(&links)
	if links != 0 {
		t.Errorf("expected category links removed, %d remain", links)
	}
}
