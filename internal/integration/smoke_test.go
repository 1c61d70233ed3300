package integration

import (
	"context"
	"mealtrack/internal/blob"
	"mealtrack/internal/config"
	"mealtrack/internal/core"
	"mealtrack/internal/infra/persistence/memory"
	"mealtrack/pkg/domain"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type variant struct {
	name string
	cfg  func(t *testing.T) *config.Config
	opts []core.RepositoryOption
}

func variants() []variant {
	base := func(driver string) func(t *testing.T) *config.Config {
		return func(t *testing.T) *config.Config {
			dir := t.TempDir()
			cfg := config.Default()
			cfg.Storage.Driver = driver
			cfg.Storage.DataFile = filepath.Join(dir, "HealthTracker.xml")
			cfg.Storage.SQLitePath = filepath.Join(dir, "core.db")
			cfg.Storage.BoltPath = filepath.Join(dir, "core.bolt")
			cfg.Storage.BlobRoot = filepath.Join(dir, "blobs")
			return cfg
		}
	}
	return []variant{
		{name: "file-xml", cfg: base("file")},
		{name: "file-json", cfg: func(t *testing.T) *config.Config {
			cfg := base("file")(t)
			cfg.Storage.DataFile = filepath.Join(filepath.Dir(cfg.Storage.DataFile), "HealthTracker.json")
			return cfg
		}},
		{name: "sqlite-cbor", cfg: func(t *testing.T) *config.Config {
			cfg := base("sqlite")(t)
			cfg.Storage.Format = "cbor"
			return cfg
		}},
		{name: "bolt", cfg: base("bolt")},
		{name: "filesystem-blob", cfg: base("blob")},
		{name: "memory-blob", cfg: base("blob"), opts: []core.RepositoryOption{core.WithBlobStore(blob.NewMemory())}},
		{name: "mock-s3-blob", cfg: base("blob"), opts: []core.RepositoryOption{core.WithBlobStore(blob.NewMockS3ForTests())}},
	}
}

type burgerModel struct {
	meat, starch *domain.FoodGroup
	burger       *domain.FoodItem
	lunch        *domain.MealType
	template     *domain.MealTemplate
	meal         *domain.Meal
}

func seedBurger(t *testing.T, ctx context.Context, s *memory.Store) burgerModel {
	t.Helper()
	m := burgerModel{
		meat:   &domain.FoodGroup{Base: domain.Base{ID: domain.NewID(), Name: "Meat"}},
		starch: &domain.FoodGroup{Base: domain.Base{ID: domain.NewID(), Name: "Starch", Description: "bread, rice"}},
		lunch: &domain.MealType{
			Base:               domain.Base{ID: domain.NewID(), Name: "Lunch"},
			DefaultTimeOfMeal:  time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			UseDefaultMealTime: true,
		},
	}
	m.burger = &domain.FoodItem{
		Base:               domain.Base{ID: domain.NewID(), Name: "Burger"},
		CaloriesPerServing: decimal.NewFromInt(540),
		FoodGroupsPerServing: []domain.Serving[domain.FoodGroup]{
			domain.NewServing(m.meat, decimal.RequireFromString("2.0")),
			domain.NewServing(m.starch, decimal.RequireFromString("1.0")),
		},
	}
	m.template = &domain.MealTemplate{MealBase: domain.MealBase{
		Base:             domain.Base{ID: domain.NewID(), Name: "Burger lunch"},
		TypeOfMeal:       m.lunch,
		FoodItemServings: []domain.Serving[domain.FoodItem]{domain.NewServing(m.burger, decimal.NewFromInt(1))},
	}}
	m.meal = &domain.Meal{MealBase: domain.MealBase{
		Base:              domain.Base{ID: domain.NewID()},
		TypeOfMeal:        m.lunch,
		DateAndTimeOfMeal: time.Date(2024, 7, 4, 12, 15, 0, 0, time.UTC),
		FoodItemServings:  []domain.Serving[domain.FoodItem]{domain.NewServing(m.burger, decimal.RequireFromString("1.5"))},
	}}
	steps := []func() error{
		func() error { return s.FoodGroups().SaveItem(ctx, m.meat) },
		func() error { return s.FoodGroups().SaveItem(ctx, m.starch) },
		func() error { return s.FoodItems().SaveItem(ctx, m.burger) },
		func() error { return s.MealTypes().SaveItem(ctx, m.lunch) },
		func() error { return s.MealTemplates().SaveItem(ctx, m.template) },
		func() error { return s.Meals().SaveItem(ctx, m.meal) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("seed step %d: %v", i, err)
		}
	}
	return m
}

func assertBurgerMeal(t *testing.T, got *domain.Meal, want burgerModel) {
	t.Helper()
	if !got.Calories().Equal(decimal.NewFromInt(810)) {
		t.Fatalf("calories %s want 810", got.Calories())
	}
	groups := got.FoodGroupServings()
	if len(groups) != 2 {
		t.Fatalf("expected 2 food groups, got %d", len(groups))
	}
	if groups[0].Entity == nil || groups[0].Entity.ID != want.meat.ID || !groups[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("meat serving %+v", groups[0])
	}
	if groups[1].Entity == nil || groups[1].Entity.ID != want.starch.ID || !groups[1].Quantity.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("starch serving %+v", groups[1])
	}
}

// TestIntegrationSmoke writes the burger model through every snapshot
// backend, reopens it and checks the aggregation and references survived.
func TestIntegrationSmoke(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := v.cfg(t)
			metrics := core.NewExpvarMetricsRecorder("")
			opts := append([]core.RepositoryOption{core.WithStoreOptions(memory.WithMetrics(metrics))}, v.opts...)
			repo, err := core.OpenRepository(ctx, cfg, opts...)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			want := seedBurger(t, ctx, repo.Store)
			if got := metrics.Snapshot().Results["meal.save"]["success"]; got != 1 {
				t.Fatalf("expected one successful meal save, got %d", got)
			}
			if err := repo.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened, err := core.OpenRepository(ctx, cfg, v.opts...)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer reopened.Close()
			s := reopened.Store
			counts := []int{s.FoodGroups().Len(), s.FoodItems().Len(), s.MealTypes().Len(), s.MealTemplates().Len(), s.Meals().Len()}
			if !slices.Equal(counts, []int{2, 1, 1, 1, 1}) {
				t.Fatalf("collection sizes %v", counts)
			}
			meal, ok := s.Meals().Get(want.meal.ID)
			if !ok {
				t.Fatalf("meal missing after reload")
			}
			assertBurgerMeal(t, meal, want)
			if meal.TypeOfMeal == nil || meal.TypeOfMeal.ID != want.lunch.ID || !meal.DateAndTimeOfMeal.Equal(want.meal.DateAndTimeOfMeal) {
				t.Fatalf("meal fields not restored: %+v", meal)
			}
			starch, _ := s.FoodGroups().Get(want.starch.ID)
			if starch.Description != "bread, rice" {
				t.Fatalf("description %q", starch.Description)
			}
			lunch, _ := s.MealTypes().Get(want.lunch.ID)
			if !lunch.UseDefaultMealTime || lunch.DefaultTimeOfMeal.Hour() != 12 {
				t.Fatalf("meal type defaults lost: %+v", lunch)
			}

			svc := core.NewService(s)
			sum := svc.DailySummary(want.meal.DateAndTimeOfMeal)
			if len(sum.Meals) != 1 || !sum.Calories.Equal(decimal.NewFromInt(810)) {
				t.Fatalf("summary %+v", sum)
			}
		})
	}
}
