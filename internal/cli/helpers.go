package cli

import (
	"context"
	"fmt"
	"io"
	"mealtrack/internal/core"
	"mealtrack/internal/editor"
	"mealtrack/internal/infra/persistence/memory"
	"mealtrack/pkg/domain"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// parseServing splits "Name=quantity". A missing quantity means one serving.
func parseServing(s string) (string, decimal.Decimal, error) {
	name, qty, found := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", decimal.Zero, fmt.Errorf("serving %q: name required", s)
	}
	if !found {
		return name, decimal.NewFromInt(1), nil
	}
	q, err := decimal.NewFromString(strings.TrimSpace(qty))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("serving %q: %w", s, err)
	}
	return name, q, nil
}

func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" || s == "today" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	if s == "yesterday" {
		return parseDate("", now.AddDate(0, 0, -1))
	}
	t, err := time.ParseInLocation(dateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: expected HH:MM", s)
	}
	return t, nil
}

func withClock(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, date.Location())
}

func findByName[T domain.Record[T]](coll *memory.Collection[T], name string) (T, error) {
	item, ok := coll.Find(func(x T) bool { return x.EntityName() == name })
	if !ok {
		item, ok = coll.Find(func(x T) bool { return strings.EqualFold(x.EntityName(), name) })
	}
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", coll.Entity(), name, core.ErrNotFound)
	}
	return item, nil
}

func removeByName[T editor.Record[T]](ctx context.Context, coll *memory.Collection[T], name string) error {
	item, err := findByName(coll, name)
	if err != nil {
		return err
	}
	f, err := editor.Open[T](coll, item.EntityID())
	if err != nil {
		return err
	}
	return f.Delete(ctx)
}

func formatServings[T any](servings []domain.Serving[T], name func(*T) string) string {
	parts := make([]string, 0, len(servings))
	for _, s := range servings {
		label := "(unknown)"
		if s.Entity != nil {
			label = name(s.Entity)
		}
		parts = append(parts, label+"×"+s.Quantity.String())
	}
	return strings.Join(parts, ", ")
}

func groupName(g *domain.FoodGroup) string { return g.Name }

func itemName(fi *domain.FoodItem) string { return fi.Name }

func typeName(mt *domain.MealType) string {
	if mt == nil {
		return "-"
	}
	return mt.Name
}
