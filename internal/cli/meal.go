package cli

import (
	"fmt"
	"mealtrack/internal/core"
	"mealtrack/pkg/domain"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meal",
		Aliases: []string{"meals"},
		Short:   "Log and list meals",
	}

	var (
		mealType    string
		template    string
		date        string
		at          string
		description string
		items       []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Log a meal",
		Example: `  mealtrack meal add --type Lunch --item Sandwich --item Apple
  mealtrack meal add --template "Usual lunch" --date 2024-05-01 --time 12:45`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.store()
			day, err := parseDate(date, time.Now())
			if err != nil {
				return err
			}
			var m *domain.Meal
			if template != "" {
				t, err := findByName(s.MealTemplates(), template)
				if err != nil {
					return err
				}
				if m, err = a.svc.MealFromTemplate(t.ID, day); err != nil {
					return err
				}
			} else {
				typeID := uuid.Nil
				if mealType != "" {
					mt, err := findByName(s.MealTypes(), mealType)
					if err != nil {
						return err
					}
					typeID = mt.ID
				}
				start := day
				if date == "" && at == "" {
					start = time.Now()
				}
				if m, err = a.svc.NewMeal(typeID, start); err != nil {
					return err
				}
			}
			if template != "" && mealType != "" {
				mt, err := findByName(s.MealTypes(), mealType)
				if err != nil {
					return err
				}
				m.TypeOfMeal = mt
			}
			if at != "" {
				clock, err := parseClock(at)
				if err != nil {
					return err
				}
				m.DateAndTimeOfMeal = withClock(day, clock)
			}
			if description != "" {
				m.Description = description
			}
			for _, spec := range items {
				name, qty, err := parseServing(spec)
				if err != nil {
					return err
				}
				fi, err := findByName(s.FoodItems(), name)
				if err != nil {
					return err
				}
				m.FoodItemServings = append(m.FoodItemServings, domain.NewServing(fi, qty))
			}
			if err := a.svc.LogMeal(cmd.Context(), m); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "logged %s %s %s kcal\n", m.ID, m.DateAndTimeOfMeal.Format(dateLayout+" "+clockLayout), m.Calories())
			return err
		},
	}
	add.Flags().StringVarP(&mealType, "type", "t", "", "meal type name")
	add.Flags().StringVar(&template, "template", "", "start from the named meal template")
	add.Flags().StringVar(&date, "date", "", "day of the meal, YYYY-MM-DD, today or yesterday")
	add.Flags().StringVar(&at, "time", "", "time of the meal, HH:MM")
	add.Flags().StringVarP(&description, "description", "d", "", "description")
	add.Flags().StringArrayVarP(&items, "item", "i", nil, "food item serving as NAME=QUANTITY, repeatable")

	var listDate string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the meals of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(listDate, time.Now())
			if err != nil {
				return err
			}
			sum := a.svc.DailySummary(day)
			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "ID\tTIME\tTYPE\tCALORIES\tITEMS")
			for _, m := range sum.Meals {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.DateAndTimeOfMeal.Format(clockLayout), typeName(m.TypeOfMeal), m.Calories(), formatServings(m.FoodItemServings, itemName))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&listDate, "date", "", "day to list, YYYY-MM-DD, today or yesterday")

	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a logged meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("meal id %q: %w", args[0], err)
			}
			m, ok := a.store().Meals().Get(id)
			if !ok {
				return fmt.Errorf("meal %s: %w", id, core.ErrNotFound)
			}
			return a.store().Meals().Remove(cmd.Context(), m)
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show calories and food group servings for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(date, time.Now())
			if err != nil {
				return err
			}
			sum := a.svc.DailySummary(day)
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s: %d meals, %s kcal\n", sum.Date.Format(dateLayout), len(sum.Meals), sum.Calories)
			if len(sum.FoodGroups) == 0 {
				return nil
			}
			tw := newTable(w)
			_, _ = fmt.Fprintln(tw, "FOOD GROUP\tSERVINGS")
			for _, s := range sum.FoodGroups {
				name := "(unknown)"
				if s.Entity != nil {
					name = s.Entity.Name
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", name, s.Quantity)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to summarise, YYYY-MM-DD, today or yesterday")
	return cmd
}
