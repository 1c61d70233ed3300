package cli

import (
	"fmt"
	"mealtrack/internal/editor"
	"mealtrack/pkg/domain"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Manage food groups",
	}

	var description string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a food group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := editor.New(a.store().FoodGroups(), &domain.FoodGroup{Base: domain.Base{ID: domain.NewID()}})
			editor.SetName(f, args[0])
			editor.SetDescription(f, description)
			return f.Save(cmd.Context())
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List food groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "NAME\tDESCRIPTION")
			for _, g := range a.store().FoodGroups().GetAll() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", g.Name, g.Description)
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a food group no food item uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeByName(cmd.Context(), a.store().FoodGroups(), args[0])
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func newItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"items"},
		Short:   "Manage food items",
	}

	var (
		description string
		calories    string
		groups      []string
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a food item",
		Example: `  mealtrack item add Apple --calories 95 --group Fruit=1
  mealtrack item add Sandwich --calories 350 --group Grains=2 --group Protein=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := decimal.NewFromString(calories)
			if err != nil {
				return fmt.Errorf("calories %q: %w", calories, err)
			}
			s := a.store()
			f := editor.New(s.FoodItems(), &domain.FoodItem{Base: domain.Base{ID: domain.NewID()}})
			editor.SetName(f, args[0])
			editor.SetDescription(f, description)
			editor.SetCalories(f, cal)
			for _, spec := range groups {
				name, qty, err := parseServing(spec)
				if err != nil {
					return err
				}
				g, err := findByName(s.FoodGroups(), name)
				if err != nil {
					return err
				}
				editor.AddFoodGroupServing(f, g, qty)
			}
			return f.Save(cmd.Context())
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "description")
	add.Flags().StringVar(&calories, "calories", "0", "calories per serving")
	add.Flags().StringArrayVarP(&groups, "group", "g", nil, "food group serving as NAME=QUANTITY, repeatable")

	list := &cobra.Command{
		Use:   "list",
		Short: "List food items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "NAME\tCALORIES\tFOOD GROUPS")
			for _, fi := range a.store().FoodItems().GetAll() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", fi.Name, fi.CaloriesPerServing, formatServings(fi.FoodGroupsPerServing, groupName))
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a food item no meal template uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeByName(cmd.Context(), a.store().FoodItems(), args[0])
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func newTypeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "type",
		Aliases: []string{"types"},
		Short:   "Manage meal types",
	}

	var (
		description string
		defaultTime string
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a meal type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := editor.New(a.store().MealTypes(), &domain.MealType{Base: domain.Base{ID: domain.NewID()}})
			editor.SetName(f, args[0])
			editor.SetDescription(f, description)
			if defaultTime != "" {
				at, err := parseClock(defaultTime)
				if err != nil {
					return err
				}
				editor.SetDefaultMealTime(f, at, true)
			}
			return f.Save(cmd.Context())
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "description")
	add.Flags().StringVar(&defaultTime, "default-time", "", "default time of new meals, HH:MM")

	list := &cobra.Command{
		Use:   "list",
		Short: "List meal types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "NAME\tDEFAULT TIME\tDESCRIPTION")
			for _, mt := range a.store().MealTypes().GetAll() {
				at := "-"
				if mt.UseDefaultMealTime {
					at = mt.DefaultTimeOfMeal.Format(clockLayout)
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", mt.Name, at, mt.Description)
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a meal type no meal template uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeByName(cmd.Context(), a.store().MealTypes(), args[0])
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Manage meal templates",
	}

	var (
		description string
		mealType    string
		at          string
		items       []string
	)
	add := &cobra.Command{
		Use:     "add NAME",
		Short:   "Add a meal template",
		Example: `  mealtrack template add "Usual lunch" --type Lunch --item Sandwich --item Apple=1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.store()
			f := editor.New(s.MealTemplates(), &domain.MealTemplate{MealBase: domain.MealBase{Base: domain.Base{ID: domain.NewID()}}})
			editor.SetName(f, args[0])
			editor.SetDescription(f, description)
			if mealType != "" {
				mt, err := findByName(s.MealTypes(), mealType)
				if err != nil {
					return err
				}
				editor.SetMealType(f, mt)
			}
			if at != "" {
				clock, err := parseClock(at)
				if err != nil {
					return err
				}
				editor.SetMealTime(f, clock)
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
				editor.AddFoodItemServing(f, fi, qty)
			}
			return f.Save(cmd.Context())
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "description")
	add.Flags().StringVarP(&mealType, "type", "t", "", "meal type name")
	add.Flags().StringVar(&at, "time", "", "time of day for meals created from the template, HH:MM")
	add.Flags().StringArrayVarP(&items, "item", "i", nil, "food item serving as NAME=QUANTITY, repeatable")

	list := &cobra.Command{
		Use:   "list",
		Short: "List meal templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "NAME\tTYPE\tCALORIES\tITEMS")
			for _, t := range a.store().MealTemplates().GetAll() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, typeName(t.TypeOfMeal), t.Calories(), formatServings(t.FoodItemServings, itemName))
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a meal template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeByName(cmd.Context(), a.store().MealTemplates(), strings.TrimSpace(args[0]))
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}
