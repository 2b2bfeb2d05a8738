package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/dinnerpicker/internal/calculator"
	"github.com/mmynk/dinnerpicker/internal/calendar"
	"github.com/mmynk/dinnerpicker/internal/menu"
	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/selection"
	"github.com/mmynk/dinnerpicker/internal/server"
)

// withSelections opens the configured store for the duration of fn.
func (a *app) withSelections(ctx context.Context, fn func(*selection.Service) error) error {
	store, err := server.OpenStore(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	clock, err := calendar.New(a.cfg.Timezone)
	if err != nil {
		return err
	}
	return fn(selection.NewService(store, clock))
}

func newSummaryCmd(a *app) *cobra.Command {
	var date, lang string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the selection summary for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSelections(cmd.Context(), func(svc *selection.Service) error {
				summary, err := svc.GetSelectionSummary(cmd.Context(), date)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary, menu.Embedded(), lang)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language for dish names")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every selection for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSelections(cmd.Context(), func(svc *selection.Service) error {
				resolved, err := svc.ResolveDate(date)
				if err != nil {
					return err
				}
				if err := svc.ClearSelectionsForDate(cmd.Context(), resolved); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selections cleared for %s\n", resolved)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (default today)")
	return cmd
}

func newMenuCmd(a *app) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			menus := menu.Embedded()
			lang = menus.Resolve(lang)
			w := cmd.OutOrStdout()
			for _, cat := range menu.Categories {
				fmt.Fprintf(w, "%s (%s)\n", titleCase(string(cat)), lang)
				for _, item := range menus.List(cat, lang) {
					fmt.Fprintf(w, "  %2d  %s\n", item.ID, item.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Language tag, e.g. fr")
	return cmd
}

func printSummary(out io.Writer, summary *models.SelectionSummary, menus *menu.Provider, lang string) {
	people, noStarter, noMain := calculator.Headcount(summary.Individual)
	fmt.Fprintf(out, "Summary for %s: %d people\n", summary.Date, people)
	skipped := map[menu.Category]int{menu.Starters: noStarter, menu.Mains: noMain}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, course := range []struct {
		cat    menu.Category
		counts map[string]int
	}{
		{menu.Starters, summary.Starters},
		{menu.Mains, summary.Mains},
	} {
		fmt.Fprintf(w, "\n%s\n", titleCase(string(course.cat)))
		if n := skipped[course.cat]; n > 0 {
			fmt.Fprintf(w, "  %d\t(no %s)\n", n, strings.TrimSuffix(string(course.cat), "s"))
		}
		if len(course.counts) == 0 && skipped[course.cat] == 0 {
			fmt.Fprintln(w, "  (none)")
			continue
		}
		for _, id := range sortedByCount(course.counts) {
			fmt.Fprintf(w, "  %d\t%s\n", course.counts[id], menus.Name(course.cat, id, lang))
		}
	}
	w.Flush()
}

// sortedByCount orders dish ids by descending count, then id.
func sortedByCount(counts map[string]int) []string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
