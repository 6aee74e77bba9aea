package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anonto42/nano-blog/internal/client/prefs"
)

func newHistoryCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the posts you have viewed",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the ids of viewed posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := get().viewed.IDs()
			if len(ids) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No viewed posts.")
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprint(id)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget every viewed post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			get().ctrl.ClearHistory(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return err
		},
	})
	return cmd
}

func newThemeCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := get().prefs
			ctx := cmd.Context()
			var theme prefs.Theme
			switch {
			case len(args) == 0:
				theme = p.Theme(ctx)
			case args[0] == "toggle":
				t, err := p.ToggleTheme(ctx)
				if err != nil {
					return err
				}
				theme = t
			default:
				t, err := prefs.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := p.SetTheme(ctx, t); err != nil {
					return err
				}
				theme = t
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", theme)
			return err
		},
	}
}
