package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anonto42/nano-blog/internal/client/config"
)

// newRootCmd builds the command tree. The returned func releases whatever
// the invocation opened and must run after Execute, whether or not it failed;
// cobra skips post-run hooks when a command errors
func newRootCmd() (*cobra.Command, func()) {
	var verbose bool
	var current *app

	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Read and write posts on a nano-blog server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			a, err := newApp(cmd.Context(), cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			current = a
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	get := func() *app { return current }
	root.AddCommand(
		newPostsCmd(get),
		newCommentsCmd(get),
		newHistoryCmd(get),
		newThemeCmd(get),
	)

	closeApp := func() {
		if current != nil {
			current.Close()
			current = nil
		}
	}
	return root, closeApp
}

func parseID(s, what string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return uint(id), nil
}

// reportedError marks an error the notifier has already shown
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// reported wraps err from a controller call so main does not print it twice
func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

func alreadyReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
