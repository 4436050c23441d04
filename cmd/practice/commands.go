package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"interview-practice-be/pkg/catalog"
	"interview-practice-be/pkg/practice"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func parseQuestion(a *app, arg string) (catalog.Question, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return catalog.Question{}, fmt.Errorf("question id must be a number, got %q", arg)
	}
	return a.catalog.Find(id)
}

func newStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a new practice session (clears previous drafts)",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			id, err := a.session.StartSession()
			if err != nil {
				return err
			}
			color.Green("Started session %s", id)
			return nil
		}),
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List questions and their state",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			for _, q := range a.catalog.Questions() {
				state, err := a.session.State(q)
				if err != nil {
					return err
				}
				fmt.Printf("%2d  %-40s %-8s %-18s %s\n",
					q.Id, q.Title, difficulty(q.Difficulty), catalog.TemplateName(q.Template), stateLabel(state))
			}
			return nil
		}),
	}
}

func newOpenCmd(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "open <question-id>",
		Short: "Write a question's draft to a directory and autosave it until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			q, err := parseQuestion(a, args[0])
			if err != nil {
				return err
			}
			files, err := a.session.Begin(q)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = fmt.Sprintf("question-%d", q.Id)
			}
			if err := practice.Clear(dir); err != nil {
				return err
			}
			if err := practice.Materialize(dir, files); err != nil {
				return err
			}

			color.Cyan("%s (%s)", q.Title, catalog.TemplateName(q.Template))
			fmt.Println(q.Description)
			color.Yellow("Editing in %s, autosaving every %s. Ctrl+C to stop.", dir, opts.interval)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			saver := a.session.Drafts.StartAutosave(ctx, practice.StorageKey(q.Id, q.Template), practice.DirSource{Root: dir}, opts.interval)
			<-saver.Done()
			color.Green("Draft saved (%d autosaves).", saver.Saves())
			return nil
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "working directory (default question-<id>)")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "reset <question-id>",
		Short: "Discard a question's draft and restore the starter files",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			q, err := parseQuestion(a, args[0])
			if err != nil {
				return err
			}
			files, err := a.session.Drafts.Reset(practice.StorageKey(q.Id, q.Template), practice.FileSet(q.StarterFiles()))
			if err != nil {
				return err
			}
			if dir != "" {
				if err := practice.Clear(dir); err != nil {
					return err
				}
				if err := practice.Materialize(dir, files); err != nil {
					return err
				}
			}
			color.Yellow("Question %d reset to its starter files.", q.Id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "also rewrite this working directory")
	return cmd
}

func newSubmitCmd(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "submit <question-id>",
		Short: "Submit a question's current draft to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			sessionId, err := a.requireSession()
			if err != nil {
				return err
			}
			q, err := parseQuestion(a, args[0])
			if err != nil {
				return err
			}
			if dir != "" {
				files, err := practice.DirSource{Root: dir}.Files()
				if err != nil {
					return err
				}
				if err := a.session.Drafts.Autosave(practice.StorageKey(q.Id, q.Template), files); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			res, err := a.session.Recorder.Submit(ctx, q, sessionId)
			if err != nil {
				return fmt.Errorf("submission failed, your draft is kept: %w", err)
			}
			color.Green("%s (%s)", res.Message, res.Filename)
			return nil
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "save this working directory as the draft before submitting")
	return cmd
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session and local submissions",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			id, ok := a.session.SessionID()
			if !ok {
				color.Yellow("No session. Run `practice start`.")
				return nil
			}
			fmt.Printf("Session: %s\n", id)
			subs, err := a.session.Recorder.Submissions()
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Println("No submissions yet.")
			}
			for _, s := range subs {
				fmt.Printf("  #%d %-40s %s  %d file(s)\n", s.QuestionId, s.QuestionTitle, s.SubmissionDate, len(s.Files))
			}
			return nil
		}),
	}
}

func newSyncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace local submission state with the ledger's",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			sessionId, err := a.requireSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.session.Recorder.Reconcile(ctx, sessionId); err != nil {
				return err
			}
			subs, _ := a.session.Recorder.Submissions()
			color.Green("Synced %d submission(s).", len(subs))
			return nil
		}),
	}
}

func newPlaygroundCmd(opts *options) *cobra.Command {
	var dir, template string
	cmd := &cobra.Command{
		Use:   "playground",
		Short: "Save or restore the free-form playground",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			if dir == "" {
				return errors.New("--dir is required")
			}
			if template != "" {
				files, err := practice.DirSource{Root: dir}.Files()
				if err != nil {
					return err
				}
				if err := a.session.SavePlayground(template, files); err != nil {
					return err
				}
				color.Green("Playground saved as %s.", catalog.TemplateName(template))
				return nil
			}
			saved, files, ok := a.session.LoadPlayground()
			if !ok {
				color.Yellow("Nothing saved yet (default template: %s).", catalog.TemplateName(saved))
				return nil
			}
			if err := practice.Materialize(dir, files); err != nil {
				return err
			}
			color.Green("Restored %s playground into %s.", catalog.TemplateName(saved), dir)
			return nil
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "working directory")
	cmd.Flags().StringVar(&template, "save", "", "save the directory under this template instead of restoring")
	return cmd
}

func difficulty(d string) string {
	switch d {
	case "Easy":
		return color.GreenString("%-8s", d)
	case "Medium":
		return color.YellowString("%-8s", d)
	case "Hard":
		return color.RedString("%-8s", d)
	}
	return d
}

func stateLabel(s practice.QuestionState) string {
	switch s {
	case practice.Submitted:
		return color.GreenString("%s", s)
	case practice.InProgress:
		return color.YellowString("%s", s)
	}
	return s.String()
}

func printError(err error) {
	_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
}
