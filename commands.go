package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"course_miniapp/handlers"
	"course_miniapp/store"
)

var (
	loginDev      bool
	loginInitData string
	coursesProj   int
)

// intent runs against a freshly wired store and returns the data printed
// next to the state.
type intent func(ctx context.Context, s *store.Store, ids []int) any

func registerIntentCommands(root *cobra.Command) {
	loginCmd := intentCommand("login", "Start a session (Telegram init data, or --dev)", 0,
		func(ctx context.Context, s *store.Store, _ []int) any {
			if loginDev {
				s.DevLogin(ctx)
			} else {
				s.TelegramAuth(ctx, loginInitData)
			}
			return handlers.NewSessionInfo(s)
		})
	loginCmd.Flags().BoolVar(&loginDev, "dev", false, "use the developer login")
	loginCmd.Flags().StringVar(&loginInitData, "init-data", "", "raw init data (defaults to the configured providers)")

	coursesCmd := intentCommand("courses", "List all courses, or one project's with --project", 0,
		func(ctx context.Context, s *store.Store, _ []int) any {
			if coursesProj != 0 {
				return s.LoadProjectCourses(ctx, coursesProj)
			}
			s.LoadAllCourses(ctx)
			return nil
		})
	coursesCmd.Flags().IntVar(&coursesProj, "project", 0, "project id")

	root.AddCommand(
		loginCmd,
		coursesCmd,
		intentCommand("logout", "Forget the stored session", 0,
			func(ctx context.Context, s *store.Store, _ []int) any {
				s.ClearAuth()
				return handlers.NewSessionInfo(s)
			}),
		intentCommand("whoami", "Show the session and the profile", 0,
			func(ctx context.Context, s *store.Store, _ []int) any {
				if s.Snapshot().Authenticated() {
					s.LoadProfile(ctx)
				}
				return handlers.NewSessionInfo(s)
			}),
		intentCommand("projects", "List projects", 0,
			func(ctx context.Context, s *store.Store, _ []int) any {
				s.LoadProjects(ctx)
				return nil
			}),
		intentCommand("course <project> <course>", "Open a course", 2,
			func(ctx context.Context, s *store.Store, ids []int) any {
				return s.OpenCourse(ctx, ids[0], ids[1])
			}),
		intentCommand("lesson <project> <course> <lesson>", "Open a lesson and fetch its video", 3,
			func(ctx context.Context, s *store.Store, ids []int) any {
				return s.OpenLesson(ctx, ids[0], ids[1], ids[2])
			}),
		intentCommand("pay <project> <course>", "Request a payment link for a course", 2,
			func(ctx context.Context, s *store.Store, ids []int) any {
				s.EnsureCourseLoaded(ctx, ids[0], ids[1])
				s.StartPayment(ctx)
				return map[string]string{"payment_url": s.Snapshot().PaymentURL}
			}),
		intentCommand("my", "List purchased courses", 0,
			func(ctx context.Context, s *store.Store, _ []int) any {
				s.LoadMyCourses(ctx)
				return nil
			}),
	)
}

func intentCommand(use, short string, nArgs int, run intent) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()
			data := run(ctx, a.store, ids)
			return printState(cmd.OutOrStdout(), cmd.Name(), a.store.Snapshot(), data)
		},
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: must be a number", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

// printState writes the view as indented JSON; a state error fails the
// command after printing.
func printState(w io.Writer, page string, st store.State, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(handlers.View{Page: page, State: st, Data: data}); err != nil {
		return err
	}
	if st.Error != "" {
		return errors.New(st.Error)
	}
	return nil
}
