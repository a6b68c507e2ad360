package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/msomdec/task-board/internal/client"
	"github.com/msomdec/task-board/internal/domain"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task", "t"},
	Short:   "List and change your tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Long: `List your tasks, newest first.

Examples:
  # Everything
  taskctl tasks list

  # Pending work tasks mentioning "report"
  taskctl tasks list --category Work --status pending --search report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			store, err := a.tasks(ctx)
			if err != nil {
				return err
			}

			patch := client.FilterPatch{}
			if cmd.Flags().Changed("category") {
				c := domain.Category(listCategory)
				if !c.Valid() {
					return fmt.Errorf("invalid category %q", listCategory)
				}
				patch.Category = &c
			}
			if cmd.Flags().Changed("status") {
				s := domain.Status(listStatus)
				if !s.Valid() {
					return fmt.Errorf("invalid status %q", listStatus)
				}
				patch.Status = &s
			}
			if cmd.Flags().Changed("search") {
				patch.Search = &listSearch
			}
			store.SetFilter(ctx, patch)

			state := store.State()
			filtered := state.FilteredTasks()
			writeTaskTable(cmd.OutOrStdout(), filtered)
			if len(filtered) != len(state.Tasks) {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d tasks shown\n", len(filtered), len(state.Tasks))
			}
			return nil
		})
	},
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if !a.session.State().IsAuthenticated {
				return errNotSignedIn
			}
			task, err := a.api.GetTask(ctx, a.session.Token(), args[0])
			if err != nil {
				return err
			}
			writeTaskDetail(cmd.OutOrStdout(), task)
			return nil
		})
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			store, err := a.tasks(ctx)
			if err != nil {
				return err
			}
			task, err := store.Add(ctx, client.NewTask{
				Title:       args[0],
				Description: addDescription,
				DueDate:     addDue,
				Category:    domain.Category(addCategory),
				Status:      domain.Status(addStatus),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", task.ID)
			return nil
		})
	},
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change some fields of a task",
	Long: `Change some fields of a task. Only the flags you pass are sent.
Pass --due "" to remove the due date.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			store, err := a.tasks(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var patch client.TaskPatch
			if flags.Changed("title") {
				patch.Title = &updateTitle
			}
			if flags.Changed("description") {
				patch.Description = &updateDescription
			}
			if flags.Changed("due") {
				patch.DueDate = &updateDue
			}
			if flags.Changed("category") {
				c := domain.Category(updateCategory)
				patch.Category = &c
			}
			if flags.Changed("status") {
				s := domain.Status(updateStatus)
				patch.Status = &s
			}

			task, err := store.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			writeTaskDetail(cmd.OutOrStdout(), task)
			return nil
		})
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			store, err := a.tasks(ctx)
			if err != nil {
				return err
			}
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
			return nil
		})
	},
}

var (
	listCategory string
	listStatus   string
	listSearch   string

	addDescription string
	addDue         string
	addCategory    string
	addStatus      string

	updateTitle       string
	updateDescription string
	updateDue         string
	updateCategory    string
	updateStatus      string
)

func init() {
	tasksListCmd.Flags().StringVar(&listCategory, "category", "", "only this category (Personal, Work, Urgent, Other)")
	tasksListCmd.Flags().StringVar(&listStatus, "status", "", "only this status (pending, in-progress, completed)")
	tasksListCmd.Flags().StringVar(&listSearch, "search", "", "only titles containing this text")

	tasksAddCmd.Flags().StringVar(&addDescription, "description", "", "description")
	tasksAddCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	tasksAddCmd.Flags().StringVar(&addCategory, "category", "", "category (default Other)")
	tasksAddCmd.Flags().StringVar(&addStatus, "status", "", "status (default pending)")

	tasksUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	tasksUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	tasksUpdateCmd.Flags().StringVar(&updateDue, "due", "", "new due date, empty to clear")
	tasksUpdateCmd.Flags().StringVar(&updateCategory, "category", "", "new category")
	tasksUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "new status")

	tasksCmd.AddCommand(tasksListCmd, tasksShowCmd, tasksAddCmd, tasksUpdateCmd, tasksDeleteCmd)
	rootCmd.AddCommand(tasksCmd)
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func writeTaskTable(w io.Writer, tasks []client.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Category, t.Status, formatDue(t.DueDate))
	}
	tw.Flush()
}

func writeTaskDetail(w io.Writer, t *client.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Category:\t%s\n", t.Category)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Due:\t%s\n", formatDue(t.DueDate))
	fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Local().Format(time.DateTime))
	tw.Flush()
}
