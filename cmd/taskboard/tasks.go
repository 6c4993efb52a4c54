package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/taskboard/internal/api"
	"github.com/phrazzld/taskboard/internal/client"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/spf13/cobra"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage tasks on a running server",
	}

	tasksCmd.AddCommand(newTasksListCommand(ctx))
	tasksCmd.AddCommand(newTasksGetCommand(ctx))
	tasksCmd.AddCommand(newTasksCreateCommand(ctx))
	tasksCmd.AddCommand(newTasksUpdateCommand(ctx))
	tasksCmd.AddCommand(newTasksDeleteCommand(ctx))

	return tasksCmd
}

func newTasksListCommand(ctx *commandContext) *cobra.Command {
	var status, priority, search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := ctx.apiClient().ListTasks(cmd.Context(), client.Filter{
				Search:   strings.TrimSpace(search),
				Status:   domain.Status(strings.TrimSpace(status)),
				Priority: domain.Priority(strings.TrimSpace(priority)),
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found")
				return nil
			}

			colorize := ctx.colorize(cmd.OutOrStdout())
			now := time.Now()
			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				rows = append(rows, taskRow(t, now, colorize))
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Status", "Priority", "Due", ""},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status (open, progress, completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks with this priority (low, medium, high)")
	cmd.Flags().StringVar(&search, "search", "", "Only tasks whose title or description contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTasksGetCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := ctx.apiClient().GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printTask(cmd, ctx, task, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTasksCreateCommand(ctx *commandContext) *cobra.Command {
	var title, description, status, priority, due string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CreateTaskRequest{
				Title:    title,
				Status:   strings.TrimSpace(status),
				Priority: strings.TrimSpace(priority),
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("due") {
				req.DueDate = &due
			}

			task, err := ctx.apiClient().CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", task.ID)
			}
			return printTask(cmd, ctx, task, asJSON)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (default open)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (default medium)")
	cmd.Flags().StringVar(&due, "due", "", "Due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCommand(ctx *commandContext) *cobra.Command {
	var title, description, status, priority, due string
	var clearDescription, clearDue, asJSON bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a task; unspecified fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var req api.UpdateTaskRequest
			changed := false

			if flags.Changed("title") {
				req.Title = domain.Some(title)
				changed = true
			}
			switch {
			case flags.Changed("description") && clearDescription:
				return errors.New("--description and --clear-description are mutually exclusive")
			case flags.Changed("description"):
				req.Description = domain.Some(description)
				changed = true
			case clearDescription:
				req.Description = domain.Null[string]()
				changed = true
			}
			if flags.Changed("status") {
				req.Status = &status
				changed = true
			}
			if flags.Changed("priority") {
				req.Priority = &priority
				changed = true
			}
			switch {
			case flags.Changed("due") && clearDue:
				return errors.New("--due and --clear-due are mutually exclusive")
			case flags.Changed("due"):
				req.DueDate = domain.Some(due)
				changed = true
			case clearDue:
				req.DueDate = domain.Null[string]()
				changed = true
			}
			if !changed {
				return errors.New("nothing to update; pass at least one field flag")
			}

			task, err := ctx.apiClient().UpdateTask(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d\n", task.ID)
			}
			return printTask(cmd, ctx, task, asJSON)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status (open, progress, completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (low, medium, high)")
	cmd.Flags().StringVar(&due, "due", "", "New due date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().BoolVar(&clearDescription, "clear-description", false, "Remove the description")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTasksDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if err := ctx.apiClient().DeleteTask(cmd.Context(), id); err != nil {
				if errors.Is(err, client.ErrNotFound) {
					return fmt.Errorf("task #%d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: must be an integer", raw)
	}
	return id, nil
}

func taskRow(t api.TaskResponse, now time.Time, colorize bool) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		statusBadge(domain.Status(t.Status), colorize),
		priorityBadge(domain.Priority(t.Priority), colorize),
		formatDueDate(t.DueDate),
		overdueMarker(isOverdue(t, now), colorize),
	}
}

func isOverdue(t api.TaskResponse, now time.Time) bool {
	task := domain.Task{Status: domain.Status(t.Status), DueDate: t.DueDate}
	return task.IsOverdue(now)
}

func printTask(cmd *cobra.Command, ctx *commandContext, task *api.TaskResponse, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, task)
	}

	colorize := ctx.colorize(cmd.OutOrStdout())
	description := "-"
	if task.Description != nil {
		description = *task.Description
	}
	due := formatDueDate(task.DueDate)
	if marker := overdueMarker(isOverdue(*task, time.Now()), colorize); marker != "" {
		due += " " + marker
	}

	rows := [][]string{
		{"ID", strconv.FormatInt(task.ID, 10)},
		{"Title", task.Title},
		{"Description", description},
		{"Status", statusBadge(domain.Status(task.Status), colorize)},
		{"Priority", priorityBadge(domain.Priority(task.Priority), colorize)},
		{"Due", due},
		{"Created", task.CreatedAt.UTC().Format(time.RFC3339)},
		{"Updated", task.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
	return nil
}
