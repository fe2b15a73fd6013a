package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trustbyte/board"
	"trustbyte/domain"
)

func listCmd() *cobra.Command {
	var status, priority, sortBy, order string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAuthedClient()
			if err != nil {
				return err
			}
			tasks, err := c.AllTasks(cmd.Context())
			if err != nil {
				return err
			}

			query, err := buildQuery(status, priority, sortBy, order)
			if err != nil {
				return err
			}
			printTasks(board.FilterSort(tasks, query))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", `Filter by status ("To Do", "In Progress", "Completed")`)
	cmd.Flags().StringVar(&priority, "priority", "", `Filter by priority ("Low", "Medium", "High")`)
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by title, priority or dueDate")
	cmd.Flags().StringVar(&order, "order", "asc", "Sort order, asc or desc")

	return cmd
}

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show your tasks grouped into Kanban columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAuthedClient()
			if err != nil {
				return err
			}
			tasks, err := c.AllTasks(cmd.Context())
			if err != nil {
				return err
			}

			for _, column := range board.Columns(tasks) {
				fmt.Printf("%s (%d)\n", column.Status, len(column.Tasks))
				for _, t := range column.Tasks {
					fmt.Printf("  %s  %-8s %s\n", t.ID.Hex(), t.Priority, t.Title)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var title, desc, status, priority, due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAuthedClient()
			if err != nil {
				return err
			}

			task := domain.Task{Title: title, Description: desc}
			if task.Status, err = domain.ParseStatus(status); err != nil {
				return err
			}
			if task.Priority, err = domain.ParsePriority(priority); err != nil {
				return err
			}
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid --due, want YYYY-MM-DD: %w", err)
				}
				task.DueDate = &d
			}

			created, err := c.AddTask(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", created.ID.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&desc, "desc", "", "Task description")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusToDo), "Initial status")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "Priority")
	cmd.Flags().StringVar(&due, "due", "", "Due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := primitive.ObjectIDFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id: %w", err)
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}

			c, err := newAuthedClient()
			if err != nil {
				return err
			}
			tasks, err := c.AllTasks(cmd.Context())
			if err != nil {
				return err
			}

			store := board.NewStore()
			store.SetTasks(tasks)
			task, ok := store.TaskByID(id)
			if !ok {
				return fmt.Errorf("no task with id %s", id.Hex())
			}

			b := board.NewBoard(store, c, consoleNotifier{})
			if _, ok := b.SetStatus(cmd.Context(), task, status); !ok {
				fmt.Printf("%s is already in %s\n", task.Title, status)
				return nil
			}
			b.Wait()
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := primitive.ObjectIDFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id: %w", err)
			}
			c, err := newAuthedClient()
			if err != nil {
				return err
			}
			if err := c.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func buildQuery(status, priority, sortBy, order string) (board.Query, error) {
	var q board.Query
	var err error

	if status != "" {
		if q.Status, err = domain.ParseStatus(status); err != nil {
			return q, err
		}
	}
	if priority != "" {
		if q.Priority, err = domain.ParsePriority(priority); err != nil {
			return q, err
		}
	}
	switch sortBy {
	case "", "none":
		q.SortBy = board.SortNone
	case "title":
		q.SortBy = board.SortTitle
	case "priority":
		q.SortBy = board.SortPriority
	case "dueDate", "due":
		q.SortBy = board.SortDueDate
	default:
		return q, fmt.Errorf("invalid --sort %q", sortBy)
	}
	switch order {
	case "", "asc":
		q.Order = board.Ascending
	case "desc":
		q.Order = board.Descending
	default:
		return q, fmt.Errorf("invalid --order %q", order)
	}
	return q, nil
}

func printTasks(tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID.Hex(), t.Title, t.Status, t.Priority, due)
	}
	_ = w.Flush()
}

// consoleNotifier prints sync outcomes the way the web app shows toasts.
type consoleNotifier struct{}

func (consoleNotifier) Success(title, detail string) {
	fmt.Printf("%s: %s\n", title, detail)
}

func (consoleNotifier) Failure(title, detail string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, detail)
}
