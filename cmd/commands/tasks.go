package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskpilot/internal/store"
)

// NewTasksCommand returns the tasks subcommand (direct store access,
// without going through the model).
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Inspect and edit the task store directly",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include completed tasks",
					},
				},
				Action: runTasksList,
			},
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Label to attach (repeatable)",
					},
				},
				Action: runTasksAdd,
			},
			{
				Name:      "done",
				Usage:     "Mark a task completed",
				ArgsUsage: "<task_id>",
				Action:    runTasksDone,
			},
			{
				Name:   "clear",
				Usage:  "Remove all completed tasks",
				Action: runTasksClear,
			},
		},
		DefaultCommand: "list",
	}
}

func openStore(cmd *cli.Command) (*store.Store, error) {
	cfg := loadConfig(cmd)
	return store.OpenFromConfig(cfg.Storage)
}

func runTasksList(_ context.Context, cmd *cli.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	tasks := st.List()
	if !cmd.Bool("all") {
		pending := tasks[:0]
		for _, t := range tasks {
			if !t.Done {
				pending = append(pending, t)
			}
		}
		tasks = pending
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTITLE\tTAGS")
	for _, t := range tasks {
		done := " "
		if t.Done {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\n", t.ID, done, t.Title, joinTags(t.Tags))
	}
	return w.Flush()
}

func runTasksAdd(_ context.Context, cmd *cli.Command) error {
	title := cmd.Args().First()
	if title == "" {
		return fmt.Errorf("usage: taskpilot tasks add <title>")
	}

	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	task, err := st.Create(title, cmd.StringSlice("tag"))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	fmt.Printf("Created %s: %s\n", task.ID, task.Title)
	return nil
}

func runTasksDone(_ context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskpilot tasks done <task_id>")
	}

	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	task, err := st.Complete(taskID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	fmt.Printf("Completed %s: %s\n", task.ID, task.Title)
	return nil
}

func runTasksClear(_ context.Context, cmd *cli.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	removed, err := st.ClearCompleted()
	if err != nil {
		return fmt.Errorf("clear completed: %w", err)
	}
	fmt.Printf("Removed %d completed task(s).\n", removed)
	return nil
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	out := tags[0]
	for _, t := range tags[1:] {
		out += "," + t
	}
	return out
}
