package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nhle/careboard/internal/board"
	"github.com/nhle/careboard/internal/model"
)

var (
	createDescription string
	createPriority    string
	createRoom        string
	createDuration    int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Print the task board grouped by status",
	RunE:  runTasks,
}

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <status>",
	Short: "Move a task to another status",
	Long: `Move a task to another status. Allowed moves follow the board:
todo → in_progress, in_progress → completed or handoff, handoff → completed.
Use --force to send any recognized status.`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var moveForce bool

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "task description")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", string(model.PriorityNormal), "low, normal, urgent or emergency")
	createCmd.Flags().StringVarP(&createRoom, "room", "r", "", "room number")
	createCmd.Flags().IntVar(&createDuration, "minutes", 0, "estimated duration in minutes")

	moveCmd.Flags().BoolVar(&moveForce, "force", false, "skip the transition check")
}

// openBoard restores the session and loads the board. The load always
// notifies on failure here, since a CLI run has nothing else to show.
func openBoard(cmd *cobra.Command) (*env, *board.Board, error) {
	e, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	if err := requireSession(cmd.Context(), e); err != nil {
		e.Close()
		return nil, nil, err
	}

	b := board.New(e.session.Client(), e.queue, board.LoadFailureNotify)
	if err := b.Load(cmd.Context()); err != nil {
		e.Close()
		return nil, nil, &reportedError{err: err}
	}
	return e, b, nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	e, b, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	printBuckets(cmd.OutOrStdout(), b.Buckets())
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	priority := model.Priority(createPriority)
	if !validPriority(priority) {
		return fmt.Errorf("unknown priority %q", createPriority)
	}

	e, b, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	in := model.TaskInput{
		Title:       args[0],
		Description: createDescription,
		Priority:    priority,
		RoomNumber:  createRoom,
	}
	if createDuration > 0 {
		d := createDuration
		in.EstimatedDuration = &d
	}

	task, err := b.Create(cmd.Context(), in)
	if err != nil {
		return &reportedError{err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", task.ID, task.Title)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	id, to := model.ID(args[0]), model.Status(args[1])
	if !to.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}

	e, b, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	task, ok := b.Task(id)
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if !moveForce && !model.CanTransition(task.Status, to) {
		return fmt.Errorf("cannot move task %s from %s to %s", id, task.Status, to)
	}

	if _, err := b.UpdateStatus(cmd.Context(), id, to); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func printBuckets(w io.Writer, buckets board.Buckets) {
	for i, s := range model.Statuses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		tasks := buckets[s]
		fmt.Fprintf(w, "%s (%d)\n", s.Label(), len(tasks))
		for _, t := range tasks {
			line := fmt.Sprintf("  %-8s %-9s %s", t.ID, t.Priority, t.Title)
			if t.RoomNumber != "" {
				line += "  [room " + t.RoomNumber + "]"
			}
			if t.AssignedUser != nil && t.AssignedUser.Name != "" {
				line += "  @" + t.AssignedUser.Name
			}
			fmt.Fprintln(w, line)
		}
	}
}

func validPriority(p model.Priority) bool {
	for _, known := range model.Priorities {
		if p == known {
			return true
		}
	}
	return false
}
