// Command board is a terminal client for the task board: it signs in
// through the session manager and drives the synchronization engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/client/api"
	"github.com/BuzzLyutic/taskboard/internal/client/session"
	"github.com/BuzzLyutic/taskboard/internal/client/sync"
	"github.com/BuzzLyutic/taskboard/internal/model"
)

const usage = `usage: board [flags] <command> [args]

commands:
  login <email> <password>   sign in and store the session
  logout                     sign out and clear the session
  list                       print the board grouped by lane
  add <title> [description]  create a pending task
  move <id> <status>         drag a task to another lane
  rm <id>                    delete a task
  stats                      print per-lane counts
`

func main() {
	server := flag.String("server", envOr("BOARD_SERVER", "http://localhost:8080"), "task gateway base URL")
	provider := flag.String("provider", envOr("BOARD_PROVIDER", "http://localhost:9099"), "identity provider base URL")
	stateDir := flag.String("state", defaultStateDir(), "directory for the session snapshot")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := zap.NewNop()
	ctx := context.Background()

	manager := session.NewManager(session.NewHTTPProvider(*provider), session.NewFileStore(*stateDir), logger)
	manager.Start(ctx)
	defer manager.Stop()

	client := api.New(*server, manager)
	engine := sync.NewEngine(client, logger)

	if err := run(ctx, manager, client, engine, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, manager *session.Manager, client *api.Client, engine *sync.Engine, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		if len(rest) < 2 {
			return fmt.Errorf("login needs <email> <password>")
		}
		if err := manager.SignIn(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		sess, _ := manager.Session()
		fmt.Printf("signed in as %s\n", sess.Subject.Email)
		return nil

	case "logout":
		return manager.SignOut(ctx)
	}

	if manager.State() != session.Authenticated {
		return fmt.Errorf("not signed in, run: board login <email> <password>")
	}

	switch cmd {
	case "list":
		if err := engine.Load(ctx); err != nil {
			return err
		}
		for _, status := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
			fmt.Printf("== %s\n", status)
			for _, t := range engine.Lanes()[status] {
				fmt.Printf("  %-36s  [%s] %s\n", t.ID, t.Priority, t.Title)
			}
		}
		return nil

	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("add needs <title>")
		}
		draft := model.Task{Title: rest[0]}
		if len(rest) > 1 {
			draft.Description = rest[1]
		}
		created, err := engine.Create(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Println("created", created.ID)
		return nil

	case "move":
		if len(rest) < 2 {
			return fmt.Errorf("move needs <id> <status>")
		}
		status := model.Status(rest[1])
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", rest[1])
		}
		if err := engine.Load(ctx); err != nil {
			return err
		}
		return engine.MoveToStatus(ctx, rest[0], status)

	case "rm":
		if len(rest) < 1 {
			return fmt.Errorf("rm needs <id>")
		}
		if err := engine.Load(ctx); err != nil {
			return err
		}
		return engine.Delete(ctx, rest[0])

	case "stats":
		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		for _, status := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
			fmt.Printf("%-12s %d\n", status, stats.ByStatus[status])
		}
		fmt.Printf("%-12s %d\n", "total", stats.Total)
		return nil
	}

	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskboard"
	}
	return filepath.Join(dir, "taskboard")
}
