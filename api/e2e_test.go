package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"trustbyte/board"
	"trustbyte/client"
	"trustbyte/domain"
)

// Drives the stack the way the web app does: register, log in, create a task,
// drag it across the board, and read the column back through a projection.
func TestEndToEndBoardFlow(t *testing.T) {
	e := echo.New()
	auth := NewAuth([]byte("e2e-secret"))
	Register(e, newMockStore(), auth, auth, newFakeDeduper(), log.New())

	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx := context.Background()
	c := client.New(srv.URL)

	if err := c.Register(ctx, "Jane", "jane@x.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := c.Login(ctx, "jane@x.com", "hunter22"); err != nil {
		t.Fatalf("login: %v", err)
	}

	created, err := c.AddTask(ctx, domain.Task{
		Title:    "Write report",
		Status:   domain.StatusToDo,
		Priority: domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("server did not assign an id")
	}

	tasks, err := c.AllTasks(ctx)
	if err != nil {
		t.Fatalf("fetch tasks: %v", err)
	}

	store := board.NewStore()
	store.SetTasks(tasks)
	b := board.NewBoard(store, c, nil)

	dest := domain.StatusInProgress
	if _, ok := b.DragTo(ctx, board.DragEnd{
		TaskID:      created.ID,
		Source:      domain.StatusToDo,
		Destination: &dest,
	}); !ok {
		t.Fatal("drag did not fire a transition")
	}
	b.Wait()

	// The server must have persisted the move.
	tasks, err = c.AllTasks(ctx)
	if err != nil {
		t.Fatalf("refetch tasks: %v", err)
	}
	store.SetTasks(tasks)

	inProgress := board.FilterSort(store.Tasks(), board.Query{Status: domain.StatusInProgress})
	if len(inProgress) != 1 || inProgress[0].Title != "Write report" {
		t.Fatalf("unexpected In Progress column: %#v", inProgress)
	}
}
