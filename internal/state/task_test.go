// internal/state/task_test.go
package state

import (
	"path/filepath"
	"testing"
)

func TestTaskStore_ListEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(filepath.Join(dir, "tasks.json"))

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %d tasks", len(tasks))
	}
}

func TestTaskStore_AddAndList(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(filepath.Join(dir, "tasks.json"))

	task := &Task{
		Name:       "daily-qoe-summary",
		Prompt:     "Summarize yesterday's QoE metrics",
		Schedule:   "0 9 * * *",
		SessionKey: "telegram:123",
		Timezone:   "US/Pacific",
		Enabled:    true,
	}

	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Name != "daily-qoe-summary" {
		t.Errorf("expected name daily-qoe-summary, got %s", tasks[0].Name)
	}
	if tasks[0].Schedule != "0 9 * * *" {
		t.Errorf("expected schedule 0 9 * * *, got %s", tasks[0].Schedule)
	}
	if tasks[0].Timezone != "US/Pacific" {
		t.Errorf("expected timezone US/Pacific, got %s", tasks[0].Timezone)
	}
	if !tasks[0].Enabled {
		t.Error("expected task to be enabled")
	}
}

func TestTaskStore_AddDuplicate(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(filepath.Join(dir, "tasks.json"))

	task := &Task{
		Name:       "my-task",
		Prompt:     "do something",
		SessionKey: "telegram:123",
		Enabled:    true,
	}

	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	err := store.Add(task)
	if err == nil {
		t.Fatal("expected error for duplicate task name")
	}
}

func TestTaskStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(filepath.Join(dir, "tasks.json"))

	task := &Task{
		Name:       "my-task",
		Prompt:     "do something",
		SessionKey: "telegram:123",
		Enabled:    true,
	}

	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	if err := store.Remove("my-task"); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list after remove, got %d tasks", len(tasks))
	}
}

func TestTaskStore_SetEnabled(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(filepath.Join(dir, "tasks.json"))

	task := &Task{
		Name:       "my-task",
		Prompt:     "do something",
		SessionKey: "telegram:123",
		Enabled:    true,
	}

	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	if err := store.SetEnabled("my-task", false); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("my-task")
	if err != nil {
		t.Fatal(err)
	}
	if got.Enabled {
		t.Error("expected task to be disabled")
	}
}

func TestTaskStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")

	store1 := NewTaskStore(path)
	task := &Task{
		Name:       "persist-task",
		Prompt:     "persist me",
		SessionKey: "telegram:456",
		Enabled:    true,
	}
	if err := store1.Add(task); err != nil {
		t.Fatal(err)
	}

	store2 := NewTaskStore(path)
	tasks, err := store2.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task from new store, got %d", len(tasks))
	}
	if tasks[0].Name != "persist-task" {
		t.Errorf("expected name persist-task, got %s", tasks[0].Name)
	}
}
