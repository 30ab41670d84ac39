package board

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/filelock"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// AddTask persists a new task built from d. It holds the config lock while
// reading and bumping next_id so concurrent adds never share an ID. cfg is
// refreshed from disk and updated in place.
func AddTask(cfg *config.Config, d task.Draft, now time.Time) (*task.Task, error) {
	var created *task.Task
	err := filelock.Guard(cfg.ConfigPath(), func() error {
		fresh, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}

		store, _, err := task.LoadStore(fresh.TasksPath())
		if err != nil {
			return err
		}
		store.SetNextID(fresh.NextID)

		t, err := store.Add(d, now)
		if err != nil {
			return err
		}

		t.File = filepath.Join(fresh.TasksPath(), task.Filename(t))
		if err := task.Write(t.File, t); err != nil {
			return fmt.Errorf("writing task: %w", err)
		}

		fresh.NextID = store.NextID()
		if err := fresh.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		*cfg = *fresh
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	LogMutation(cfg.Dir(), ActionAdd, created.ID, created.Title)
	return created, nil
}
