package task

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FindByID scans the tasks directory for a file whose numeric prefix is id.
func FindByID(tasksDir string, id int) (string, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return "", fmt.Errorf("reading tasks directory: %w", err)
	}

	idStr := strconv.Itoa(id)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		dash := strings.IndexByte(name, '-')
		if dash < 1 {
			continue
		}
		if strings.TrimLeft(name[:dash], "0") == idStr {
			return filepath.Join(tasksDir, name), nil
		}
	}

	return "", ErrTaskNotFound(id)
}

// ReadWarning describes a file that could not be parsed during lenient reading.
type ReadWarning struct {
	File string // base filename
	Err  error
}

// ReadAllLenient reads all task files, skipping malformed files instead of aborting.
// Tasks come back ordered by ID.
func ReadAllLenient(tasksDir string) ([]*Task, []ReadWarning, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []*Task
	var warnings []ReadWarning
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		t, readErr := Read(filepath.Join(tasksDir, entry.Name()))
		if readErr != nil {
			warnings = append(warnings, ReadWarning{File: entry.Name(), Err: readErr})
			continue
		}
		tasks = append(tasks, t)
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, warnings, nil
}

// LoadStore hydrates a Store from the task files in tasksDir.
func LoadStore(tasksDir string) (*Store, []ReadWarning, error) {
	tasks, warnings, err := ReadAllLenient(tasksDir)
	if err != nil {
		return nil, nil, err
	}
	s := NewStore()
	for _, t := range tasks {
		s.Insert(t)
	}
	return s, warnings, nil
}
