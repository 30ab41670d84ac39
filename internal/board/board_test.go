package board

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var now = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func fixture() []*task.Task {
	return []*task.Task{
		{ID: 1, Title: "Pay electricity bill", Effort: 10, Frequency: task.Monthly, Tag: task.Money, Energy: task.Low, NextDue: "2026-10-19"},
		{ID: 2, Title: "Walk", Effort: 15, Frequency: task.Daily, Tag: task.Health, Energy: task.Medium, NextDue: "2026-11-08"},
		{ID: 3, Title: "Renew passport", Effort: 45, Frequency: task.Once, Tag: task.Admin, Energy: task.High, NextDue: "2026-10-10", Notes: "photo booth first"},
		{ID: 4, Title: "Clean gutters", Effort: 60, Frequency: task.Quarterly, Tag: task.Home, Energy: task.High, NextDue: "someday"},
		{ID: 5, Title: "Budget review", Effort: 30, Frequency: task.Weekly, Tag: task.Money, Energy: task.Medium, NextDue: "2026-10-26"},
	}
}

func ids(tasks []*task.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intp(n int) *int { return &n }

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []int
	}{
		{"no filter", FilterOptions{}, []int{1, 2, 3, 4, 5}},
		{"tag", FilterOptions{Tags: []string{"money"}}, []int{1, 5}},
		{"tags", FilterOptions{Tags: []string{"home", "health"}}, []int{2, 4}},
		{"frequency", FilterOptions{Frequencies: []string{"once", "daily"}}, []int{2, 3}},
		{"energy", FilterOptions{Energies: []string{"high"}}, []int{3, 4}},
		{"search title", FilterOptions{Search: "BILL"}, []int{1}},
		{"search notes", FilterOptions{Search: "booth"}, []int{3}},
		{"due within 0", FilterOptions{DueWithin: intp(0)}, []int{1, 3}},
		{"due within 7", FilterOptions{DueWithin: intp(7)}, []int{1, 3, 5}},
		{"combined", FilterOptions{Tags: []string{"money"}, DueWithin: intp(0)}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Filter(fixture(), tt.opts, now)); !equalInts(got, tt.want) {
				t.Errorf("Filter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		field   string
		reverse bool
		want    []int
	}{
		{SortID, true, []int{5, 4, 3, 2, 1}},
		{SortEffort, false, []int{1, 2, 5, 3, 4}},
		{SortTitle, false, []int{5, 4, 1, 3, 2}},
		{SortNextDue, false, []int{3, 1, 5, 2, 4}},
		{SortTag, false, []int{1, 5, 4, 2, 3}},
		{"bogus", false, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			tasks := fixture()
			Sort(tasks, tt.field, tt.reverse)
			if got := ids(tasks); !equalInts(got, tt.want) {
				t.Errorf("Sort(%s) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestGroupBy(t *testing.T) {
	g := GroupBy(fixture(), "tag")
	var keys []string
	for _, grp := range g.Groups {
		keys = append(keys, grp.Key)
	}
	want := []string{"money", "home", "health", "admin"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
	if g.Groups[0].Total != 2 || g.Groups[0].Effort != 40 {
		t.Errorf("money group = %+v", g.Groups[0])
	}

	tasks := append(fixture(), &task.Task{ID: 6, Title: "Odd", Effort: 5, Tag: "garden"})
	g = GroupBy(tasks, "tag")
	if last := g.Groups[len(g.Groups)-1]; last.Key != "garden" || last.Total != 1 {
		t.Errorf("unknown tag group = %+v", last)
	}
}

func TestSummary(t *testing.T) {
	cfg := config.NewDefault("Home")
	ov := Summary(cfg, fixture(), now)

	if ov.Name != "Home" || ov.TotalTasks != 5 || ov.TotalEffort != 160 {
		t.Errorf("totals = %+v", ov)
	}
	if ov.Overdue != 1 || ov.DueSoon != 2 || ov.Undated != 1 {
		t.Errorf("overdue=%d due_soon=%d undated=%d, want 1 2 1", ov.Overdue, ov.DueSoon, ov.Undated)
	}
	if len(ov.Tags) != len(task.Tags) || ov.Tags[0].Key != "money" || ov.Tags[0].Count != 2 {
		t.Errorf("tags = %+v", ov.Tags)
	}
	if len(ov.Frequencies) != len(task.Frequencies) {
		t.Errorf("frequencies = %+v", ov.Frequencies)
	}
}

func TestParseIDs(t *testing.T) {
	got, err := ParseIDs("3, 1,3,,2")
	if err != nil {
		t.Fatalf("ParseIDs: %v", err)
	}
	if !equalInts(got, []int{3, 1, 2}) {
		t.Errorf("ParseIDs = %v", got)
	}
	for _, bad := range []string{"", " , ", "1,x"} {
		if _, err := ParseIDs(bad); err == nil {
			t.Errorf("ParseIDs(%q) should fail", bad)
		}
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Init(dir, "Home")
	if err != nil {
		t.Fatal(err)
	}
	for _, tk := range fixture() {
		if err := task.Write(filepath.Join(cfg.TasksPath(), task.Filename(tk)), tk); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(cfg.TasksPath(), "999-broken.md"), []byte("no frontmatter"), 0o600); err != nil {
		t.Fatal(err)
	}

	tasks, warnings, err := List(cfg, ListOptions{SortBy: SortEffort, Reverse: true, Limit: 2}, now)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := ids(tasks); !equalInts(got, []int{4, 3}) {
		t.Errorf("List = %v, want [4 3]", got)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLog(t *testing.T) {
	dir := t.TempDir()

	entries, err := ReadLog(dir, 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("ReadLog on empty dir = %v, %v", entries, err)
	}

	LogMutation(dir, ActionAdd, 1, "Pay bill")
	LogMutation(dir, ActionSprint, 0, "3 tasks, 85 min")
	LogMutation(dir, ActionExport, 1, "pay-bill.ics")

	entries, err = ReadLog(dir, 2)
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != ActionSprint || entries[1].TaskID != 1 {
		t.Errorf("ReadLog = %+v", entries)
	}
}
