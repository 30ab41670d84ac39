package planner

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var now = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func mkTask(id int, title string, effort int, tag task.Tag, nextDue string) *task.Task {
	return &task.Task{
		ID:        id,
		Title:     title,
		Effort:    effort,
		Frequency: task.Once,
		Tag:       tag,
		Energy:    task.Medium,
		NextDue:   nextDue,
	}
}

func fixedPlanner() *Planner {
	p := New()
	p.Now = func() time.Time { return now }
	return p
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- Urgency ---

func TestUrgency(t *testing.T) {
	tests := []struct {
		name    string
		nextDue string
		want    int
	}{
		{"due today", "2026-10-19", 15},
		{"due tomorrow", "2026-10-20", 14},
		{"due in a week", "2026-10-26", 8},
		{"overdue", "2026-10-01", 33},
		{"far future", "2026-11-30", 0},
		{"exactly at horizon", "2026-11-03", 0},
		{"malformed", "someday", 7},
		{"empty", "", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Urgency(mkTask(1, "x", 10, task.Other, tt.nextDue), now)
			if got != tt.want {
				t.Errorf("Urgency(%q) = %d, want %d", tt.nextDue, got, tt.want)
			}
		})
	}
}

func TestUrgencyAcrossSpringForward(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 3, 5, 0, 0, 0, 0, ny)
	if got := Urgency(mkTask(1, "x", 10, task.Other, "2026-03-10"), at); got != 9 {
		t.Errorf("Urgency = %d, want 9", got)
	}
}

// --- Score ---

func TestScoreFormula(t *testing.T) {
	tk := mkTask(1, "Call bank", 10, task.Money, "2026-10-26") // urgency 8
	tests := []struct {
		energy task.Energy
		want   float64
	}{
		{task.Low, 9 * 0.8 * 2},
		{task.Medium, 9 * 1.0 * 2},
		{task.High, 9 * 1.2 * 2},
		{task.Energy("unknown"), 9 * 1.0 * 2},
	}
	for _, tt := range tests {
		got := Score(tk, tt.energy, now, DefaultWeights)
		if got.Urgency != 8 {
			t.Errorf("urgency = %d, want 8", got.Urgency)
		}
		if !approx(got.Score, tt.want) {
			t.Errorf("Score(%s) = %v, want %v", tt.energy, got.Score, tt.want)
		}
	}
}

func TestScoreTagWeights(t *testing.T) {
	tests := []struct {
		tag  task.Tag
		want float64
	}{
		{task.Money, 2},
		{task.Admin, 1.5},
		{task.Home, 1.2},
		{task.Health, 1.1},
		{task.Other, 1.0},
		{task.Tag("garden"), 1.0},
	}
	for _, tt := range tests {
		// Malformed next_due: urgency 7, so the score is 8 * tag weight.
		got := Score(mkTask(1, "x", 10, tt.tag, "?"), task.Medium, now, DefaultWeights)
		if !approx(got.Score, 8*tt.want) {
			t.Errorf("Score(%s) = %v, want %v", tt.tag, got.Score, 8*tt.want)
		}
	}
}

func TestScoreCustomWeights(t *testing.T) {
	w := Weights{
		Energy: map[task.Energy]float64{task.High: 2},
		Tag:    map[task.Tag]float64{task.Health: 3},
	}
	got := Score(mkTask(1, "Run", 30, task.Health, "2026-11-30"), task.High, now, w)
	if !approx(got.Score, 6) {
		t.Errorf("Score = %v, want 6", got.Score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	tasks := []*task.Task{
		mkTask(1, "a", 10, task.Money, "2026-10-19"),
		mkTask(2, "b", 20, task.Home, "bad"),
		mkTask(3, "c", 25, task.Health, "2026-10-30"),
	}
	ctx := Context{TimeAvailable: 60, Energy: task.High}
	first := Candidates(tasks, ctx, now, DefaultWeights)
	later := Candidates(tasks, ctx, now.Add(3*time.Hour), DefaultWeights)
	for i := range first {
		if first[i].Score != later[i].Score {
			t.Errorf("task %d: score changed within the day: %v vs %v",
				first[i].Task.ID, first[i].Score, later[i].Score)
		}
	}
}

// --- Candidates ---

func TestCandidatesFilterByTime(t *testing.T) {
	tasks := []*task.Task{
		mkTask(1, "short", 10, task.Home, "2026-10-20"),
		mkTask(2, "exact", 30, task.Home, "2026-10-20"),
		mkTask(3, "long", 31, task.Home, "2026-10-20"),
	}
	got := Candidates(tasks, Context{TimeAvailable: 30, Energy: task.Medium}, now, DefaultWeights)
	if len(got) != 2 || got[0].Task.ID != 1 || got[1].Task.ID != 2 {
		t.Fatalf("Candidates = %+v", got)
	}
}

func TestCandidatesNeverExceedTime(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		var tasks []*task.Task
		for i := 0; i < 20; i++ {
			effort := task.MinEffort + rng.Intn(task.MaxEffort-task.MinEffort+1)
			tasks = append(tasks, mkTask(i+1, "t", effort, task.Tags[rng.Intn(len(task.Tags))], "2026-10-25"))
		}
		avail := MinTimeAvailable + rng.Intn(MaxTimeAvailable-MinTimeAvailable+1)
		for _, s := range Candidates(tasks, Context{TimeAvailable: avail, Energy: task.Low}, now, DefaultWeights) {
			if s.Task.Effort > avail {
				t.Fatalf("candidate effort %d exceeds %d", s.Task.Effort, avail)
			}
		}
	}
}

// --- Rank ---

func TestRankPayBillOutranksWalk(t *testing.T) {
	p := fixedPlanner()
	tasks := []*task.Task{
		mkTask(1, "Walk", 15, task.Health, "2026-11-08"),
		mkTask(2, "Pay bill", 10, task.Money, "2026-10-19"),
	}
	got := p.Suggest(tasks, Context{TimeAvailable: 30, Energy: task.Medium})
	if len(got) != 2 {
		t.Fatalf("Suggest returned %d tasks", len(got))
	}
	if got[0].Task.Title != "Pay bill" {
		t.Errorf("first = %q, want Pay bill", got[0].Task.Title)
	}
	if !(got[0].Score > got[1].Score) {
		t.Errorf("scores %v <= %v", got[0].Score, got[1].Score)
	}
}

func TestRankTieBreakByEffort(t *testing.T) {
	scored := []Scored{
		{Task: mkTask(1, "slow", 40, task.Home, ""), Score: 10},
		{Task: mkTask(2, "top", 50, task.Home, ""), Score: 12},
		{Task: mkTask(3, "quick", 5, task.Home, ""), Score: 10},
		{Task: mkTask(4, "mid", 20, task.Home, ""), Score: 10},
		{Task: mkTask(5, "mid-again", 20, task.Home, ""), Score: 10},
	}
	Rank(scored)
	want := []int{2, 3, 4, 5, 1}
	for i, id := range want {
		if scored[i].Task.ID != id {
			t.Fatalf("order[%d] = %d, want %d (full: %v)", i, scored[i].Task.ID, id, ids(scored))
		}
	}
}

func TestTop(t *testing.T) {
	var scored []Scored
	for i := 0; i < 8; i++ {
		scored = append(scored, Scored{Task: mkTask(i+1, "t", 10, task.Home, ""), Score: float64(8 - i)})
	}
	if got := Top(scored, 5); len(got) != 5 || got[4].Task.ID != 5 {
		t.Errorf("Top(5) = %v", ids(got))
	}
	if got := Top(scored[:3], 5); len(got) != 3 {
		t.Errorf("Top on short list = %v", ids(got))
	}
	if got := Top(scored, -1); len(got) != 0 {
		t.Errorf("Top(-1) = %v", ids(got))
	}
}

func TestSuggestCapsAtTopK(t *testing.T) {
	p := fixedPlanner()
	var tasks []*task.Task
	for i := 0; i < 9; i++ {
		tasks = append(tasks, mkTask(i+1, "t", 10, task.Home, "2026-10-20"))
	}
	ctx := Context{TimeAvailable: 30, Energy: task.Medium}
	if got := p.Suggest(tasks, ctx); len(got) != 5 {
		t.Errorf("Suggest len = %d, want 5", len(got))
	}
	if got := p.Pool(tasks, ctx); len(got) != 9 {
		t.Errorf("Pool len = %d, want 9", len(got))
	}
}

// --- Pack / Schedule ---

func pool(efforts ...int) []Scored {
	out := make([]Scored, len(efforts))
	for i, e := range efforts {
		out[i] = Scored{Task: mkTask(i+1, "t", e, task.Home, ""), Score: float64(len(efforts) - i)}
	}
	return out
}

func TestPackGreedy(t *testing.T) {
	got := Pack(pool(50, 60, 30, 10, 5), 90)
	if want := []int{1, 3, 4}; !equalInts(ids(got), want) {
		t.Errorf("Pack = %v, want %v", ids(got), want)
	}
}

func TestPackNoBacktracking(t *testing.T) {
	// An optimal packer would pick 45+45; greedy takes 50 first.
	got := Pack(pool(50, 45, 45), 90)
	if want := []int{1}; !equalInts(ids(got), want) {
		t.Errorf("Pack = %v, want %v", ids(got), want)
	}
}

func TestPackFallbackToTopTask(t *testing.T) {
	got := Pack(pool(120, 100), 90)
	if want := []int{1}; !equalInts(ids(got), want) {
		t.Errorf("Pack = %v, want %v", ids(got), want)
	}
	if got := Pack(nil, 90); len(got) != 0 {
		t.Errorf("Pack(empty) = %v", ids(got))
	}
}

func TestPackNeverExceedsBudgetWithoutFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(12)
		efforts := make([]int, n)
		for i := range efforts {
			efforts[i] = task.MinEffort + rng.Intn(task.MaxEffort-task.MinEffort+1)
		}
		budget := MinSprintMinutes + rng.Intn(MaxSprintMinutes-MinSprintMinutes+1)
		p := pool(efforts...)
		got := Pack(p, budget)

		total := 0
		for _, s := range got {
			total += s.Task.Effort
		}
		if total <= budget {
			continue
		}
		if len(got) != 1 || got[0].Task.ID != 1 {
			t.Fatalf("budget %d exceeded by %v (efforts %v)", budget, ids(got), efforts)
		}
		for _, e := range efforts {
			if e <= budget {
				t.Fatalf("fallback used although effort %d fits %d", e, budget)
			}
		}
	}
}

func TestSchedule(t *testing.T) {
	start := now.Add(DefaultLead)
	blocks := Schedule(pool(25, 10, 45), start)
	if len(blocks) != 3 {
		t.Fatalf("len = %d", len(blocks))
	}
	if !blocks[0].Start.Equal(start) {
		t.Errorf("first start = %v, want %v", blocks[0].Start, start)
	}
	for i, b := range blocks {
		if b.Duration() != time.Duration(b.Task.Effort)*time.Minute {
			t.Errorf("block %d duration = %v", i, b.Duration())
		}
		if i > 0 && !b.Start.Equal(blocks[i-1].End) {
			t.Errorf("block %d starts %v, previous ends %v", i, b.Start, blocks[i-1].End)
		}
	}
	if want := start.Add(80 * time.Minute); !blocks[2].End.Equal(want) {
		t.Errorf("last end = %v, want %v", blocks[2].End, want)
	}
}

func TestPlannerSprint(t *testing.T) {
	p := fixedPlanner()
	tasks := []*task.Task{
		mkTask(1, "Pay bill", 10, task.Money, "2026-10-19"),
		mkTask(2, "Walk", 15, task.Health, "2026-11-08"),
		mkTask(3, "Tax forms", 30, task.Admin, "2026-10-21"),
	}
	plan := p.Sprint(tasks, Context{TimeAvailable: 30, Energy: task.Medium}, 45)
	if plan.Overflow {
		t.Error("unexpected overflow")
	}
	if plan.Used != 40 || len(plan.Blocks) != 2 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Blocks[0].Task.ID != 1 || plan.Blocks[1].Task.ID != 3 {
		t.Errorf("order = %d, %d", plan.Blocks[0].Task.ID, plan.Blocks[1].Task.ID)
	}
	if !plan.Blocks[0].Start.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("first block starts %v", plan.Blocks[0].Start)
	}
}

func TestPlannerSprintOverflow(t *testing.T) {
	p := fixedPlanner()
	tasks := []*task.Task{mkTask(1, "Deep clean", 120, task.Home, "2026-10-19")}
	plan := p.Sprint(tasks, Context{TimeAvailable: 180, Energy: task.High}, 90)
	if !plan.Overflow || plan.Used != 120 || len(plan.Blocks) != 1 {
		t.Errorf("plan = %+v", plan)
	}
}

// --- Context ---

func TestContextValidate(t *testing.T) {
	valid := []Context{
		{TimeAvailable: 10, Energy: task.Low},
		{TimeAvailable: 180, Energy: task.High},
	}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v", c, err)
		}
	}

	invalid := []struct {
		ctx  Context
		code string
	}{
		{Context{TimeAvailable: 9, Energy: task.Low}, clierr.OutOfRange},
		{Context{TimeAvailable: 181, Energy: task.Low}, clierr.OutOfRange},
		{Context{TimeAvailable: 30, Energy: "sleepy"}, clierr.InvalidEnergy},
	}
	for _, tt := range invalid {
		var cliErr *clierr.Error
		if err := tt.ctx.Validate(); !errors.As(err, &cliErr) || cliErr.Code != tt.code {
			t.Errorf("Validate(%+v) = %v, want %s", tt.ctx, err, tt.code)
		}
	}
}

func TestValidateSprintMinutes(t *testing.T) {
	for _, m := range []int{30, 90, 240} {
		if err := ValidateSprintMinutes(m); err != nil {
			t.Errorf("ValidateSprintMinutes(%d) = %v", m, err)
		}
	}
	for _, m := range []int{0, 29, 241} {
		if err := ValidateSprintMinutes(m); err == nil {
			t.Errorf("ValidateSprintMinutes(%d) should fail", m)
		}
	}
}

func TestStep(t *testing.T) {
	tests := []struct{ in, delta, want int }{
		{30, 5, 35},
		{10, -5, 10},
		{180, 5, 180},
		{178, 5, 180},
	}
	for _, tt := range tests {
		if got := Step(tt.in, tt.delta, MinTimeAvailable, MaxTimeAvailable); got != tt.want {
			t.Errorf("Step(%d, %d) = %d, want %d", tt.in, tt.delta, got, tt.want)
		}
	}
}

func ids(s []Scored) []int {
	out := make([]int, len(s))
	for i, x := range s {
		out[i] = x.Task.ID
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
