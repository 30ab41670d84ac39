package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to the given writer as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	resp := ErrorResponse{Error: msg, Code: code, Details: details}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) // best-effort; if writer fails, nothing we can do
}

// PlanResponse is the JSON shape of the plan command.
type PlanResponse struct {
	TimeAvailable int            `json:"time_available"`
	Energy        string         `json:"energy"`
	Candidates    int            `json:"candidates"`
	Picks         []PickResponse `json:"picks"`
}

// PickResponse is one ranked pick.
type PickResponse struct {
	Rank    int     `json:"rank"`
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Effort  int     `json:"effort"`
	Tag     string  `json:"tag"`
	NextDue string  `json:"next_due"`
	Urgency int     `json:"urgency"`
	Score   float64 `json:"score"`
}

// NewPlanResponse builds the plan JSON from ranked picks.
func NewPlanResponse(ctx planner.Context, candidates int, picks []planner.Scored) PlanResponse {
	resp := PlanResponse{
		TimeAvailable: ctx.TimeAvailable,
		Energy:        string(ctx.Energy),
		Candidates:    candidates,
		Picks:         make([]PickResponse, 0, len(picks)),
	}
	for i, s := range picks {
		resp.Picks = append(resp.Picks, PickResponse{
			Rank:    i + 1,
			ID:      s.Task.ID,
			Title:   s.Task.Title,
			Effort:  s.Task.Effort,
			Tag:     string(s.Task.Tag),
			NextDue: s.Task.NextDue,
			Urgency: s.Urgency,
			Score:   s.Score,
		})
	}
	return resp
}
