// Package planner scores tasks against a planning context and bundles them
// into time-boxed sprints.
//
// A pass over the tasks works in four steps:
//
//   - Candidates drops every task whose effort exceeds the time available and
//     scores the rest.
//   - Rank orders the candidates by score, highest first, breaking ties with
//     the smaller effort.
//   - Top cuts the ranked list to the shortlist shown to the user.
//   - Pack greedily fills a sprint budget from the full ranked pool, and
//     Schedule lays the chosen tasks out back to back.
//
// Scoring is a pure function of the task, the context and the clock, so the
// same inputs on the same day always produce the same ranking.
package planner
