package model

import "time"

// Recommendation is an admin-curated route suggestion surfaced on the
// landing pages.  Recommendations are derived from bus routes: deleting
// a bus removes the recommendations matching its (from, to) route.
//
// Fields:
//  ID        – primary key identifier.
//  FromCity  – suggested origin city.
//  ToCity    – suggested destination city.
//  ExamID    – exam the suggestion targets (nullable).
//  Note      – free-form display text.
//  CreatedAt – creation timestamp.
type Recommendation struct {
	ID        uint64    // recommendations.id
	FromCity  string    // recommendations.from_city
	ToCity    string    // recommendations.to_city
	ExamID    *uint64   // recommendations.exam_id (nullable)
	Note      string    // recommendations.note
	CreatedAt time.Time // recommendations.created_at
}
