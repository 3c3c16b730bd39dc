package model

import "time"

// Exam is an examination buses can be tagged with so candidates can
// find services running to their exam centre on the right date.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – exam name, unique.
//  ExamDate  – date of the exam (YYYY-MM-DD).
//  CityID    – city hosting the exam centre (nullable).
//  CreatedAt – creation timestamp.
type Exam struct {
	ID        uint64    // exams.id
	Name      string    // exams.name
	ExamDate  string    // exams.exam_date
	CityID    *uint64   // exams.city_id (nullable)
	CreatedAt time.Time // exams.created_at
}
