package domain

import "time"

// Subject is a course offered by a department. It is a plain CRUD entity
// managed through the generic repository; soft deletion marks the record as
// deleted rather than removing it, and reads skip tombstoned records.
type Subject struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	NeptunCode  string    `json:"neptun_code" bson:"neptun_code"`
	Credits     int       `json:"credits" bson:"credits"`
	Department  string    `json:"department" bson:"department"`
	TeacherName string    `json:"teacher_name" bson:"teacher_name"`
	Deleted     bool      `json:"deleted,omitempty" bson:"deleted"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
