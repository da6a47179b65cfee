package domain

import (
	"strings"
	"time"
)

// DegreeTypeDual is the only degree type that may carry more than one enrollment.
const DegreeTypeDual = "DUAL"

// CourseEnrollment is one course plus its year span. It has no identity outside its Student.
type CourseEnrollment struct {
	CourseName string `json:"course_name" bson:"course_name"`
	StartYear  *int   `json:"start_year" bson:"start_year"`
	EndYear    *int   `json:"end_year" bson:"end_year"`
	Primary    bool   `json:"primary" bson:"primary"`
	// Active is set when the enrollment is created and is not re-derived afterwards.
	Active bool `json:"active" bson:"active"`
}

// Student is an academic record. Course and AcademicYear mirror the primary enrollment.
type Student struct {
	ID                  string             `json:"id" bson:"-"`
	FirstName           string             `json:"first_name" bson:"first_name"`
	LastName            string             `json:"last_name" bson:"last_name"`
	Email               string             `json:"email" bson:"email"`
	DegreeType          string             `json:"degree_type" bson:"degree_type"`
	DegreeDurationYears *int               `json:"degree_duration_years,omitempty" bson:"degree_duration_years,omitempty"`
	Course              string             `json:"course" bson:"course"`
	AcademicYear        string             `json:"academic_year" bson:"academic_year"`
	Courses             []CourseEnrollment `json:"courses" bson:"courses"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsDualDegree reports whether the degree type allows several enrollments.
func (s *Student) IsDualDegree() bool {
	return strings.EqualFold(s.DegreeType, DegreeTypeDual)
}

// DisplayName joins first and last name for the portal account.
func (s *Student) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// HasEmail reports whether the record can be linked to a portal account.
func (s *Student) HasEmail() bool {
	return strings.TrimSpace(s.Email) != ""
}
