package handler

import "time"

// --- Request / Response types ---

type courseEnrollmentRequest struct {
	CourseName string `json:"course_name"`
	StartYear  *int   `json:"start_year"`
	EndYear    *int   `json:"end_year"`
	Primary    bool   `json:"primary"`
	Active     *bool  `json:"active"`
}

type studentRequest struct {
	FirstName           string                    `json:"first_name"  validate:"required,max=100"`
	LastName            string                    `json:"last_name"   validate:"required,max=100"`
	Email               string                    `json:"email"       validate:"omitempty,email"`
	DegreeType          string                    `json:"degree_type"`
	DegreeDurationYears *int                      `json:"degree_duration_years"`
	Courses             []courseEnrollmentRequest `json:"courses"`
}

type batchStudentRequest struct {
	Students []studentRequest `json:"students" validate:"required,min=1,dive"`
}

type courseEnrollmentResponse struct {
	CourseName string `json:"course_name"`
	StartYear  *int   `json:"start_year"`
	EndYear    *int   `json:"end_year"`
	Primary    bool   `json:"primary"`
	Active     bool   `json:"active"`
}

type studentLinks struct {
	Self string `json:"self"`
}

type studentResponse struct {
	ID                  string                     `json:"id"`
	FirstName           string                     `json:"first_name"`
	LastName            string                     `json:"last_name"`
	Email               string                     `json:"email"`
	DegreeType          string                     `json:"degree_type"`
	DegreeDurationYears *int                       `json:"degree_duration_years,omitempty"`
	Course              string                     `json:"course"`
	AcademicYear        string                     `json:"academic_year"`
	Courses             []courseEnrollmentResponse `json:"courses"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
	Links               studentLinks               `json:"_links"`
}

type studentListResponse struct {
	Students []studentResponse `json:"students"`
	Total    int               `json:"total"`
}
