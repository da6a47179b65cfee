package handler

import (
	"github.com/campusportal/student-records/internal/core/domain"
)

// --- Request → domain ---

// toStudent maps a request body to a domain record. An enrollment without an explicit
// active flag is active when it has not ended before currentYear.
func toStudent(req studentRequest, currentYear int) *domain.Student {
	courses := make([]domain.CourseEnrollment, 0, len(req.Courses))
	for _, c := range req.Courses {
		active := c.EndYear == nil || currentYear <= *c.EndYear
		if c.Active != nil {
			active = *c.Active
		}
		courses = append(courses, domain.CourseEnrollment{
			CourseName: c.CourseName,
			StartYear:  c.StartYear,
			EndYear:    c.EndYear,
			Primary:    c.Primary,
			Active:     active,
		})
	}

	return &domain.Student{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		DegreeType:          req.DegreeType,
		DegreeDurationYears: req.DegreeDurationYears,
		Courses:             courses,
	}
}

// --- domain → HTTP response ---

func toStudentResponse(s *domain.Student) studentResponse {
	courses := make([]courseEnrollmentResponse, 0, len(s.Courses))
	for _, c := range s.Courses {
		courses = append(courses, courseEnrollmentResponse{
			CourseName: c.CourseName,
			StartYear:  c.StartYear,
			EndYear:    c.EndYear,
			Primary:    c.Primary,
			Active:     c.Active,
		})
	}

	return studentResponse{
		ID:                  s.ID,
		FirstName:           s.FirstName,
		LastName:            s.LastName,
		Email:               s.Email,
		DegreeType:          s.DegreeType,
		DegreeDurationYears: s.DegreeDurationYears,
		Course:              s.Course,
		AcademicYear:        s.AcademicYear,
		Courses:             courses,
		CreatedAt:           s.CreatedAt.UTC(),
		UpdatedAt:           s.UpdatedAt.UTC(),
		Links:               studentLinks{Self: "/v1/students/" + s.ID},
	}
}

func toStudentListResponse(students []*domain.Student) studentListResponse {
	out := make([]studentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentResponse(s))
	}
	return studentListResponse{Students: out, Total: len(out)}
}
