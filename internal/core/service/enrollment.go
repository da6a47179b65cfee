package service

import (
	"fmt"
	"strings"

	"github.com/campusportal/student-records/internal/core/domain"
)

// Validation codes reported by NormalizeStudent.
const (
	CodeDegreeTypeRequired  = "degree_type_required"
	CodeDurationInvalid     = "degree_duration_invalid"
	CodeCoursesRequired     = "courses_required"
	CodeAdditionalCourses   = "additional_courses_not_allowed"
	CodeCourseNameRequired  = "course_name_required"
	CodeCourseYearsRequired = "course_years_required"
	CodeCourseYearsInvalid  = "course_years_invalid"
	CodeCourseSpanExceeded  = "course_span_exceeded"
)

// NormalizeStudent validates a student's enrollments and canonicalizes them in place:
// names and degree type are trimmed, exactly one enrollment is marked primary, and the
// denormalized Course and AcademicYear fields are copied from the primary enrollment.
//
// When several enrollments arrive flagged primary, the last one wins.
// Active flags are left untouched. The function performs no I/O.
func NormalizeStudent(s *domain.Student) error {
	degreeType := strings.TrimSpace(s.DegreeType)
	if degreeType == "" {
		return domain.NewValidationError(CodeDegreeTypeRequired, "degree type is required")
	}
	s.DegreeType = degreeType

	if s.DegreeDurationYears != nil && *s.DegreeDurationYears <= 0 {
		return domain.NewValidationError(CodeDurationInvalid, "degree duration must be greater than zero")
	}

	if len(s.Courses) == 0 {
		return domain.NewValidationError(CodeCoursesRequired, "at least one course enrollment is required")
	}

	if !s.IsDualDegree() && len(s.Courses) > 1 {
		return domain.NewValidationError(CodeAdditionalCourses, "additional courses are allowed only for Dual Degree students")
	}

	primary := -1
	flagged := false
	minStart, maxEnd := 0, 0

	for i := range s.Courses {
		c := &s.Courses[i]

		name := strings.TrimSpace(c.CourseName)
		if name == "" {
			return domain.NewValidationError(CodeCourseNameRequired, "course name is required")
		}
		c.CourseName = name

		if c.StartYear == nil || c.EndYear == nil {
			return domain.NewValidationError(CodeCourseYearsRequired, "course start and end year are required")
		}
		if *c.EndYear <= *c.StartYear {
			return domain.NewValidationError(CodeCourseYearsInvalid, "course end year must be after start year")
		}

		if primary < 0 || c.Primary {
			primary = i
		}
		if c.Primary {
			flagged = true
		}

		if i == 0 || *c.StartYear < minStart {
			minStart = *c.StartYear
		}
		if i == 0 || *c.EndYear > maxEnd {
			maxEnd = *c.EndYear
		}
	}

	if flagged {
		for i := range s.Courses {
			s.Courses[i].Primary = i == primary
		}
	} else {
		s.Courses[0].Primary = true
	}

	if s.DegreeDurationYears != nil && maxEnd-minStart > *s.DegreeDurationYears {
		return domain.NewValidationError(CodeCourseSpanExceeded, "course span exceeds degree duration")
	}

	p := s.Courses[primary]
	s.Course = p.CourseName
	s.AcademicYear = fmt.Sprintf("%d-%d", *p.StartYear, *p.EndYear)
	return nil
}
