// Package access holds the visibility and permission rules for the course
// tree as pure decision functions. Handlers load the rows and the enrollment
// state, the gate only branches on them.
package access

import (
	"errors"

	"coursehub/backend/models"
)

var (
	ErrAuthRequired     = errors.New("authentication required")
	ErrAccessDenied     = errors.New("access denied")
	ErrPermissionDenied = errors.New("permission denied")
)

// Actor is the caller identity resolved once per request.
type Actor struct {
	Authenticated bool
	UserID        uint
	Role          string
	IsStaff       bool
}

func (a Actor) isOwner(teacherID uint) bool {
	return a.Authenticated && a.UserID == teacherID
}

// CanViewCourse gates course detail reads. Unpublished courses are visible to
// the owning teacher only; handlers surface the denial as 404 to hide that
// the course exists at all.
func CanViewCourse(actor Actor, course *models.Course) error {
	if course.IsPublished {
		return nil
	}
	if actor.isOwner(course.TeacherID) {
		return nil
	}
	if !actor.Authenticated {
		return ErrAuthRequired
	}
	return ErrAccessDenied
}

// CanViewModule gates module reads. An active enrollment is a standing
// entitlement: it is checked against the module publish flag only, never
// re-checked against the parent course's publish flag.
func CanViewModule(actor Actor, course *models.Course, module *models.CourseModule, enrolled bool) error {
	if actor.isOwner(course.TeacherID) {
		return nil
	}
	if enrolled && module.IsPublished {
		return nil
	}
	if course.IsPublished && module.IsPublished {
		return nil
	}
	if !actor.Authenticated {
		return ErrAuthRequired
	}
	return ErrAccessDenied
}

// CanViewLesson gates lesson detail reads, content included. Lesson content
// is enrollment-gated; a free-preview lesson with a fully published ancestor
// chain is readable by anyone, enrollment or not.
func CanViewLesson(actor Actor, course *models.Course, module *models.CourseModule, lesson *models.Lesson, enrolled bool) error {
	if actor.isOwner(course.TeacherID) {
		return nil
	}
	if enrolled && module.IsPublished && lesson.IsPublished {
		return nil
	}
	if lesson.IsFreePreview && course.IsPublished && module.IsPublished && lesson.IsPublished {
		return nil
	}
	if !actor.Authenticated {
		return ErrAuthRequired
	}
	return ErrAccessDenied
}

// CanCreateCourse allows only callers with the Teacher role to create courses.
func CanCreateCourse(actor Actor) error {
	if !actor.Authenticated {
		return ErrAuthRequired
	}
	if actor.Role != models.RoleTeacher {
		return ErrPermissionDenied
	}
	return nil
}

// CanModifyCourseTree allows create/update/delete anywhere in a course's tree
// to the owning teacher only.
func CanModifyCourseTree(actor Actor, course *models.Course) error {
	if !actor.Authenticated {
		return ErrAuthRequired
	}
	if !actor.isOwner(course.TeacherID) {
		return ErrPermissionDenied
	}
	return nil
}
