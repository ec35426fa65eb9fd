package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/backend/models"
)

func TestEnrollStudentOnly(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, otherTeacherToken := registerUser(t, models.RoleTeacher)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        "Enrollable Course",
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))

	resp := doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), otherTeacherToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Only students can enroll in courses", body["message"])
}

func TestEnrollUnpublishedCourseHidden(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, studentToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title": "Unpublished Enroll Target",
	})
	courseID := uint(course["id"].(float64))

	resp := doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEnrollDuplicate(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	studentID, studentToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        "Single Enrollment Course",
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))

	enroll(t, studentToken, courseID)

	resp := doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), studentToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Already enrolled in this course", body["message"])

	var count int64
	db.Model(&models.CourseEnrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestEnrollCapacity(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, firstToken := registerUser(t, models.RoleStudent)
	_, secondToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        "Tiny Course",
		"is_published": true,
		"max_students": 1,
	})
	courseID := uint(course["id"].(float64))

	enroll(t, firstToken, courseID)

	resp := doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), secondToken, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Course is full", body["message"])
}

func TestUnenrollKeepsRowAndReenrollReactivates(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	studentID, studentToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        "Revolving Door Course",
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))

	enroll(t, studentToken, courseID)

	resp := doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/unenroll", courseID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	enrollment := enrollmentFor(t, studentID, courseID)
	assert.Equal(t, models.EnrollmentDropped, enrollment.Status)
	assert.False(t, enrollment.IsActive)

	// re-enrolling flips the same row back instead of creating a second one
	resp = doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Re-enrolled in course", body["message"])

	enrollment = enrollmentFor(t, studentID, courseID)
	assert.Equal(t, models.EnrollmentEnrolled, enrollment.Status)
	assert.True(t, enrollment.IsActive)

	var count int64
	db.Model(&models.CourseEnrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUnenrollWithoutEnrollment(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, studentToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        "Never Joined Course",
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))

	resp := doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/unenroll", courseID), studentToken, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Not enrolled in this course", body["message"])
}
