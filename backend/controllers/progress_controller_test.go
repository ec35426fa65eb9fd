package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/backend/models"
)

// builds a published course with two modules of two lessons each and returns
// the course ID with the lesson IDs in order.
func buildCourseTree(t *testing.T, teacherToken string) (uint, []uint) {
	t.Helper()

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        fmt.Sprintf("Progress Course %d", userSeq),
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))

	var lessonIDs []uint
	for m := 0; m < 2; m++ {
		moduleID := addModule(t, teacherToken, courseID, true)
		for l := 0; l < 2; l++ {
			lessonIDs = append(lessonIDs, addLesson(t, teacherToken, moduleID, true, false))
		}
	}
	return courseID, lessonIDs
}

func completeLesson(t *testing.T, studentToken string, lessonID uint) map[string]interface{} {
	t.Helper()
	resp := doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, map[string]interface{}{
		"is_completed": true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return decodeBody(t, resp)
}

func TestProgressRequiresActiveEnrollment(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, studentToken := registerUser(t, models.RoleStudent)

	_, lessonIDs := buildCourseTree(t, teacherToken)

	resp := doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonIDs[0]), studentToken, map[string]interface{}{
		"is_completed": true,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "You must be enrolled to access this lesson", body["message"])
}

func TestProgressAggregation(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	studentID, studentToken := registerUser(t, models.RoleStudent)

	courseID, lessonIDs := buildCourseTree(t, teacherToken)
	enroll(t, studentToken, courseID)

	// 1 of 4 lessons
	body := completeLesson(t, studentToken, lessonIDs[0])
	enrollment := body["enrollment"].(map[string]interface{})
	assert.Equal(t, 25.0, enrollment["ProgressPercentage"])
	assert.Equal(t, models.EnrollmentEnrolled, enrollment["Status"])

	// 3 of 4 lessons
	completeLesson(t, studentToken, lessonIDs[1])
	body = completeLesson(t, studentToken, lessonIDs[2])
	enrollment = body["enrollment"].(map[string]interface{})
	assert.Equal(t, 75.0, enrollment["ProgressPercentage"])

	// all lessons: enrollment flips to completed with a timestamp
	completeLesson(t, studentToken, lessonIDs[3])

	stored := enrollmentFor(t, studentID, courseID)
	assert.Equal(t, 100.0, stored.ProgressPercentage)
	assert.Equal(t, models.EnrollmentCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}

func TestProgressFractionalRounding(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, studentToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        fmt.Sprintf("Thirds Course %d", userSeq),
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))
	moduleID := addModule(t, teacherToken, courseID, true)

	var lessonIDs []uint
	for i := 0; i < 3; i++ {
		lessonIDs = append(lessonIDs, addLesson(t, teacherToken, moduleID, true, false))
	}

	enroll(t, studentToken, courseID)

	body := completeLesson(t, studentToken, lessonIDs[0])
	enrollment := body["enrollment"].(map[string]interface{})
	assert.Equal(t, 33.33, enrollment["ProgressPercentage"])
}

func TestProgressTimeAccumulatesAndCompletionIsIdempotent(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	studentID, studentToken := registerUser(t, models.RoleStudent)

	courseID, lessonIDs := buildCourseTree(t, teacherToken)
	enroll(t, studentToken, courseID)

	resp := doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonIDs[0]), studentToken, map[string]interface{}{
		"time_spent_minutes":    10,
		"completion_percentage": 40,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonIDs[0]), studentToken, map[string]interface{}{
		"time_spent_minutes": 15,
		"is_completed":       true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var progress models.LessonProgress
	require.NoError(t, db.Where("student_id = ? AND lesson_id = ?", studentID, lessonIDs[0]).First(&progress).Error)
	assert.EqualValues(t, 25, progress.TimeSpentMinutes)
	assert.True(t, progress.IsCompleted)
	require.NotNil(t, progress.CompletedAt)
	firstCompletedAt := *progress.CompletedAt

	// repeating the completion does not move the timestamp
	resp = doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonIDs[0]), studentToken, map[string]interface{}{
		"is_completed": true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("student_id = ? AND lesson_id = ?", studentID, lessonIDs[0]).First(&progress).Error)
	assert.Equal(t, firstCompletedAt.Unix(), progress.CompletedAt.Unix())

	var count int64
	db.Model(&models.LessonProgress{}).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonIDs[0]).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestProgressValidation(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	_, studentToken := registerUser(t, models.RoleStudent)

	courseID, lessonIDs := buildCourseTree(t, teacherToken)
	enroll(t, studentToken, courseID)

	resp := doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonIDs[0]), studentToken, map[string]interface{}{
		"completion_percentage": 150,
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProgressShiftsWhenLessonsAreAdded(t *testing.T) {
	_, teacherToken := registerUser(t, models.RoleTeacher)
	studentID, studentToken := registerUser(t, models.RoleStudent)

	course := createCourse(t, teacherToken, map[string]interface{}{
		"title":        fmt.Sprintf("Growing Course %d", userSeq),
		"is_published": true,
	})
	courseID := uint(course["id"].(float64))
	moduleID := addModule(t, teacherToken, courseID, true)
	first := addLesson(t, teacherToken, moduleID, true, false)

	enroll(t, studentToken, courseID)
	completeLesson(t, studentToken, first)

	stored := enrollmentFor(t, studentID, courseID)
	assert.Equal(t, 100.0, stored.ProgressPercentage)
	assert.Equal(t, models.EnrollmentCompleted, stored.Status)

	// a new lesson dilutes the percentage on the next recompute, but the
	// completed status does not roll back
	second := addLesson(t, teacherToken, moduleID, true, false)
	resp := doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", second), studentToken, map[string]interface{}{
		"time_spent_minutes": 5,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored = enrollmentFor(t, studentID, courseID)
	assert.Equal(t, 50.0, stored.ProgressPercentage)
	assert.Equal(t, models.EnrollmentCompleted, stored.Status)
}
