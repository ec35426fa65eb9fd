package utils

import (
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"coursehub/backend/models"
)

// Slugify lowercases the title and collapses every non-alphanumeric run
// into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	prevHyphen := true // trim leading hyphens
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevHyphen = false
		} else if !prevHyphen {
			b.WriteByte('-')
			prevHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// UniqueCourseSlug derives a slug from the title and disambiguates
// collisions with a numeric suffix: intro-to-python, intro-to-python-1, ...
func UniqueCourseSlug(db *gorm.DB, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "course"
	}

	slug := base
	for counter := 1; ; counter++ {
		var count int64
		if err := db.Model(&models.Course{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
