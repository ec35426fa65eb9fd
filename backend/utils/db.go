package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"coursehub/backend/config"
	"coursehub/backend/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserProfile{},
		&models.EmailVerificationToken{},
		&models.PasswordResetToken{},
		&models.Category{},
		&models.Course{},
		&models.CourseModule{},
		&models.Lesson{},
		&models.CourseEnrollment{},
		&models.LessonProgress{},
		&models.CourseReview{},
	)
}

// SeedRoles makes sure the three built-in roles exist.
func SeedRoles(db *gorm.DB) error {
	for _, name := range []string{models.RoleAdmin, models.RoleTeacher, models.RoleStudent} {
		var role models.Role
		if err := db.Where("name = ?", name).First(&role).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := db.Create(&models.Role{Name: name, Active: true}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
