package repository

import (
	"feeportal/internal/models"

	"gorm.io/gorm"
)

type SchoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (r *SchoolRepository) Create(s *models.School) error {
	return r.db.Create(s).Error
}

func (r *SchoolRepository) GetByID(id uint) (*models.School, error) {
	var s models.School
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SchoolRepository) GetByAdminID(adminID uint) (*models.School, error) {
	var s models.School
	if err := r.db.Where("admin_id = ?", adminID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SchoolRepository) Update(s *models.School) error {
	return r.db.Save(s).Error
}

// CreateForAdmin inserts the school and links the admin to it atomically.
func (r *SchoolRepository) CreateForAdmin(s *models.School) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", s.AdminID).
			Updates(map[string]any{"school_id": s.ID, "version": gorm.Expr("version + 1")}).Error
	})
}
