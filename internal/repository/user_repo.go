package repository

import (
	"feeportal/internal/domain"
	"feeportal/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByResetToken(token string) (*models.User, error) {
	var u models.User
	err := r.db.Where("reset_password_token = ?", token).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update writes every column, conditional on the version the caller read.
func (r *UserRepository) Update(u *models.User) error {
	prev := u.Version
	u.Version = prev + 1
	res := r.db.Model(u).Where("version = ?", prev).Select("*").Omit("id", "created_at").Updates(u)
	if res.Error != nil {
		u.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		u.Version = prev
		return ErrStaleVersion
	}
	return nil
}

// Delete removes a user that no order references.
func (r *UserRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&models.Order{}).Where("student_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrInUse
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListTeachers returns teachers provisioned by creatorID.
func (r *UserRepository) ListTeachers(creatorID uint, search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{}).Where("role = ? AND create_id = ?", domain.RoleTeacher, creatorID)
	return r.list(q, search, page, limit)
}

// ListStudents returns students of a school.
func (r *UserRepository) ListStudents(schoolID uint, search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{}).Where("role = ? AND school_id = ?", domain.RoleStudent, schoolID)
	return r.list(q, search, page, limit)
}

func (r *UserRepository) list(q *gorm.DB, search string, page, limit int) ([]models.User, int64, error) {
	if search != "" {
		p := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", p, p)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Scopes(paginate(page, limit)).Find(&users).Error
	return users, total, err
}

// StudentOptions returns id, name and email of every student in a school.
func (r *UserRepository) StudentOptions(schoolID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Select("id", "name", "email").
		Where("role = ? AND school_id = ?", domain.RoleStudent, schoolID).
		Order("name ASC").
		Find(&users).Error
	return users, err
}
