package service

import (
	"errors"
	"strings"
	"time"

	"feeportal/internal/models"

	"gorm.io/gorm"
)

// Default profile created the first time an admin opens their school.
const (
	defaultSchoolName    = "School Name"
	defaultSchoolAddress = "India"
	defaultSchoolPhone   = "+91 000 000 0000"
)

var (
	defaultSessionStart = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	defaultSessionEnd   = time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
)

type SchoolService struct {
	schools SchoolStore
	users   UserStore
}

func NewSchoolService(schools SchoolStore, users UserStore) *SchoolService {
	return &SchoolService{schools: schools, users: users}
}

// SchoolUpdate holds optional fields; nil means unchanged.
type SchoolUpdate struct {
	SchoolName   *string    `json:"schoolName"`
	Address      *string    `json:"address"`
	Phone        *string    `json:"phone"`
	SessionStart *time.Time `json:"sessionStart"`
	SessionEnd   *time.Time `json:"sessionEnd"`
}

// GetOrCreate returns the admin's school, creating the default profile on first access.
func (s *SchoolService) GetOrCreate(adminID uint) (*models.School, error) {
	school, err := s.schools.GetByAdminID(adminID)
	if err == nil {
		return school, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	school = &models.School{
		SchoolName:   defaultSchoolName,
		Address:      defaultSchoolAddress,
		Phone:        defaultSchoolPhone,
		SessionStart: defaultSessionStart,
		SessionEnd:   defaultSessionEnd,
		AdminID:      adminID,
	}
	if err := s.schools.CreateForAdmin(school); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// created by a concurrent request
			existing, gerr := s.schools.GetByAdminID(adminID)
			return existing, storeErr(gerr, "School not found")
		}
		return nil, err
	}
	return school, nil
}

// Options lists the schools the caller may pick from: their own.
func (s *SchoolService) Options(actorID uint) ([]models.SchoolOption, error) {
	u, err := loadActor(s.users, actorID)
	if err != nil {
		return nil, err
	}
	var school *models.School
	switch {
	case u.IsAdmin():
		school, err = s.schools.GetByAdminID(u.ID)
	case u.SchoolID != nil:
		school, err = s.schools.GetByID(*u.SchoolID)
	default:
		return []models.SchoolOption{}, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.SchoolOption{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.SchoolOption{{ID: school.ID, SchoolName: school.SchoolName}}, nil
}

// UpdateOwn applies a partial update to the admin's school.
func (s *SchoolService) UpdateOwn(adminID uint, in SchoolUpdate) (*models.School, error) {
	school, err := s.GetOrCreate(adminID)
	if err != nil {
		return nil, err
	}
	return s.apply(school, in)
}

// Update applies a partial update to school id, which the admin must own.
func (s *SchoolService) Update(adminID, schoolID uint, in SchoolUpdate) (*models.School, error) {
	school, err := s.schools.GetByID(schoolID)
	if err != nil {
		return nil, storeErr(err, "School not found")
	}
	if school.AdminID != adminID {
		return nil, forbidden("You are not allowed to update this school")
	}
	return s.apply(school, in)
}

func (s *SchoolService) apply(school *models.School, in SchoolUpdate) (*models.School, error) {
	if in.SchoolName != nil {
		name := strings.TrimSpace(*in.SchoolName)
		if name == "" {
			return nil, invalid("School name should not be empty")
		}
		school.SchoolName = name
	}
	if in.Address != nil {
		school.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		school.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.SessionStart != nil {
		school.SessionStart = *in.SessionStart
	}
	if in.SessionEnd != nil {
		school.SessionEnd = *in.SessionEnd
	}
	if !school.SessionEnd.After(school.SessionStart) {
		return nil, invalid("Session end must be after session start")
	}
	if err := s.schools.Update(school); err != nil {
		return nil, err
	}
	return school, nil
}
