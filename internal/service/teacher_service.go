package service

import (
	"errors"
	"strings"

	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/pkg/mail"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const generatedPasswordLength = 8

type TeacherService struct {
	users   UserStore
	schools SchoolStore
	mailer  Mailer
	log     *zap.Logger
}

func NewTeacherService(users UserStore, schools SchoolStore, mailer Mailer, log *zap.Logger) *TeacherService {
	return &TeacherService{users: users, schools: schools, mailer: mailer, log: log}
}

func (s *TeacherService) List(adminID uint, search string, page, limit int) ([]models.User, int64, error) {
	return s.users.ListTeachers(adminID, search, page, limit)
}

func (s *TeacherService) Get(adminID, id uint) (*models.User, error) {
	t, err := s.users.GetByID(id)
	if err != nil || !t.IsTeacher() {
		return nil, notFound("Teacher not found")
	}
	if !t.CreatedBy(adminID) {
		return nil, forbidden("You are not allowed to access this teacher")
	}
	return t, nil
}

// Create provisions a verified teacher in the admin's school and mails the credentials.
func (s *TeacherService) Create(adminID uint, name, email string) (*models.User, error) {
	_, schoolID, err := actorSchool(s.users, adminID)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, conflict("Teacher with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	creator := adminID
	t := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleTeacher,
		SchoolID:     &schoolID,
		CreateID:     &creator,
		IsVerified:   true,
	}
	if err := s.users.Create(t); err != nil {
		return nil, storeErr(err, "Teacher not found")
	}
	sendAccountDetails(s.mailer, s.schools, s.log, t, password)
	return t, nil
}

func (s *TeacherService) Update(adminID, id uint, name string) (*models.User, error) {
	t, err := s.Get(adminID, id)
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(name)
	if err := s.users.Update(t); err != nil {
		return nil, storeErr(err, "Teacher not found")
	}
	return t, nil
}

func (s *TeacherService) Delete(adminID, id uint) error {
	t, err := s.Get(adminID, id)
	if err != nil {
		return err
	}
	return storeErr(s.users.Delete(t.ID), "Teacher not found")
}

// sendAccountDetails mails new credentials. Failures are logged, never returned.
func sendAccountDetails(mailer Mailer, schools SchoolStore, log *zap.Logger, u *models.User, password string) {
	d := mail.AccountDetails{
		Name:     u.Name,
		Email:    u.Email,
		Password: password,
		Role:     u.Role,
	}
	if u.SchoolID != nil {
		if school, err := schools.GetByID(*u.SchoolID); err == nil {
			d.SchoolName = school.SchoolName
			d.CurrentSession = school.SessionStart
			d.SessionEndDate = school.SessionEnd
		}
	}
	if err := mailer.SendAccountDetails(d); err != nil {
		log.Warn("[mail] account details not delivered",
			zap.Uint("user_id", u.ID),
			zap.String("email", u.Email),
			zap.Error(err))
	}
}
