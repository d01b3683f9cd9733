package service

import (
	"errors"
	"strings"

	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type StudentService struct {
	users   UserStore
	schools SchoolStore
	mailer  Mailer
	log     *zap.Logger
}

func NewStudentService(users UserStore, schools SchoolStore, mailer Mailer, log *zap.Logger) *StudentService {
	return &StudentService{users: users, schools: schools, mailer: mailer, log: log}
}

type StudentInput struct {
	Name         string
	Email        string
	SchoolID     uint // optional; must match the caller's school when set
	TotalFees    decimal.Decimal
	Months       int
	MonthPayment decimal.Decimal // zero means totalFees / months
}

func (s *StudentService) List(actorID uint, search string, page, limit int) ([]models.User, int64, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, 0, err
	}
	return s.users.ListStudents(schoolID, search, page, limit)
}

func (s *StudentService) Options(actorID uint) ([]models.User, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	return s.users.StudentOptions(schoolID)
}

func (s *StudentService) Get(actorID, id uint) (*models.User, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	st, err := s.users.GetByID(id)
	if err != nil || !st.IsStudent() {
		return nil, notFound("Student not found")
	}
	if !st.InSchool(schoolID) {
		return nil, forbidden("You are not allowed to access this student")
	}
	return st, nil
}

func (s *StudentService) Create(actorID uint, in StudentInput) (*models.User, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	if in.SchoolID != 0 && in.SchoolID != schoolID {
		return nil, forbidden("You can only add students to your own school")
	}
	if in.Months < 1 || in.Months > 12 {
		return nil, invalid("Months must be between 1 and 12")
	}
	if in.TotalFees.LessThan(decimal.NewFromInt(1)) {
		return nil, invalid("Total fees must be greater than 0")
	}
	email := normalizeEmail(in.Email)
	existing, err := s.users.GetByEmail(email)
	switch {
	case err == nil && !existing.InSchool(schoolID):
		return nil, conflict("Email is already registered with another school")
	case err == nil:
		return nil, conflict("Student with this email already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	monthPayment := in.MonthPayment
	if !monthPayment.IsPositive() {
		monthPayment = in.TotalFees.Div(decimal.NewFromInt(int64(in.Months))).Round(2)
	}
	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	creator := actorID
	st := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		SchoolID:     &schoolID,
		CreateID:     &creator,
		TotalFees:    in.TotalFees.Round(2),
		Months:       in.Months,
		MonthPayment: monthPayment,
		PaymentClear: decimal.Zero,
		IsVerified:   true,
	}
	if err := s.users.Create(st); err != nil {
		return nil, storeErr(err, "Student not found")
	}
	sendAccountDetails(s.mailer, s.schools, s.log, st, password)
	return st, nil
}

// Update renames a student and, when months is set, resets the months still owed.
// Zero months is valid for a fully paid student.
func (s *StudentService) Update(actorID, id uint, name string, months *int) (*models.User, error) {
	if months != nil && (*months < 0 || *months > 12) {
		return nil, invalid("Months must be between 0 and 12")
	}
	st, err := s.Get(actorID, id)
	if err != nil {
		return nil, err
	}
	st.Name = strings.TrimSpace(name)
	if months != nil {
		st.Months = *months
	}
	if err := s.users.Update(st); err != nil {
		return nil, storeErr(err, "Student not found")
	}
	return st, nil
}

func (s *StudentService) Delete(actorID, id uint) error {
	st, err := s.Get(actorID, id)
	if err != nil {
		return err
	}
	err = s.users.Delete(st.ID)
	if errors.Is(err, repository.ErrInUse) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return conflict("Student has orders and cannot be deleted")
	}
	return storeErr(err, "Student not found")
}
