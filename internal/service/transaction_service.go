package service

import (
	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/internal/repository"
)

const maxExportRows = 10000

type TransactionService struct {
	statuses OrderStatusStore
	users    UserStore
	schools  SchoolStore
}

func NewTransactionService(statuses OrderStatusStore, users UserStore, schools SchoolStore) *TransactionService {
	return &TransactionService{statuses: statuses, users: users, schools: schools}
}

type TransactionQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
}

type TransactionPage struct {
	Transactions []models.OrderStatus `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}

// List returns one page of the caller's school transactions, newest payment first.
func (s *TransactionService) List(actorID uint, q TransactionQuery) (*TransactionPage, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	page, limit := domain.NormalizePage(q.Page, q.Limit)
	rows, total, err := s.statuses.List(repository.TxFilter{
		SchoolID: schoolID,
		Search:   q.Search,
		Status:   q.Status,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.OrderStatus{}
	}
	return &TransactionPage{Transactions: rows, Total: total, Page: page, Limit: limit}, nil
}

func (s *TransactionService) Summary(actorID uint) ([]models.StatusTotal, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	totals, err := s.statuses.Summary(schoolID)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []models.StatusTotal{}
	}
	return totals, nil
}

// Export returns every matching row, capped at maxExportRows.
func (s *TransactionService) Export(actorID uint, q TransactionQuery) ([]models.OrderStatus, error) {
	_, schoolID, err := actorSchool(s.users, actorID)
	if err != nil {
		return nil, err
	}
	return s.statuses.ListAll(repository.TxFilter{
		SchoolID: schoolID,
		Search:   q.Search,
		Status:   q.Status,
	}, maxExportRows)
}

// Receipt loads one transaction and the school that issued it.
func (s *TransactionService) Receipt(actorID uint, orderID string) (*models.OrderStatus, *models.School, error) {
	actor, err := loadActor(s.users, actorID)
	if err != nil {
		return nil, nil, err
	}
	row, err := s.statuses.GetByOrderID(orderID)
	if err != nil {
		return nil, nil, storeErr(err, "Transaction not found")
	}
	schoolID := row.SchoolID
	if err := canAccessStudent(actor, row.StudentInfo.StudentID, &schoolID); err != nil {
		return nil, nil, err
	}
	school, err := s.schools.GetByID(row.SchoolID)
	if err != nil {
		return nil, nil, storeErr(err, "School not found")
	}
	return row, school, nil
}
