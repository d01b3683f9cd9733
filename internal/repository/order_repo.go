package repository

import (
	"strings"

	"feeportal/internal/models"

	"gorm.io/gorm"
)

// orderSortColumns whitelists client sort keys.
var orderSortColumns = map[string]string{
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"gateway_name": "gateway_name",
	"gatewayName":  "gateway_name",
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

// GetByOrderID loads the order by its ORD- id, with the student joined.
func (r *OrderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	var o models.Order
	err := r.db.Preload("Student").Where("order_id = ?", orderID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) List(schoolID uint, search, sort string, page, limit int) ([]models.Order, int64, error) {
	q := r.db.Model(&models.Order{}).Where("school_id = ?", schoolID)
	if search != "" {
		q = q.Where("LOWER(gateway_name) LIKE ? ESCAPE '!'", likePattern(search))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	err := q.Order(orderClause(sort)).Scopes(paginate(page, limit)).Find(&orders).Error
	return orders, total, err
}

// orderClause turns "-createdAt" style keys into an ORDER BY clause.
func orderClause(sort string) string {
	dir := "ASC"
	key := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		key = sort[1:]
	}
	col, ok := orderSortColumns[key]
	if !ok {
		return "created_at DESC"
	}
	return col + " " + dir
}
