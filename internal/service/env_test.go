package service

import (
	"strings"
	"time"

	"feeportal/config"
	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/internal/storetest"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// env wires every service against in-memory stores.
type env struct {
	cfg       *config.Config
	users     *storetest.Users
	schools   *storetest.Schools
	orders    *storetest.Orders
	statuses  *storetest.Statuses
	logs      *storetest.WebhookLogs
	mailer    *storetest.Mailer
	publisher *storetest.Publisher
	log       *zap.Logger
}

func newEnv() *env {
	users := storetest.NewUsers()
	return &env{
		cfg: &config.Config{
			JWT: config.JWTConfig{
				AccessSecret:  "access-secret",
				RefreshSecret: "refresh-secret",
				AccessExpiry:  30 * time.Minute,
				RefreshExpiry: 168 * time.Hour,
				Issuer:        "feeportal-test",
			},
			URLs: config.URLConfig{
				FrontendURL: "http://front.test",
				BackendURL:  "http://back.test",
			},
			Reconcile: config.ReconcileConfig{
				After:         15 * time.Minute,
				PaymentExpiry: 24 * time.Hour,
			},
		},
		users:     users,
		schools:   storetest.NewSchools(users),
		orders:    storetest.NewOrders(users),
		statuses:  storetest.NewStatuses(users),
		logs:      storetest.NewWebhookLogs(),
		mailer:    &storetest.Mailer{},
		publisher: &storetest.Publisher{},
		log:       zap.NewNop(),
	}
}

func (e *env) reconciler() *Reconciler {
	return NewReconciler(e.statuses, e.mailer, e.publisher, e.log)
}

// seedAdmin creates a verified admin with a school and returns both ids.
func (e *env) seedAdmin(email string) (uint, uint) {
	admin := &models.User{Name: "Admin", Email: email, Role: domain.RoleAdmin, IsVerified: true}
	if err := e.users.Create(admin); err != nil {
		panic(err)
	}
	school, err := NewSchoolService(e.schools, e.users).GetOrCreate(admin.ID)
	if err != nil {
		panic(err)
	}
	return admin.ID, school.ID
}

func (e *env) seedUser(role, email string, schoolID uint) *models.User {
	sid := schoolID
	u := &models.User{
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		Role:         role,
		SchoolID:     &sid,
		IsVerified:   true,
		TotalFees:    decimal.NewFromInt(12000),
		Months:       12,
		MonthPayment: decimal.NewFromInt(1000),
	}
	if err := e.users.Create(u); err != nil {
		panic(err)
	}
	return u
}
