package repository

import (
	"fmt"
	"testing"
	"time"

	"feeportal/internal/database"
	"feeportal/internal/domain"
	"feeportal/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the production schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role, email string, schoolID *uint) *models.User {
	t.Helper()
	u := &models.User{
		Name:         email,
		Email:        email,
		Role:         role,
		SchoolID:     schoolID,
		TotalFees:    decimal.NewFromInt(12000),
		Months:       12,
		MonthPayment: decimal.NewFromInt(1000),
	}
	require.NoError(t, NewUserRepository(db).Create(u))
	return u
}

func seedStatus(t *testing.T, db *gorm.DB, orderID string, st *models.User, schoolID uint, at time.Time) *models.OrderStatus {
	t.Helper()
	s := &models.OrderStatus{
		CollectID:      1,
		OrderID:        orderID,
		OrderAmount:    decimal.NewFromInt(1000),
		PaymentMessage: "Payment Pending",
		Status:         domain.TxStatusPending,
		PaymentTime:    at,
		StudentInfo:    models.StudentInfo{StudentID: st.ID, Name: st.Name, Email: st.Email},
		SchoolID:       schoolID,
	}
	require.NoError(t, NewOrderStatusRepository(db).Create(s))
	return s
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%asha%", likePattern("  Asha "))
	assert.Equal(t, "%100!%!_off!!%", likePattern("100%_OFF!"))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause("-createdAt"))
	assert.Equal(t, "gateway_name ASC", orderClause("gatewayName"))
	assert.Equal(t, "created_at DESC", orderClause("password_hash"))
	assert.Equal(t, "created_at DESC", orderClause(""))
}

func TestApplyTransitionCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	school := uint(1)
	st := seedUser(t, db, domain.RoleStudent, "kid@example.com", &school)
	repo := NewOrderStatusRepository(db)
	row := seedStatus(t, db, "ORD-1", st, school, time.Now().UTC())
	assert.Equal(t, 1, row.Version)

	stale := *row
	row.Status = domain.TxStatusSuccess
	row.TransactionAmount = decimal.NewFromInt(1000)
	row.BankReference = "BR-1"
	row.CFOrderID = "cf_1"
	require.NoError(t, repo.ApplyTransition(row, decimal.NewFromInt(1000)))
	assert.Equal(t, 2, row.Version)

	stale.Status = domain.TxStatusSuccess
	assert.ErrorIs(t, repo.ApplyTransition(&stale, decimal.NewFromInt(1000)), ErrStaleVersion)

	got, err := repo.GetByOrderID("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusSuccess, got.Status)
	assert.Equal(t, "BR-1", got.BankReference)
	assert.Equal(t, "cf_1", got.CFOrderID)
	assert.True(t, got.TransactionAmount.Equal(decimal.NewFromInt(1000)))

	u, err := NewUserRepository(db).GetByID(st.ID)
	require.NoError(t, err)
	assert.True(t, u.PaymentClear.Equal(decimal.NewFromInt(1000)), u.PaymentClear.String())
	assert.Equal(t, 11, u.Months)
	assert.Equal(t, 2, u.Version)
}

func TestApplyTransitionMonthsNeverNegative(t *testing.T) {
	db := newTestDB(t)
	school := uint(1)
	st := seedUser(t, db, domain.RoleStudent, "kid@example.com", &school)
	require.NoError(t, db.Model(st).Update("months", 0).Error)
	repo := NewOrderStatusRepository(db)
	row := seedStatus(t, db, "ORD-1", st, school, time.Now().UTC())

	row.Status = domain.TxStatusSuccess
	require.NoError(t, repo.ApplyTransition(row, decimal.NewFromInt(500)))

	u, err := NewUserRepository(db).GetByID(st.ID)
	require.NoError(t, err)
	assert.Zero(t, u.Months)
	assert.True(t, u.PaymentClear.Equal(decimal.NewFromInt(500)))
}

func TestOrderStatusListSearchAndSummary(t *testing.T) {
	db := newTestDB(t)
	school := uint(7)
	st := seedUser(t, db, domain.RoleStudent, "kid@example.com", &school)
	repo := NewOrderStatusRepository(db)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedStatus(t, db, fmt.Sprintf("ORD-%d", i), st, school, base.Add(time.Duration(i)*time.Hour))
	}
	other := seedStatus(t, db, "ORD-other", st, 8, base.Add(30*time.Minute))

	done, err := repo.GetByOrderID("ORD-4")
	require.NoError(t, err)
	done.Status = domain.TxStatusSuccess
	done.PaymentMessage = "Paid 100% via UPI"
	require.NoError(t, repo.ApplyTransition(done, decimal.Zero))

	rows, total, err := repo.List(TxFilter{SchoolID: school, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "ORD-2", rows[0].OrderID)

	rows, total, err = repo.List(TxFilter{SchoolID: school, Search: "100%"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "ORD-4", rows[0].OrderID)

	// the wildcard is matched literally
	_, total, err = repo.List(TxFilter{SchoolID: school, Search: "_"})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.List(TxFilter{SchoolID: school, Status: domain.TxStatusPending})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	all, err := repo.ListAll(TxFilter{}, 3)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sum, err := repo.Summary(school)
	require.NoError(t, err)
	require.Len(t, sum, 2)
	assert.Equal(t, domain.TxStatusPending, sum[0].Status)
	assert.EqualValues(t, 4, sum[0].Count)
	assert.True(t, sum[0].Amount.Equal(decimal.NewFromInt(4000)), sum[0].Amount.String())
	assert.Equal(t, domain.TxStatusSuccess, sum[1].Status)

	stale, err := repo.ListStalePending(base.Add(150*time.Minute), 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.OrderID)
	}
	assert.Equal(t, []string{"ORD-0", other.OrderID, "ORD-1", "ORD-2"}, ids)
}

func TestUserUpdateIsVersioned(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := seedUser(t, db, domain.RoleAdmin, "admin@example.com", nil)

	first, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(u.ID)
	require.NoError(t, err)

	first.Name = "First"
	require.NoError(t, repo.Update(first))
	assert.Equal(t, 2, first.Version)

	second.Name = "Second"
	assert.ErrorIs(t, repo.Update(second), ErrStaleVersion)
	assert.Equal(t, 1, second.Version)

	got, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
}

func TestUserListsAndSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	school := uint(3)
	admin := seedUser(t, db, domain.RoleAdmin, "admin@example.com", &school)
	for _, email := range []string{"amy@x.com", "bob@x.com", "bo_b@x.com"} {
		seedUser(t, db, domain.RoleStudent, email, &school)
	}
	teacher := &models.User{Name: "T", Email: "t@x.com", Role: domain.RoleTeacher, SchoolID: &school, CreateID: &admin.ID}
	require.NoError(t, repo.Create(teacher))

	rows, total, err := repo.ListStudents(school, "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.ListStudents(school, "o_b", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bo_b@x.com", rows[0].Email)

	teachers, total, err := repo.ListTeachers(admin.ID, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, teacher.ID, teachers[0].ID)

	opts, err := repo.StudentOptions(school)
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, "amy@x.com", opts[0].Email)
}

func TestUserDeleteRefusesStudentWithOrders(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	school := uint(1)
	st := seedUser(t, db, domain.RoleStudent, "kid@example.com", &school)
	free := seedUser(t, db, domain.RoleStudent, "free@example.com", &school)
	require.NoError(t, NewOrderRepository(db).Create(&models.Order{
		OrderID: "ORD-1", SchoolID: school, TrusteeID: "t", StudentID: st.ID, GatewayName: "cashfree", Types: "fees",
	}))

	assert.ErrorIs(t, users.Delete(st.ID), ErrInUse)
	_, err := users.GetByID(st.ID)
	assert.NoError(t, err)

	require.NoError(t, users.Delete(free.ID))
	assert.ErrorIs(t, users.Delete(free.ID), gorm.ErrRecordNotFound)
}

func TestOrderRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	school := uint(2)
	st := seedUser(t, db, domain.RoleStudent, "kid@example.com", &school)
	for i, gw := range []string{"cashfree", "razorpay", "cashfree"} {
		require.NoError(t, repo.Create(&models.Order{
			OrderID: fmt.Sprintf("ORD-%d", i), SchoolID: school, TrusteeID: "t", StudentID: st.ID, GatewayName: gw, Types: "fees",
		}))
	}

	o, err := repo.GetByOrderID("ORD-1")
	require.NoError(t, err)
	require.NotNil(t, o.Student)
	assert.Equal(t, st.Email, o.Student.Email)

	rows, total, err := repo.List(school, "CASH", "gateway_name", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	_, err = repo.GetByOrderID("ORD-missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateForAdminLinksAdmin(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, domain.RoleAdmin, "admin@example.com", nil)
	repo := NewSchoolRepository(db)

	s := &models.School{SchoolName: "Green Valley", AdminID: admin.ID}
	require.NoError(t, repo.CreateForAdmin(s))

	u, err := NewUserRepository(db).GetByID(admin.ID)
	require.NoError(t, err)
	require.NotNil(t, u.SchoolID)
	assert.Equal(t, s.ID, *u.SchoolID)
	assert.Equal(t, 2, u.Version)

	got, err := repo.GetByAdminID(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Valley", got.SchoolName)
}

func TestWebhookLogFinalize(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookLogRepository(db)
	l := &models.WebhookLog{OrderID: "ORD-1", Gateway: "cashfree", Payload: []byte(`{"a":1}`), Status: domain.WebhookPending}
	require.NoError(t, repo.Create(l))
	require.NoError(t, repo.Finalize(l.ID, domain.WebhookProcessed, "ok"))

	var got models.WebhookLog
	require.NoError(t, db.First(&got, l.ID).Error)
	assert.Equal(t, domain.WebhookProcessed, got.Status)
	assert.Equal(t, "ok", got.Message)
	assert.JSONEq(t, `{"a":1}`, string(got.Payload))
}
