// Package storetest provides in-memory stores and collaborators for tests.
package storetest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"feeportal/internal/domain"
	"feeportal/internal/models"
	"feeportal/internal/repository"
	"feeportal/pkg/mail"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Users struct {
	mu     sync.Mutex
	rows   map[uint]*models.User
	nextID uint
	// hasOrders is wired by NewOrders to refuse deleting referenced students.
	hasOrders func(studentID uint) bool
}

func NewUsers() *Users {
	return &Users{rows: map[uint]*models.User{}}
}

func (f *Users) Create(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.Version = 1
	u.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *Users) GetByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *Users) GetByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *Users) GetByResetToken(token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ResetPasswordToken != nil && *r.ResetPasswordToken == token {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *Users) Update(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[u.ID]
	if !ok || r.Version != u.Version {
		return repository.ErrStaleVersion
	}
	u.Version++
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *Users) Delete(id uint) error {
	if f.hasOrders != nil && f.hasOrders(id) {
		return repository.ErrInUse
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *Users) list(match func(*models.User) bool, search string, page, limit int) ([]models.User, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	search = strings.ToLower(search)
	var out []models.User
	for _, r := range f.rows {
		if !match(r) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) && !strings.Contains(strings.ToLower(r.Email), search) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, page, limit), int64(len(out))
}

func (f *Users) ListTeachers(creatorID uint, search string, page, limit int) ([]models.User, int64, error) {
	rows, total := f.list(func(u *models.User) bool { return u.IsTeacher() && u.CreatedBy(creatorID) }, search, page, limit)
	return rows, total, nil
}

func (f *Users) ListStudents(schoolID uint, search string, page, limit int) ([]models.User, int64, error) {
	rows, total := f.list(func(u *models.User) bool { return u.IsStudent() && u.InSchool(schoolID) }, search, page, limit)
	return rows, total, nil
}

func (f *Users) StudentOptions(schoolID uint) ([]models.User, error) {
	rows, _ := f.list(func(u *models.User) bool { return u.IsStudent() && u.InSchool(schoolID) }, "", 1, domain.MaxLimit)
	return rows, nil
}

func pageOf[T any](rows []T, page, limit int) []T {
	page, limit = domain.NormalizePage(page, limit)
	start := domain.Offset(page, limit)
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

type Schools struct {
	mu     sync.Mutex
	rows   map[uint]*models.School
	users  *Users
	nextID uint
}

func NewSchools(users *Users) *Schools {
	return &Schools{rows: map[uint]*models.School{}, users: users}
}

func (f *Schools) GetByID(id uint) (*models.School, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *Schools) GetByAdminID(adminID uint) (*models.School, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.AdminID == adminID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *Schools) Update(s *models.School) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *Schools) CreateForAdmin(s *models.School) error {
	f.mu.Lock()
	for _, r := range f.rows {
		if r.AdminID == s.AdminID {
			f.mu.Unlock()
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.rows[s.ID] = &cp
	f.mu.Unlock()

	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	if u, ok := f.users.rows[s.AdminID]; ok {
		id := s.ID
		u.SchoolID = &id
	}
	return nil
}

func NewOrders(users *Users) *Orders {
	o := &Orders{users: users}
	if users != nil {
		users.hasOrders = o.hasStudent
	}
	return o
}

func (f *Orders) hasStudent(studentID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.StudentID == studentID {
			return true
		}
	}
	return false
}

type Orders struct {
	mu     sync.Mutex
	rows   []models.Order
	users  *Users
	nextID uint
}

func (f *Orders) Create(o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OrderID == o.OrderID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now()
	f.rows = append(f.rows, *o)
	return nil
}

func (f *Orders) GetByOrderID(orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OrderID == orderID {
			cp := r
			if f.users != nil {
				if st, err := f.users.GetByID(r.StudentID); err == nil {
					cp.Student = st
				}
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *Orders) List(schoolID uint, search, sort string, page, limit int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, r := range f.rows {
		if r.SchoolID != schoolID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.GatewayName), strings.ToLower(search)) {
			continue
		}
		out = append(out, r)
	}
	return pageOf(out, page, limit), int64(len(out)), nil
}

func NewStatuses(users *Users) *Statuses {
	return &Statuses{users: users}
}

// Statuses credits students in Users on successful transitions.
type Statuses struct {
	mu     sync.Mutex
	rows   []*models.OrderStatus
	users  *Users
	nextID uint
}

func (f *Statuses) Create(s *models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OrderID == s.OrderID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.Version = 1
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *Statuses) GetByOrderID(orderID string) (*models.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OrderID == orderID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *Statuses) filtered(flt repository.TxFilter) []models.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	search := strings.ToLower(flt.Search)
	var out []models.OrderStatus
	for _, r := range f.rows {
		if flt.SchoolID != 0 && r.SchoolID != flt.SchoolID {
			continue
		}
		if flt.Status != "" && flt.Status != "All" && r.Status != flt.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.StudentInfo.Name), search) &&
			!strings.Contains(strings.ToLower(r.PaymentMessage), search) &&
			!strings.Contains(strings.ToLower(r.BankReference), search) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentTime.After(out[j].PaymentTime) })
	return out
}

func (f *Statuses) List(flt repository.TxFilter) ([]models.OrderStatus, int64, error) {
	rows := f.filtered(flt)
	return pageOf(rows, flt.Page, flt.Limit), int64(len(rows)), nil
}

func (f *Statuses) ListAll(flt repository.TxFilter, max int) ([]models.OrderStatus, error) {
	rows := f.filtered(flt)
	if len(rows) > max {
		rows = rows[:max]
	}
	return rows, nil
}

func (f *Statuses) Summary(schoolID uint) ([]models.StatusTotal, error) {
	byStatus := map[string]*models.StatusTotal{}
	for _, r := range f.filtered(repository.TxFilter{SchoolID: schoolID}) {
		t, ok := byStatus[r.Status]
		if !ok {
			t = &models.StatusTotal{Status: r.Status}
			byStatus[r.Status] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(r.OrderAmount)
	}
	var out []models.StatusTotal
	for _, t := range byStatus {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (f *Statuses) ListStalePending(cutoff time.Time, limit int) ([]models.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderStatus
	for _, r := range f.rows {
		if r.Status == domain.TxStatusPending && r.PaymentTime.Before(cutoff) && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *Statuses) ApplyTransition(s *models.OrderStatus, credit decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID != s.ID {
			continue
		}
		if r.Version != s.Version {
			return repository.ErrStaleVersion
		}
		cp := *s
		cp.Version = r.Version + 1
		f.rows[i] = &cp
		if credit.IsPositive() && f.users != nil {
			f.users.mu.Lock()
			if u, ok := f.users.rows[s.StudentInfo.StudentID]; ok {
				u.PaymentClear = u.PaymentClear.Add(credit)
				if u.Months > 0 {
					u.Months--
				}
				u.Version++
			}
			f.users.mu.Unlock()
		}
		s.Version = cp.Version
		return nil
	}
	return repository.ErrStaleVersion
}

func (f *Statuses) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type WebhookLogs struct {
	mu     sync.Mutex
	rows   map[uint]*models.WebhookLog
	nextID uint
}

func NewWebhookLogs() *WebhookLogs {
	return &WebhookLogs{rows: map[uint]*models.WebhookLog{}}
}

func (f *WebhookLogs) Create(l *models.WebhookLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *WebhookLogs) Get(id uint) (models.WebhookLog, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return models.WebhookLog{}, false
	}
	return *r, true
}

func (f *WebhookLogs) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *WebhookLogs) Finalize(id uint, status, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	r.Message = message
	return nil
}

type SentMail struct {
	Kind string
	To   string
	Data any
}

// Mailer records mails instead of sending them. A non-nil Err fails every send.
type Mailer struct {
	mu   sync.Mutex
	sent []SentMail
	Err  error
}

func (m *Mailer) record(kind, to string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentMail{Kind: kind, To: to, Data: data})
	return nil
}

func (m *Mailer) SendEmailOTP(name, email, otp string) error {
	return m.record(mail.TemplateEmailOTP, email, otp)
}

func (m *Mailer) SendForgotPassword(email, resetLink string) error {
	return m.record(mail.TemplateForgotPassword, email, resetLink)
}

func (m *Mailer) SendPasswordUpdated(email string) error {
	return m.record(mail.TemplatePasswordUpdate, email, nil)
}

func (m *Mailer) SendAccountDetails(d mail.AccountDetails) error {
	return m.record(mail.TemplateAccountDetails, d.Email, d)
}

func (m *Mailer) SendPaymentSuccessful(email string, r mail.PaymentReceipt) error {
	return m.record(mail.TemplatePaymentSuccessful, email, r)
}

func (m *Mailer) SendPaymentFailed(email string, r mail.PaymentReceipt) error {
	return m.record(mail.TemplatePaymentFailed, email, r)
}

// Last returns the most recent mail of the given kind.
func (m *Mailer) Last(kind string) (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			return m.sent[i], true
		}
	}
	return SentMail{}, false
}

func (m *Mailer) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type Publisher struct {
	mu     sync.Mutex
	events []models.OrderStatus
}

func (p *Publisher) PublishTransaction(schoolID uint, s *models.OrderStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *s)
}

func (p *Publisher) Events() []models.OrderStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderStatus(nil), p.events...)
}

type AuditLogs struct {
	mu   sync.Mutex
	rows []models.AuditLog
}

func (a *AuditLogs) Create(l *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	l.ID = uint(len(a.rows) + 1)
	a.rows = append(a.rows, *l)
	return nil
}

// Actions lists recorded actions in order.
func (a *AuditLogs) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.rows))
	for _, r := range a.rows {
		out = append(out, r.Action)
	}
	return out
}
