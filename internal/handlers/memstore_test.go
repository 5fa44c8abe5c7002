package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

// In-memory store implementations backing the handler tests. One repository
// set per tenant, plus a single shared stock store, mirroring the production
// topology.

type fakeProvider struct {
	mu      sync.Mutex
	tenants map[string]*store.Repos
	stock   *fakeStockStore
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		tenants: make(map[string]*store.Repos),
		stock:   newFakeStockStore(),
	}
}

func (p *fakeProvider) ForTenant(_ context.Context, tenant string) (*store.Repos, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	repos, ok := p.tenants[tenant]
	if !ok {
		repos = &store.Repos{
			Appointments:  &fakeAppointmentRepo{},
			Patients:      &fakePatientRepo{},
			Procedures:    &fakeProcedureRepo{},
			Bills:         &fakeLedgerRepo{},
			Income:        &fakeLedgerRepo{},
			Users:         &fakeUserRepo{byID: make(map[primitive.ObjectID]models.User)},
			Documents:     &fakeDocumentRepo{},
			Subscriptions: &fakeSubscriptionRepo{},
		}
		p.tenants[tenant] = repos
	}
	return repos, nil
}

func (p *fakeProvider) Stock() store.StockStore { return p.stock }

// --- users ---

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func (r *fakeUserRepo) List(_ context.Context, role string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0)
	for _, u := range r.byID {
		if role == "" || u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, upd store.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	r.byID[id] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeUserRepo) RoleOf(_ context.Context, id primitive.ObjectID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return "", store.ErrNotFound
	}
	return u.Role, nil
}

// --- appointments ---

type fakeAppointmentRepo struct {
	mu   sync.Mutex
	apts []models.Appointment
}

func (r *fakeAppointmentRepo) List(_ context.Context, f store.AppointmentFilter) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, 0)
	for _, a := range r.apts {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.From != nil && a.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && a.Date.After(*f.To) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apts = append(r.apts, *apt)
	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, id primitive.ObjectID, u store.AppointmentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.apts {
		if a.ID != id {
			continue
		}
		if u.Status != nil {
			a.Status = *u.Status
		}
		if u.Date != nil {
			a.Date = *u.Date
		}
		if u.Professional != nil {
			a.Professional = *u.Professional
		}
		if u.Patient != nil {
			a.Patient = *u.Patient
		}
		if u.Service != nil {
			a.Service = *u.Service
		}
		if u.MeetingID != nil {
			a.MeetingID = *u.MeetingID
		}
		if u.MeetingURL != nil {
			a.MeetingURL = *u.MeetingURL
		}
		r.apts[i] = a
		return nil
	}
	return store.ErrNotFound
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.apts {
		if a.ID == id {
			r.apts = append(r.apts[:i], r.apts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- procedures ---

type fakeProcedureRepo struct {
	mu    sync.Mutex
	procs []models.Procedure
}

func (r *fakeProcedureRepo) List(_ context.Context, f store.ProcedureFilter) ([]models.Procedure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Procedure, 0)
	for _, p := range r.procs {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.From != nil && p.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && p.Date.After(*f.To) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProcedureRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Procedure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.procs {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeProcedureRepo) Create(_ context.Context, p *models.Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs = append(r.procs, *p)
	return nil
}

func (r *fakeProcedureRepo) Update(_ context.Context, id primitive.ObjectID, u store.ProcedureUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.procs {
		if p.ID != id {
			continue
		}
		if u.Name != nil {
			p.Name = *u.Name
		}
		if u.Category != nil {
			p.Category = *u.Category
		}
		if u.Date != nil {
			p.Date = *u.Date
		}
		if u.Doctor != nil {
			p.Doctor = *u.Doctor
		}
		if u.Patient != nil {
			p.Patient = *u.Patient
		}
		r.procs[i] = p
		return nil
	}
	return store.ErrNotFound
}

func (r *fakeProcedureRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.procs {
		if p.ID == id {
			r.procs = append(r.procs[:i], r.procs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- patients ---

type fakePatientRepo struct {
	mu       sync.Mutex
	patients []models.PatientDetails
}

func (r *fakePatientRepo) List(_ context.Context, status string) ([]models.PatientDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PatientDetails, 0)
	for _, p := range r.patients {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePatientRepo) Get(_ context.Context, id primitive.ObjectID) (*models.PatientDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakePatientRepo) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.PatientDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakePatientRepo) Create(_ context.Context, p *models.PatientDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients = append(r.patients, *p)
	return nil
}

func (r *fakePatientRepo) Update(_ context.Context, id primitive.ObjectID, u store.PatientUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.patients {
		if p.ID != id {
			continue
		}
		if u.Status != nil {
			p.Status = *u.Status
		}
		if u.Allergies != nil {
			p.Allergies = *u.Allergies
		}
		if u.Medications != nil {
			p.Medications = *u.Medications
		}
		if u.History != nil {
			p.History = *u.History
		}
		if u.Notes != nil {
			p.Notes = *u.Notes
		}
		if u.LastDiagnosis != nil {
			p.LastDiagnosis = u.LastDiagnosis
		}
		p.UpdatedAt = time.Now().UTC()
		r.patients[i] = p
		return nil
	}
	return store.ErrNotFound
}

func (r *fakePatientRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.patients {
		if p.ID == id {
			r.patients = append(r.patients[:i], r.patients[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- ledger (bills and income each get their own instance) ---

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
}

func (r *fakeLedgerRepo) List(_ context.Context, f store.LedgerFilter) ([]models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LedgerEntry, 0)
	for _, e := range r.entries {
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLedgerRepo) Get(_ context.Context, id primitive.ObjectID) (*models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeLedgerRepo) Create(_ context.Context, e *models.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeLedgerRepo) Update(_ context.Context, id primitive.ObjectID, u store.LedgerUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID != id {
			continue
		}
		if u.Amount != nil {
			e.Amount = *u.Amount
		}
		if u.Date != nil {
			e.Date = *u.Date
		}
		if u.Description != nil {
			e.Description = *u.Description
		}
		r.entries[i] = e
		return nil
	}
	return store.ErrNotFound
}

func (r *fakeLedgerRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- documents ---

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs []models.Document
}

func (r *fakeDocumentRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Document, 0)
	for _, d := range r.docs {
		if d.UserID == userID {
			d.Content = nil // listings never carry the payload
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeDocumentRepo) Create(_ context.Context, d *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, *d)
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- subscriptions ---

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs []models.Subscription
}

func (r *fakeSubscriptionRepo) List(_ context.Context) ([]models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(make([]models.Subscription, 0), r.subs...), nil
}

func (r *fakeSubscriptionRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.BillingRef == s.BillingRef {
			return store.ErrDuplicate
		}
	}
	r.subs = append(r.subs, *s)
	return nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, id primitive.ObjectID, u store.SubscriptionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.ID != id {
			continue
		}
		if u.PlanType != nil {
			s.PlanType = *u.PlanType
		}
		if u.Seats != nil {
			s.Seats = *u.Seats
		}
		if u.PricePerSeat != nil {
			s.PricePerSeat = *u.PricePerSeat
		}
		if u.Status != nil {
			s.Status = *u.Status
		}
		if u.PeriodEnd != nil {
			s.PeriodEnd = *u.PeriodEnd
		}
		r.subs[i] = s
		return nil
	}
	return store.ErrNotFound
}

func (r *fakeSubscriptionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.ID == id {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeSubscriptionRepo) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i, s := range r.subs {
		if s.Status == models.SubscriptionActive && s.PeriodEnd.Before(now) {
			s.Status = models.SubscriptionExpired
			r.subs[i] = s
			n++
		}
	}
	return n, nil
}

// --- stock ---

type fakeStockStore struct {
	mu        sync.Mutex
	items     map[primitive.ObjectID]models.StockItem
	movements []models.StockMovement
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{items: make(map[primitive.ObjectID]models.StockItem)}
}

func (s *fakeStockStore) ListItems(_ context.Context) ([]models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.StockItem, 0)
	for _, item := range s.items {
		items = append(items, item)
	}
	return items, nil
}

func (s *fakeStockStore) GetItem(_ context.Context, id primitive.ObjectID) (*models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *fakeStockStore) CreateItem(_ context.Context, item *models.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

func (s *fakeStockStore) UpdateItem(_ context.Context, id primitive.ObjectID, u store.StockItemUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.MinQuantity != nil {
		item.MinQuantity = *u.MinQuantity
	}
	if u.ExpirationDate != nil {
		item.ExpirationDate = u.ExpirationDate
	}
	s.items[id] = item
	return nil
}

func (s *fakeStockStore) DeleteItem(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeStockStore) ApplyMovement(_ context.Context, productID primitive.ObjectID, req store.MovementRequest) (*models.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[productID]
	if !ok {
		return nil, store.ErrNotFound
	}

	newQty, err := models.ComputeMovement(item.Quantity, req.Type, req.Quantity)
	if err != nil {
		return nil, err
	}

	mv := models.StockMovement{
		ID:             primitive.NewObjectID(),
		ProductID:      productID,
		Reference:      uuid.NewString(),
		Type:           req.Type,
		Quantity:       req.Quantity,
		QuantityBefore: item.Quantity,
		QuantityAfter:  newQty,
		Note:           req.Note,
		CreatedAt:      time.Now().UTC(),
	}

	item.Quantity = newQty
	if req.Type == models.MovementIncoming && req.ExpirationDate != nil {
		item.ExpirationDate = req.ExpirationDate
	}
	s.items[productID] = item
	s.movements = append(s.movements, mv)
	return &mv, nil
}

func (s *fakeStockStore) ListMovements(_ context.Context, productID primitive.ObjectID) ([]models.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StockMovement, 0)
	for _, mv := range s.movements {
		if mv.ProductID == productID {
			out = append(out, mv)
		}
	}
	return out, nil
}
