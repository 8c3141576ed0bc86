package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// In-memory repository stubs shared by the service tests.

type stubUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = u
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, name, email string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name, u.Email = name, email
	return u, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) SetStatus(_ context.Context, id primitive.ObjectID, status string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Status = status
	return u, nil
}

func (r *stubUserRepo) list(u *domain.User, list ports.ListName) *[]primitive.ObjectID {
	if list == ports.ListComparisons {
		return &u.Comparisons
	}
	return &u.Favorites
}

func (r *stubUserRepo) RemoveFromList(_ context.Context, userID primitive.ObjectID, list ports.ListName, propertyID primitive.ObjectID) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	ids := r.list(u, list)
	for i, id := range *ids {
		if id == propertyID {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) AddToList(_ context.Context, userID primitive.ObjectID, list ports.ListName, propertyID primitive.ObjectID, maxLen int) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	ids := r.list(u, list)
	for _, id := range *ids {
		if id == propertyID {
			return false, nil
		}
	}
	if maxLen > 0 && len(*ids) >= maxLen {
		return false, nil
	}
	*ids = append(*ids, propertyID)
	return true, nil
}

func (r *stubUserRepo) GetList(_ context.Context, userID primitive.ObjectID, list ports.ListName) ([]primitive.ObjectID, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return *r.list(u, list), nil
}

type stubPropertyRepo struct {
	props      map[primitive.ObjectID]*domain.Property
	lastFilter ports.ListFilter
	listTotal  int64

	nearRadius float64
	nearLimit  int
}

func newStubPropertyRepo(props ...*domain.Property) *stubPropertyRepo {
	r := &stubPropertyRepo{props: make(map[primitive.ObjectID]*domain.Property)}
	for _, p := range props {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.props[p.ID] = p
	}
	return r
}

func (r *stubPropertyRepo) Create(_ context.Context, p *domain.Property) error {
	p.ID = primitive.NewObjectID()
	r.props[p.ID] = p
	return nil
}

func (r *stubPropertyRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Property, error) {
	p, ok := r.props[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (r *stubPropertyRepo) List(_ context.Context, filter ports.ListFilter) ([]*domain.Property, int64, error) {
	r.lastFilter = filter
	out := make([]*domain.Property, 0, len(r.props))
	for _, p := range r.props {
		out = append(out, p)
	}
	total := r.listTotal
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

func (r *stubPropertyRepo) ListByAgent(_ context.Context, agentID primitive.ObjectID) ([]*domain.Property, error) {
	var out []*domain.Property
	for _, p := range r.props {
		if p.AgentID == agentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPropertyRepo) ListNear(_ context.Context, _ []float64, radiusKm float64, excludeID primitive.ObjectID, limit int) ([]*domain.Property, error) {
	r.nearRadius = radiusKm
	r.nearLimit = limit
	var out []*domain.Property
	for _, p := range r.props {
		if p.ID != excludeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPropertyRepo) Update(_ context.Context, id primitive.ObjectID, update ports.PropertyUpdate) (*domain.Property, error) {
	p, ok := r.props[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	return p, nil
}

func (r *stubPropertyRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.props[id]; !ok {
		return domain.ErrPropertyNotFound
	}
	delete(r.props, id)
	return nil
}

type stubMessageRepo struct {
	msgs []*domain.Message
}

func (r *stubMessageRepo) Insert(_ context.Context, m *domain.Message) error {
	m.ID = primitive.NewObjectID()
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *stubMessageRepo) ListThread(_ context.Context, propertyID, userID primitive.ObjectID) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.msgs {
		if m.PropertyID == propertyID && (m.FromID == userID || m.ToID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) MarkRead(_ context.Context, propertyID, fromID, toID primitive.ObjectID) (int64, error) {
	var n int64
	for _, m := range r.msgs {
		if m.PropertyID == propertyID && m.FromID == fromID && m.ToID == toID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *stubMessageRepo) Conversations(_ context.Context, _ primitive.ObjectID) (*ports.Conversations, error) {
	return &ports.Conversations{Inquired: []ports.Conversation{}, Property: []ports.Conversation{}}, nil
}

type stubMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (m *stubMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.subject, m.body = to, subject, htmlBody
	return nil
}
