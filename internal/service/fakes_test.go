package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/taobao"

	"github.com/google/uuid"
)

// In-memory repository fakes. They interpret the specification values
// directly instead of building SQL, covering only the specs the
// services actually use.

type sessionFilter struct {
	byID       *uuid.UUID
	ownedBy    *uuid.UUID
	activeOnly bool
	orderDesc  bool
}

func parseSessionSpecs(specs []specification.Specification) sessionFilter {
	var f sessionFilter
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id := v.ID
			f.byID = &id
		case specification.UserOwnedBy:
			id := v.UserID
			f.ownedBy = &id
		case specification.ActiveSessions:
			f.activeOnly = true
		case specification.OrderBy:
			f.orderDesc = v.Desc
		}
	}
	return f
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *fakeSessionRepo) matches(s *entity.ChatSession, f sessionFilter) bool {
	if f.byID != nil && s.Id != *f.byID {
		return false
	}
	if f.ownedBy != nil && s.UserId != *f.ownedBy {
		return false
	}
	if f.activeOnly && !s.IsActive {
		return false
	}
	return !s.IsDeleted
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	cp := *session
	r.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	cp := *session
	r.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s, ok := r.sessions[id]; ok {
		s.IsDeleted = true
	}
	return nil
}

func (r *fakeSessionRepo) DeleteUnscoped(ctx context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	f := parseSessionSpecs(specs)
	for _, s := range r.sessions {
		if r.matches(s, f) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	f := parseSessionSpecs(specs)
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if r.matches(s, f) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.orderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	cp := *message
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) DeleteBySessionIdUnscoped(ctx context.Context, sessionId uuid.UUID) error {
	var kept []*entity.ChatMessage
	for _, m := range r.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) filter(specs []specification.Specification) []*entity.ChatMessage {
	var bySession *uuid.UUID
	for _, s := range specs {
		if v, ok := s.(specification.ByChatSessionID); ok {
			id := v.ChatSessionID
			bySession = &id
		}
	}
	var out []*entity.ChatMessage
	for _, m := range r.messages {
		if bySession != nil && m.ChatSessionId != *bySession {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	out := r.filter(specs)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return r.filter(specs), nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.filter(specs))), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var byID *uuid.UUID
	var byEmail string
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id := v.ID
			byID = &id
		case specification.ByEmail:
			byEmail = v.Email
		}
	}
	for _, u := range r.users {
		if byID != nil && u.Id != *byID {
			continue
		}
		if byEmail != "" && u.Email != byEmail {
			continue
		}
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.users)), nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) Upsert(ctx context.Context, product *entity.Product) error {
	cp := *product
	now := time.Now()
	cp.UpdatedAt = &now
	r.products[product.ItemID] = &cp
	return nil
}

func (r *fakeProductRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	for _, s := range specs {
		if v, ok := s.(specification.ByItemID); ok {
			if p, found := r.products[v.ItemID]; found {
				cp := *p
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	var titleLike string
	var cutoff *time.Time
	for _, s := range specs {
		switch v := s.(type) {
		case specification.TitleLike:
			titleLike = strings.ToLower(v.Query)
		case specification.UpdatedSince:
			c := v.Cutoff
			cutoff = &c
		}
	}
	var out []*entity.Product
	for _, p := range r.products {
		if titleLike != "" && !strings.Contains(strings.ToLower(p.Title), titleLike) {
			continue
		}
		if cutoff != nil && (p.UpdatedAt == nil || p.UpdatedAt.Before(*cutoff)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.products)), nil
}

// fakeUnitOfWork hands out shared repository fakes; Begin/Commit are
// no-ops since there is no real transaction to manage.
type fakeUnitOfWork struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	products *fakeProductRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository               { return u.users }
func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }
func (u *fakeUnitOfWork) ProductRepository() contract.ProductRepository         { return u.products }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{uow: &fakeUnitOfWork{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionRepo(),
		messages: &fakeMessageRepo{},
		products: newFakeProductRepo(),
	}}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// nopLogger satisfies the logger contract without writing anywhere.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakePublisher captures products-observed messages.
type fakePublisher struct {
	messages []*dto.PublishProductsObservedMessage
}

func (p *fakePublisher) PublishProductsObserved(msg *dto.PublishProductsObservedMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

// fakeShopGateway implements both the tool set gateway and the product
// service gateway.
type fakeShopGateway struct {
	searchProducts []taobao.Product
	searchErr      error
	imageProducts  []taobao.Product
}

func (g *fakeShopGateway) SearchByKeyword(ctx context.Context, query string, page, pageSize int) ([]taobao.Product, error) {
	return g.searchProducts, g.searchErr
}

func (g *fakeShopGateway) SearchByImage(ctx context.Context, imageBase64 string) ([]taobao.Product, error) {
	return g.imageProducts, nil
}

func (g *fakeShopGateway) GetDetail(ctx context.Context, itemID string) (*taobao.Product, error) {
	return nil, taobao.ErrNotFound
}

func (g *fakeShopGateway) GetOrderInfo(ctx context.Context, orderID string) (*taobao.OrderInfo, error) {
	return nil, taobao.ErrNotFound
}

func (g *fakeShopGateway) GetLogisticsInfo(ctx context.Context, orderID string) (*taobao.LogisticsInfo, error) {
	return nil, taobao.ErrNotFound
}
