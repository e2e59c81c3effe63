// Package session 管理購物者工作階段，每個工作階段擁有一個購物車。
package session

import (
	"FoodieHub/cart"
	"context"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// 結帳頁面填寫的配送資料
type Delivery struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type Session struct {
	ID   string
	Cart *cart.Store

	mu       sync.Mutex
	delivery *Delivery
	lastSeen time.Time

	placing sync.Mutex
}

// 同一工作階段同時只能送出一筆訂單，取得失敗回傳false
func (s *Session) BeginOrder() bool {
	return s.placing.TryLock()
}

func (s *Session) EndOrder() {
	s.placing.Unlock()
}

func (s *Session) SetDelivery(d Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivery = &d
}

// 取得配送資料，尚未填寫時回傳false
func (s *Session) Delivery() (Delivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delivery == nil {
		return Delivery{}, false
	}
	return *s.delivery, true
}

func (s *Session) ClearDelivery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivery = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
	log         logrus.FieldLogger
}

func NewRegistry(idleTimeout time.Duration, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
		log:         log,
	}
}

// 建立新的工作階段及空購物車
func (r *Registry) Start() *Session {
	s := &Session{
		ID:       uuid.New().String(),
		Cart:     cart.NewStore(),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.log.WithField("session", s.ID).Debug("session started")
	return s
}

// 取得工作階段並更新最後使用時間，與Sweep互斥
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// 結束工作階段並清空購物車
func (r *Registry) End(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	teardown(s)
	r.log.WithField("session", id).Debug("session ended")
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// 移除閒置超過時限的工作階段，回傳移除數量
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTimeout <= 0 {
		return 0
	}

	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince(now) >= r.idleTimeout {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		teardown(s)
		r.log.WithField("session", s.ID).Debug("session expired")
	}
	return len(expired)
}

// 定期清除閒置工作階段，直到ctx結束
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.log.WithField("expired", n).Info("swept idle sessions")
			}
		}
	}
}

func teardown(s *Session) {
	s.Cart.Clear()
	s.ClearDelivery()
}
