// Package cart 保存單一購物者的購物車狀態。
//
// Store 是購物車內容的唯一來源，所有畫面只透過 Store 的方法修改內容，
// 並透過 Snapshot 或 Subscribe 讀取。總金額不獨立儲存，每次變動後
// 由商品重新計算。
package cart

import (
	"github.com/shopspring/decimal"
	"sync"
)

// 金額顯示與計算的小數位數
const pricePlaces = 2

// Listener 在每次變動完成後以最新快照被呼叫
type Listener func(Snapshot)

type Store struct {
	mu      sync.RWMutex
	items   []Item
	total   decimal.Decimal
	version uint64

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64
}

func NewStore() *Store {
	return &Store{
		total:     decimal.Zero,
		listeners: make(map[uint64]Listener),
	}
}

// 新增商品，已存在相同ID則數量加1
func (s *Store) AddItem(candidate Candidate) {
	s.mutate(func() bool {
		if i := s.indexOf(candidate.ID); i >= 0 {
			s.items[i].Quantity++
			return true
		}
		s.items = append(s.items, Item{
			ID:       candidate.ID,
			Name:     candidate.Name,
			Price:    candidate.Price,
			Image:    candidate.Image,
			Quantity: 1,
		})
		return true
	})
}

// 刪除商品，不存在時不做任何事
func (s *Store) RemoveItem(id string) {
	s.mutate(func() bool {
		return s.remove(id)
	})
}

// 更新商品數量，數量小於等於0時視同刪除
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mutate(func() bool {
		if quantity <= 0 {
			return s.remove(id)
		}
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

// 清空購物車，已是空的則不通知
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// 移除已下單的商品。購物車自ordered之後沒有變動時直接清空並回傳true，
// 否則只扣除ordered中的數量，保留期間新增的商品並回傳false
func (s *Store) ClearOrdered(ordered Snapshot) bool {
	cleared := false
	s.mutate(func() bool {
		if s.version == ordered.Version {
			if len(s.items) == 0 {
				return false
			}
			s.items = nil
			cleared = true
			return true
		}

		changed := false
		for _, line := range ordered.Items {
			i := s.indexOf(line.ID)
			if i < 0 {
				continue
			}
			changed = true
			s.items[i].Quantity -= line.Quantity
			if s.items[i].Quantity <= 0 {
				s.remove(line.ID)
			}
		}
		return changed
	})
	return cleared
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe 註冊變動通知，回傳的函式可取消註冊(可重複呼叫)。
// Listener 在鎖釋放後同步呼叫，可以讀取或修改 Store。
func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// 執行變動並重新計算總金額，有變動時通知訂閱者
func (s *Store) mutate(apply func() bool) {
	s.mu.Lock()
	if !apply() {
		s.mu.Unlock()
		return
	}
	s.total = sumItems(s.items)
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) notify(snapshot Snapshot) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:   items,
		Total:   s.total,
		Version: s.version,
	}
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// 總金額每次都從頭加總，不做增量修正
func sumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(pricePlaces)
}
