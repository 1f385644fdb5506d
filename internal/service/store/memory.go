package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"pitchcanvas/internal/model"
)

// ChangeKind 变更类型
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent 单条变更事件
type ChangeEvent struct {
	ItemID string     `json:"itemId"`
	Kind   ChangeKind `json:"changeKind"`
}

// Listener 变更监听器；与写入方在同一 goroutine 顺序调用
type Listener func(ChangeEvent)

// MemoryStore 画布内存存储
// 条目保持插入顺序（用于展示），同步逻辑不依赖顺序
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]*model.Item
	order     []string
	meta      model.CanvasMeta
	listeners []Listener
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*model.Item),
	}
}

// Subscribe 注册变更监听器
func (s *MemoryStore) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *MemoryStore) notify(ev ChangeEvent) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// ListItems 按插入顺序返回所有条目（深拷贝）
func (s *MemoryStore) ListItems() []*model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Item, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.items[id]; ok {
			result = append(result, item.Clone())
		}
	}
	return result
}

// GetItem 获取单个条目
func (s *MemoryStore) GetItem(id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, errors.New("item not found")
	}
	return item.Clone(), nil
}

// CreateItem 创建条目并返回（ID 由存储生成，保证唯一且不复用）
func (s *MemoryStore) CreateItem(t model.ItemType, name string) (*model.Item, error) {
	if !model.ValidItemType(t) {
		return nil, fmt.Errorf("unknown item type: %s", t)
	}

	s.mu.Lock()
	id := fmt.Sprintf("it_%s", uuid.New().String()[:8])
	if name == "" {
		s.meta.ItemsCreated++
		name = fmt.Sprintf("New %s %d", t, s.meta.ItemsCreated)
	} else {
		s.meta.ItemsCreated++
	}

	item := &model.Item{
		ID:   id,
		Type: t,
		Name: name,
		Data: model.DefaultData(t),
	}
	s.items[id] = item
	s.order = append(s.order, id)
	s.meta.LastAction = "created " + id
	result := item.Clone()
	s.mu.Unlock()

	s.notify(ChangeEvent{ItemID: id, Kind: ChangeCreated})
	return result, nil
}

// ItemPatch 条目更新补丁；nil 字段表示不修改
type ItemPatch struct {
	Name     *string        `json:"name"`
	Subtitle *string        `json:"subtitle"`
	Data     map[string]any `json:"data"`
}

// UpdateItem 更新条目；类型不可变更
func (s *MemoryStore) UpdateItem(id string, patch ItemPatch) (*model.Item, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return nil, errors.New("item not found")
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Subtitle != nil {
		item.Subtitle = *patch.Subtitle
	}
	if patch.Data != nil {
		item.Data = patch.Data
	}
	s.meta.LastAction = "updated " + id
	result := item.Clone()
	s.mu.Unlock()

	s.notify(ChangeEvent{ItemID: id, Kind: ChangeUpdated})
	return result, nil
}

// DeleteItem 删除条目
func (s *MemoryStore) DeleteItem(id string) error {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return errors.New("item not found")
	}
	delete(s.items, id)

	next := make([]string, 0, len(s.order))
	for _, existing := range s.order {
		if existing == id {
			continue
		}
		next = append(next, existing)
	}
	s.order = next
	s.meta.LastAction = "deleted " + id
	s.mu.Unlock()

	s.notify(ChangeEvent{ItemID: id, Kind: ChangeDeleted})
	return nil
}

// Count 获取条目数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// CountByType 按类型统计条目数量
func (s *MemoryStore) CountByType() map[model.ItemType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[model.ItemType]int)
	for _, item := range s.items {
		result[item.Type]++
	}
	return result
}

// Meta 获取画布全局状态
func (s *MemoryStore) Meta() model.CanvasMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// SetGlobalTitle 设置画布全局标题
func (s *MemoryStore) SetGlobalTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta.GlobalTitle = title
}

// SetGlobalDescription 设置画布全局描述
func (s *MemoryStore) SetGlobalDescription(desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta.GlobalDescription = desc
}

// Clear 清空所有条目
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*model.Item)
	s.order = nil
}
