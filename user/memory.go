package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is a mutex-guarded in-process Directory.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*User
	now    func() time.Time
}

// NewMemory returns an empty directory. A nil now uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{byID: make(map[int64]*User), now: now}
}

func (m *Memory) FindByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// FindByEmail matches case-insensitively and prefers email accounts over
// social ones sharing the address.
func (m *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var match *User
	for _, u := range m.byID {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if match == nil || (u.Type == TypeEmail && match.Type != TypeEmail) || (u.Type == match.Type && u.ID < match.ID) {
			match = u
		}
	}
	if match == nil {
		return nil, ErrNotFound
	}
	cp := *match
	return &cp, nil
}

func (m *Memory) FindBySocialID(_ context.Context, socialID string) (*User, bool, error) {
	if socialID == "" {
		return nil, false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.byID {
		if u.SocialID == socialID {
			cp := *u
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *Memory) Save(_ context.Context, d Draft) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if strings.EqualFold(u.Email, d.Email) && u.Type == d.Type {
			return 0, ErrDuplicate
		}
	}

	m.nextID++
	now := m.now()
	m.byID[m.nextID] = &User{
		ID:            m.nextID,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Type:          d.Type,
		SocialID:      d.SocialID,
		Address:       d.Address,
		AddressPostNo: d.AddressPostNo,
		TempFlag:      d.TempFlag,
		RegisterTime:  now,
		ModifyTime:    now,
	}
	return m.nextID, nil
}

func (m *Memory) CountByEmailAndType(_ context.Context, email, accountType string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) && u.Type == accountType {
			n++
		}
	}
	return n, nil
}

func (m *Memory) List(_ context.Context, offset, limit int) ([]User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].RegisterTime.Equal(all[j].RegisterTime) {
			return all[i].ID > all[j].ID
		}
		return all[i].RegisterTime.After(all[j].RegisterTime)
	})

	total := int64(len(all))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []User{}, total, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (m *Memory) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return m.update(id, func(u *User) { u.PasswordHash = passwordHash })
}

func (m *Memory) UpdateAddress(_ context.Context, id int64, address, postNo string) error {
	return m.update(id, func(u *User) {
		u.Address = address
		u.AddressPostNo = postNo
	})
}

func (m *Memory) UpdateName(_ context.Context, id int64, firstName, lastName string) error {
	return m.update(id, func(u *User) {
		u.FirstName = firstName
		u.LastName = lastName
	})
}

func (m *Memory) UpdateDropFlag(_ context.Context, id int64, drop bool) error {
	return m.update(id, func(u *User) { u.DropFlag = drop })
}

func (m *Memory) UpdateTempFlag(_ context.Context, id int64, temp bool) error {
	return m.update(id, func(u *User) { u.TempFlag = temp })
}

func (m *Memory) update(id int64, apply func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	apply(u)
	u.ModifyTime = m.now()
	return nil
}
