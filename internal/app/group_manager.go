package app

import (
	"slices"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/samber/lo"
)

// GroupManager is the group table. Like Registry it has a single owner.
type GroupManager struct {
	groups map[string]*core.Group
}

func NewGroupManager() *GroupManager {
	return &GroupManager{groups: make(map[string]*core.Group)}
}

func (m *GroupManager) Get(name string) (*core.Group, bool) {
	g, ok := m.groups[name]
	return g, ok
}

// Create reports false if the name is taken.
func (m *GroupManager) Create(name, admin string, endpoint domain.Endpoint) (*core.Group, bool) {
	if _, ok := m.groups[name]; ok {
		return nil, false
	}
	g := core.NewGroup(name, admin, endpoint)
	m.groups[name] = g
	return g, true
}

// Stop cancels the group's timers and forgets it.
func (m *GroupManager) Stop(name string) {
	if g, ok := m.groups[name]; ok {
		g.Close()
		delete(m.groups, name)
	}
}

// Sorted returns every group ordered by name.
func (m *GroupManager) Sorted() []*core.Group {
	names := lo.Keys(m.groups)
	slices.Sort(names)
	return lo.Map(names, func(n string, _ int) *core.Group { return m.groups[n] })
}

// Containing returns the groups the user is a member of, ordered by name.
func (m *GroupManager) Containing(user string) []*core.Group {
	return lo.Filter(m.Sorted(), func(g *core.Group, _ int) bool { return g.IsMember(user) })
}

func (m *GroupManager) StopAll() {
	for name := range m.groups {
		m.Stop(name)
	}
}
