package bulkimport

import (
	"strings"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

// programKeywords are the program categories a corporate import may target,
// in the order free-text references are resolved.
var programKeywords = []string{"cxo", "employee", "general"}

// ReferenceTables are the lookup maps of one job. They are built once per
// preview or execution and passed explicitly through validator, matcher and
// planner; nothing here is shared between jobs.
type ReferenceTables struct {
	programsByKey   map[string]domain.Program
	programsByID    map[int64]domain.Program
	allowedPrograms []domain.Program

	groups      []domain.Group
	groupsByKey map[string]domain.Group
	groupsByID  map[int64]domain.Group

	usersByEmail  map[string]domain.ExistingUser
	usersByMobile map[string]domain.ExistingUser
}

func NewReferenceTables(programs []domain.Program, groups []domain.Group, users []domain.ExistingUser) *ReferenceTables {
	t := &ReferenceTables{
		programsByKey: make(map[string]domain.Program),
		programsByID:  make(map[int64]domain.Program),
		groupsByKey:   make(map[string]domain.Group, len(groups)),
		groupsByID:    make(map[int64]domain.Group, len(groups)),
		usersByEmail:  make(map[string]domain.ExistingUser, len(users)),
		usersByMobile: make(map[string]domain.ExistingUser, len(users)),
	}

	for _, p := range programs {
		name := domain.NormalizeKey(p.Name)
		if !containsKeyword(name) {
			continue
		}
		t.allowedPrograms = append(t.allowedPrograms, p)
		t.programsByID[p.ID] = p
		if code := domain.NormalizeKey(p.Code); code != "" {
			t.programsByKey[code] = p
		}
		if name != "" {
			t.programsByKey[name] = p
		}
	}

	for _, g := range groups {
		t.AddGroup(g)
	}

	for _, u := range users {
		if email := domain.NormalizeEmail(u.Email); email != "" {
			t.usersByEmail[email] = u
		}
		if mobile := domain.NormalizeMobile(u.Mobile); mobile != "" {
			t.usersByMobile[mobile] = u
		}
	}

	return t
}

func containsKeyword(normalized string) bool {
	for _, kw := range programKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// ResolveProgram maps a program code or free-text reference to an allowed program.
func (t *ReferenceTables) ResolveProgram(ref string) (domain.Program, bool) {
	key := domain.NormalizeKey(ref)
	if key == "" {
		return domain.Program{}, false
	}
	if p, ok := t.programsByKey[key]; ok {
		return p, true
	}
	for _, kw := range programKeywords {
		if !strings.Contains(key, kw) {
			continue
		}
		for _, p := range t.allowedPrograms {
			if strings.Contains(domain.NormalizeKey(p.Name), kw) {
				return p, true
			}
		}
	}
	return domain.Program{}, false
}

func (t *ReferenceTables) Program(id int64) (domain.Program, bool) {
	p, ok := t.programsByID[id]
	return p, ok
}

func (t *ReferenceTables) Groups() []domain.Group {
	return t.groups
}

func (t *ReferenceTables) GroupByName(name string) (domain.Group, bool) {
	g, ok := t.groupsByKey[domain.NormalizeKey(name)]
	return g, ok
}

func (t *ReferenceTables) Group(id int64) (domain.Group, bool) {
	g, ok := t.groupsByID[id]
	return g, ok
}

func (t *ReferenceTables) lookupGroup(id int64) (domain.Group, bool) {
	if t == nil || id <= 0 {
		return domain.Group{}, false
	}
	return t.Group(id)
}

// AddGroup registers a group created during this job so later batches reuse it.
func (t *ReferenceTables) AddGroup(g domain.Group) {
	t.groups = append(t.groups, g)
	t.groupsByID[g.ID] = g
	if key := domain.NormalizeKey(g.Name); key != "" {
		if _, exists := t.groupsByKey[key]; !exists {
			t.groupsByKey[key] = g
		}
	}
}

func (t *ReferenceTables) UserByEmail(email string) (domain.ExistingUser, bool) {
	u, ok := t.usersByEmail[domain.NormalizeEmail(email)]
	return u, ok
}

func (t *ReferenceTables) UserByMobile(mobile string) (domain.ExistingUser, bool) {
	u, ok := t.usersByMobile[domain.NormalizeMobile(mobile)]
	return u, ok
}
