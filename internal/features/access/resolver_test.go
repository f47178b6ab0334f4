package access

import (
	"context"
	"testing"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(roleID, moduleID uuid.UUID, sectionID *uuid.UUID, view, edit, del bool) AccessRule {
	return AccessRule{
		ID: uuid.New(), RoleID: roleID, ModuleID: moduleID, SectionID: sectionID,
		CanView: view, CanEdit: edit, CanDelete: del, IsActive: true,
	}
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestCombine(t *testing.T) {
	roleA, roleB := uuid.New(), uuid.New()
	module := uuid.New()
	s1, s2 := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		rules   []AccessRule
		section *uuid.UUID
		want    Permissions
	}{
		{
			name:    "no rules denies everything",
			section: ptr(s1),
			want:    Permissions{},
		},
		{
			name:    "module rule covers every section",
			rules:   []AccessRule{rule(roleA, module, nil, true, true, false)},
			section: ptr(s2),
			want:    Permissions{CanView: true, CanEdit: true},
		},
		{
			name: "section rule overrides module rule of the same role",
			rules: []AccessRule{
				rule(roleA, module, nil, true, true, true),
				rule(roleA, module, ptr(s1), true, false, false),
			},
			section: ptr(s1),
			want:    Permissions{CanView: true},
		},
		{
			name: "section rule can revoke view granted at module level",
			rules: []AccessRule{
				rule(roleA, module, nil, true, false, false),
				rule(roleA, module, ptr(s1), false, false, false),
			},
			section: ptr(s1),
			want:    Permissions{},
		},
		{
			name: "section rule of another section does not apply",
			rules: []AccessRule{
				rule(roleA, module, nil, true, false, false),
				rule(roleA, module, ptr(s2), true, true, true),
			},
			section: ptr(s1),
			want:    Permissions{CanView: true},
		},
		{
			name: "roles combine with OR",
			rules: []AccessRule{
				rule(roleA, module, ptr(s1), true, false, false),
				rule(roleB, module, ptr(s1), false, true, false),
			},
			section: ptr(s1),
			want:    Permissions{CanView: true, CanEdit: true},
		},
		{
			name: "one role's section override does not mask another role's module grant",
			rules: []AccessRule{
				rule(roleA, module, ptr(s1), false, false, false),
				rule(roleB, module, nil, true, false, true),
			},
			section: ptr(s1),
			want:    Permissions{CanView: true, CanDelete: true},
		},
		{
			name:  "module target ignores section rules",
			rules: []AccessRule{rule(roleA, module, ptr(s1), true, true, true)},
			want:  Permissions{},
		},
		{
			name: "inactive rules are ignored",
			rules: func() []AccessRule {
				r := rule(roleA, module, nil, true, true, true)
				r.IsActive = false
				return []AccessRule{r}
			}(),
			want: Permissions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(tt.rules, tt.section))
		})
	}
}

func TestResolveViewerScenario(t *testing.T) {
	h := newMemoryHierarchy()
	m1 := h.addModule()
	s1 := h.addSection(m1)
	viewer := h.addRole("Viewer", false)
	rules := &memoryRules{rules: []AccessRule{rule(viewer, m1, nil, true, false, false)}}
	resolver := NewResolver(rules, h)

	perms, err := resolver.Resolve(context.Background(), []uuid.UUID{viewer}, m1, &s1)
	require.NoError(t, err)
	assert.Equal(t, Permissions{CanView: true, CanEdit: false, CanDelete: false}, perms)
}

func TestResolveWithoutRulesDenies(t *testing.T) {
	h := newMemoryHierarchy()
	m1 := h.addModule()
	s1 := h.addSection(m1)
	role := h.addRole("Nobody", false)
	resolver := NewResolver(&memoryRules{}, h)

	for _, section := range []*uuid.UUID{nil, &s1} {
		perms, err := resolver.Resolve(context.Background(), []uuid.UUID{role}, m1, section)
		require.NoError(t, err)
		assert.Equal(t, Permissions{}, perms)
	}

	perms, err := resolver.Resolve(context.Background(), nil, m1, nil)
	require.NoError(t, err)
	assert.Equal(t, Permissions{}, perms)
}

func TestResolveMissingTargetsAreNotFound(t *testing.T) {
	h := newMemoryHierarchy()
	m1, m2 := h.addModule(), h.addModule()
	s2 := h.addSection(m2)
	resolver := NewResolver(&memoryRules{}, h)

	_, err := resolver.Resolve(context.Background(), nil, uuid.New(), nil)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = resolver.Resolve(context.Background(), nil, m1, ptr(uuid.New()))
	assert.True(t, apperrors.IsNotFound(err))

	// Section exists but in a different module
	_, err = resolver.Resolve(context.Background(), nil, m1, &s2)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAuthorize(t *testing.T) {
	h := newMemoryHierarchy()
	m1 := h.addModule()
	s1 := h.addSection(m1)
	viewer := h.addRole("Viewer", false)
	editor := h.addRole("Editor", false)
	rules := &memoryRules{rules: []AccessRule{
		rule(viewer, m1, nil, true, false, false),
		rule(editor, m1, &s1, true, true, false),
	}}
	resolver := NewResolver(rules, h)
	ctx := context.Background()

	viewerP := &models.Principal{RoleIDs: []uuid.UUID{viewer}}
	assert.NoError(t, resolver.Authorize(ctx, viewerP, ActionView, m1, &s1))

	err := resolver.Authorize(ctx, viewerP, ActionEdit, m1, &s1)
	require.Error(t, err)
	var aErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, apperrors.ReasonInsufficientPermission, aErr.Reason)

	both := &models.Principal{RoleIDs: []uuid.UUID{viewer, editor}}
	assert.NoError(t, resolver.Authorize(ctx, both, ActionEdit, m1, &s1))
	assert.True(t, apperrors.IsAuthorization(resolver.Authorize(ctx, both, ActionDelete, m1, &s1)))

	admin := &models.Principal{IsAdmin: true}
	assert.NoError(t, resolver.Authorize(ctx, admin, ActionDelete, m1, &s1))
	assert.True(t, apperrors.IsNotFound(resolver.Authorize(ctx, admin, ActionView, uuid.New(), nil)))
}

func TestSectionPermissions(t *testing.T) {
	h := newMemoryHierarchy()
	m1 := h.addModule()
	s1, s2 := h.addSection(m1), h.addSection(m1)
	role := h.addRole("Learner", false)
	rules := &memoryRules{rules: []AccessRule{
		rule(role, m1, nil, true, false, false),
		rule(role, m1, &s2, false, false, false),
	}}
	resolver := NewResolver(rules, h)

	perms, err := resolver.SectionPermissions(context.Background(), &models.Principal{RoleIDs: []uuid.UUID{role}}, m1, []uuid.UUID{s1, s2})
	require.NoError(t, err)
	assert.True(t, perms[s1].CanView)
	assert.False(t, perms[s2].CanView)
}

func TestViewableModules(t *testing.T) {
	h := newMemoryHierarchy()
	m1, m2, m3 := h.addModule(), h.addModule(), h.addModule()
	s2 := h.addSection(m2)
	role := h.addRole("Learner", false)
	rules := &memoryRules{rules: []AccessRule{
		rule(role, m1, nil, true, false, false),
		rule(role, m2, &s2, true, false, false),
		rule(role, m3, nil, false, true, false),
	}}
	resolver := NewResolver(rules, h)

	set, err := resolver.ViewableModules(context.Background(), &models.Principal{RoleIDs: []uuid.UUID{role}})
	require.NoError(t, err)
	assert.True(t, set.Contains(m1))
	assert.True(t, set.Contains(m2))
	assert.False(t, set.Contains(m3))
	assert.False(t, set.All())

	all, err := resolver.ViewableModules(context.Background(), &models.Principal{IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, all.Contains(uuid.New()))
}
