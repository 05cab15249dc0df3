package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

type memoryRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryRepo(seed ...User) *memoryRepo {
	repo := &memoryRepo{users: map[int64]*User{}, nextID: 1}
	for _, u := range seed {
		user := u
		repo.users[user.ID] = &user
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
	}
	return repo
}

func (m *memoryRepo) List(ctx context.Context, page shared.Pagination) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryRepo) Create(ctx context.Context, user User) (*User, error) {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = &user
	copied := user
	return &copied, nil
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	u, ok := m.users[id]
	if !ok || u.Status != from {
		return shared.ErrInvalidTransition
	}
	u.Status = to
	return nil
}

func (m *memoryRepo) UpdateRole(ctx context.Context, id int64, role authz.Role) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *memoryRepo) RoleOf(ctx context.Context, id int64) (authz.Role, error) {
	u, ok := m.users[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return u.Role, nil
}

func seedUsers() (*memoryRepo, *Service) {
	repo := newMemoryRepo(
		User{ID: 1, Username: "root", Role: authz.RoleAdmin, Status: StatusActive},
		User{ID: 2, Username: "lead", Role: authz.RoleManager, Status: StatusActive},
		User{ID: 3, Username: "dev", Role: authz.RoleDeveloper, Status: StatusActive},
		User{ID: 4, Username: "newbie", Role: authz.RoleGuest, Status: StatusPending},
	)
	return repo, NewService(repo, nil)
}

func TestChangeRoleByAdmin(t *testing.T) {
	_, svc := seedUsers()

	updated, err := svc.ChangeRole(context.Background(), 1, 2, authz.RoleDeveloper)
	require.NoError(t, err)
	require.Equal(t, authz.RoleDeveloper, updated.Role)
}

func TestChangeRoleDeniedForPeer(t *testing.T) {
	_, svc := seedUsers()

	_, err := svc.ChangeRole(context.Background(), 2, 1, authz.RoleViewer)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleDeniedSelfElevationViaSubordinate(t *testing.T) {
	_, svc := seedUsers()

	_, err := svc.ChangeRole(context.Background(), 2, 3, authz.RoleManager)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleUsesFreshActorRole(t *testing.T) {
	repo, svc := seedUsers()

	// The manager was downgraded out-of-band after their token was minted;
	// the stored role, not the token, decides.
	repo.users[2].Role = authz.RoleViewer
	_, err := svc.ChangeRole(context.Background(), 2, 4, authz.RoleGuest)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	_, svc := seedUsers()

	_, err := svc.ChangeRole(context.Background(), 1, 3, authz.Role("root"))
	require.Error(t, err)
}

func TestChangeStatusValidTransition(t *testing.T) {
	_, svc := seedUsers()

	updated, err := svc.ChangeStatus(context.Background(), 1, 4, StatusActive)
	require.NoError(t, err)
	require.Equal(t, StatusActive, updated.Status)
}

func TestChangeStatusRejectsIllegalEdge(t *testing.T) {
	repo, svc := seedUsers()
	repo.users[3].Status = StatusArchived

	_, err := svc.ChangeStatus(context.Background(), 1, 3, StatusActive)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestCreateStartsPending(t *testing.T) {
	_, svc := seedUsers()

	user, err := svc.Create(context.Background(), "Casey", "casey@taskhive.dev", "Casey Quinn", "s3cret-pass", authz.RoleDeveloper)
	require.NoError(t, err)
	require.Equal(t, StatusPending, user.Status)
	require.Equal(t, "casey", user.Username)
	require.NotEmpty(t, user.PasswordHash)
}
