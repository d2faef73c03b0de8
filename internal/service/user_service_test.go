package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ragbot-go/internal/model"
	"ragbot-go/pkg/token"
)

type fakeUserRepo struct {
	users  map[string]*model.User // 以邮箱为键
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *u
	return &found, nil
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestUserService() (UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewUserService(repo, token.NewJWTManager("test-secret", 2)), repo
}

// TestUserService_Register 测试注册流程：成功签发 token、重复邮箱被拒绝
func TestUserService_Register(t *testing.T) {
	t.Run("注册成功", func(t *testing.T) {
		svc, _ := newTestUserService()

		user, tokenString, err := svc.Register("Alice", "alice@example.com", "password123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEmpty(t, tokenString)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "password123", user.PasswordHash) // 密码必须经过哈希
	})

	t.Run("邮箱已被占用", func(t *testing.T) {
		svc, _ := newTestUserService()
		_, _, err := svc.Register("Alice", "alice@example.com", "password123")
		require.NoError(t, err)

		_, _, err = svc.Register("Alice2", "alice@example.com", "otherpassword")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

// TestUserService_Login 测试登录流程：凭证校验与统一的错误返回
func TestUserService_Login(t *testing.T) {
	svc, _ := newTestUserService()
	_, _, err := svc.Register("Bob", "bob@example.com", "correct-password")
	require.NoError(t, err)

	t.Run("登录成功", func(t *testing.T) {
		user, tokenString, err := svc.Login("bob@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", user.Email)
		assert.NotEmpty(t, tokenString)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, _, err := svc.Login("bob@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("用户不存在", func(t *testing.T) {
		// 与密码错误返回同一个错误，不泄露账号是否存在
		_, _, err := svc.Login("nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
