// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"

	"gorm.io/gorm"

	"ragbot-go/internal/model"
	"ragbot-go/internal/repository"
	"ragbot-go/pkg/hash"
	"ragbot-go/pkg/log"
	"ragbot-go/pkg/token"
)

var (
	// ErrEmailTaken 表示注册邮箱已被占用。
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 表示登录凭证无效。
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService 接口定义了所有与用户身份相关的业务操作。
type UserService interface {
	Register(name, email, password string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册的业务逻辑，成功后直接签发身份 token。
func (s *userService) Register(name, email, password string) (*model.User, string, error) {
	// 1. 检查邮箱是否已注册
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	// 2. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	// 3. 创建新用户
	newUser := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, "", err
	}

	// 4. 签发身份 token
	tokenString, err := s.jwtManager.GenerateToken(newUser.ID, newUser.Email)
	if err != nil {
		log.Errorf("[UserService] 注册后签发 token 失败, email: %s, error: %v", email, err)
		return nil, "", err
	}

	return newUser, tokenString, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(email, password string) (*model.User, string, error) {
	// 1. 查找用户
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	// 2. 验证密码
	if !hash.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	// 3. 签发身份 token
	tokenString, err := s.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, tokenString, nil
}
