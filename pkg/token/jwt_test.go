package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJWTManager_GenerateAndVerify 测试 token 签发与验证的完整往返
func TestJWTManager_GenerateAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", 2)

	tokenString, err := manager.GenerateToken(42, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := manager.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	// 有效期约为 2 小时
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

// TestJWTManager_ExpiredToken 测试过期 token 返回 ErrTokenExpired
func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 2)

	// 直接构造一个已过期的 token，使用相同密钥签名
	claims := CustomClaims{
		UserID: 7,
		Email:  "bob@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-3 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = manager.VerifyToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// TestJWTManager_InvalidToken 测试各类无效 token 返回 ErrTokenInvalid
func TestJWTManager_InvalidToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 2)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "格式错误的 token",
			token: "not-a-jwt",
		},
		{
			name: "错误密钥签名的 token",
			token: func() string {
				other := NewJWTManager("other-secret", 2)
				s, _ := other.GenerateToken(1, "eve@example.com")
				return s
			}(),
		},
		{
			name:  "空 token",
			token: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.VerifyToken(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

// TestNewJWTManager_DefaultExpiry 测试过期时间配置为 0 时默认 2 小时
func TestNewJWTManager_DefaultExpiry(t *testing.T) {
	manager := NewJWTManager("test-secret", 0)
	assert.Equal(t, 2*time.Hour, manager.tokenDur)
}
