// Package aegauth 负责用户表与 JWT 鉴权中间件
package aegauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Issuer 是签发 JWT 时写入的 iss
const Issuer = "RecordAegis"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrInvalidToken 表示 JWT 无效、过期或解析失败。
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidCredentials 表示用户名或密码错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)

/* ---------- DB schema and operations ---------- */

// InitUserTable 初始化用户表 (如果不存在)
func InitUserTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
       CREATE TABLE IF NOT EXISTS _user(
          id INTEGER PRIMARY KEY AUTOINCREMENT,
          username TEXT UNIQUE NOT NULL,
          password_hash TEXT NOT NULL,
          role TEXT NOT NULL
       );
    `)
	if err != nil {
		return fmt.Errorf("创建 _user 表失败: %w", err)
	}
	return nil
}

// UserCount 返回用户表中的用户数量
func UserCount(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM _user`).Scan(&n); err != nil {
		return 0, fmt.Errorf("统计用户数量失败: %w", err)
	}
	return n, nil
}

// CreateUser 创建用户，密码以 bcrypt 哈希保存
func CreateUser(ctx context.Context, db *sql.DB, user, pass, role string) (int64, error) {
	if user == "" || pass == "" {
		return 0, errors.New("用户名或密码不能为空")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("生成密码哈希失败: %w", err)
	}
	res, err := db.ExecContext(ctx, `
       INSERT INTO _user(username, password_hash, role)
       VALUES (?, ?, ?)`, user, string(hash), role)
	if err != nil {
		return 0, fmt.Errorf("插入用户 '%s' 失败: %w", user, err)
	}
	return res.LastInsertId()
}

// EnsureBootstrapUser 在用户表为空且提供了凭据时创建初始管理员，返回是否创建
func EnsureBootstrapUser(ctx context.Context, db *sql.DB, user, pass string) (bool, error) {
	if user == "" {
		return false, nil
	}
	n, err := UserCount(ctx, db)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := CreateUser(ctx, db, user, pass, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

// CheckUser 校验用户名和密码，成功则返回用户 ID 与角色
func CheckUser(ctx context.Context, db *sql.DB, user, pass string) (int64, string, error) {
	var (
		id   int64
		hash string
		role string
	)
	err := db.QueryRowContext(ctx, `SELECT id, password_hash, role FROM _user WHERE username = ?`, user).
		Scan(&id, &hash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrInvalidCredentials
		}
		return 0, "", fmt.Errorf("查询用户 '%s' 失败: %w", user, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) != nil {
		return 0, "", ErrInvalidCredentials
	}
	return id, role, nil
}

// GetUserByID 检索给定用户ID的用户名和角色
func GetUserByID(ctx context.Context, db *sql.DB, id int64) (username, role string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT username, role FROM _user WHERE id = ?`, id).
		Scan(&username, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("查询用户 ID %d 失败: %w", id, err)
	}
	return username, role, true, nil
}

/* ---------- JWT Handling ---------- */

// Claim 定义 JWT 的载荷结构
type Claim struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator 持有用户表所在的数据库与签名密钥
type Authenticator struct {
	DB  *sql.DB
	key []byte
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

// NewAuthenticator 创建 Authenticator 实例
func NewAuthenticator(db *sql.DB, secret string, ttl time.Duration, logger *zap.Logger) (*Authenticator, error) {
	if db == nil {
		return nil, errors.New("NewAuthenticator 接收到空的数据库连接")
	}
	if secret == "" {
		return nil, errors.New("JWT 密钥不能为空")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{DB: db, key: []byte(secret), ttl: ttl, log: logger, now: time.Now}, nil
}

// GenToken 生成一个新的 JWT
func (a *Authenticator) GenToken(uid int64, role string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claim{
		ID:   uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("签名 JWT 失败: %w", err)
	}
	return signed, exp, nil
}

// ParseToken 解析并验证 JWT 字符串
func (a *Authenticator) ParseToken(tokenString string) (*Claim, error) {
	claims := &Claim{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w (detail: %v)", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Login 校验凭据并签发 token
func (a *Authenticator) Login(ctx context.Context, user, pass string) (string, time.Time, error) {
	id, role, err := CheckUser(ctx, a.DB, user, pass)
	if err != nil {
		return "", time.Time{}, err
	}
	return a.GenToken(id, role)
}

/* ---------- 中间件 (Middleware) ---------- */

const claimKey = "aegauth.claim"

// ClaimFrom 返回中间件存入的 Claim，未认证时为 nil
func ClaimFrom(c *gin.Context) *Claim {
	val, ok := c.Get(claimKey)
	if !ok {
		return nil
	}
	claims, _ := val.(*Claim)
	return claims
}

// Middleware 要求请求带有有效的 Bearer Token，且 Token 对应的用户仍存在
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenString == "" {
			a.abort(c, "缺少认证信息")
			return
		}
		claims, err := a.ParseToken(tokenString)
		if err != nil {
			a.log.Debug("[aegauth] Token 校验失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
			a.abort(c, "认证信息无效或已过期")
			return
		}
		_, _, exists, err := GetUserByID(c.Request.Context(), a.DB, claims.ID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !exists {
			a.log.Info("[aegauth] Token 对应的用户已不存在", zap.Int64("uid", claims.ID), zap.String("ip", c.ClientIP()))
			a.abort(c, "认证信息无效或已过期")
			return
		}
		c.Set(claimKey, claims)
		c.Next()
	}
}

func (a *Authenticator) abort(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="`+Issuer+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": msg})
}
