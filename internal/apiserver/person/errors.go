package person

import "errors"

var (
	// ErrEmailTaken 邮箱已被该角色注册
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNameTaken 用户名已被该角色注册
	ErrUserNameTaken = errors.New("userName already registered")
	// ErrMissingCredentials 登录缺少邮箱或密码
	ErrMissingCredentials = errors.New("missing email or password")
	// ErrInvalidCredentials 邮箱不存在或密码错误，两种情况不做区分
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrMissingID 路径为字面量 id 且请求体中也没有 id
	ErrMissingID = errors.New("missing id")
)
