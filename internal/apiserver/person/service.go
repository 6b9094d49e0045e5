package person

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"afro-class/internal/apiserver/auth"
	"afro-class/internal/apiserver/avatar"
	"afro-class/internal/apiserver/validation"
	"afro-class/internal/shared/eventbus"
	"afro-class/internal/shared/model"
	"afro-class/internal/shared/storage"
)

// Avatars 注册与更新时使用的头像能力，*avatar.Service 实现此接口
type Avatars interface {
	Enabled() bool
	Save(ctx context.Context, fh *multipart.FileHeader) (*model.File, error)
	Remove(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// AttemptRecorder 记录认证尝试结果（Prometheus 指标）
type AttemptRecorder interface {
	RecordAuthAttempt(role model.Role, op, result string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthAttempt(model.Role, string, string) {}

// Result 注册/登录结果
type Result struct {
	Person *model.Person
	Token  string
}

// Service 单个角色的账户服务
//
// 密码哈希只在这里完成：注册时与更新中出现 password 时。
type Service struct {
	profile   Profile
	store     storage.PersonStore
	auth      auth.Config
	validator *validation.Validator
	events    eventbus.AccountEventBus
	avatars   Avatars
	recorder  AttemptRecorder
}

// NewService 创建账户服务
//
// events 为 nil 时使用 NoOp 事件总线，avatars 为 nil 时不支持头像上传且不校验 avatar 引用。
func NewService(profile Profile, store storage.PersonStore, cfg auth.Config, v *validation.Validator, events eventbus.AccountEventBus, avatars Avatars) *Service {
	if events == nil {
		events = eventbus.NewNoOpEventBus()
	}
	if v == nil {
		v = validation.New()
	}
	return &Service{
		profile:   profile,
		store:     store,
		auth:      cfg,
		validator: v,
		events:    events,
		avatars:   avatars,
		recorder:  noopRecorder{},
	}
}

// SetRecorder 设置认证指标记录器
func (s *Service) SetRecorder(r AttemptRecorder) {
	if r != nil {
		s.recorder = r
	}
}

// Profile 返回角色能力集
func (s *Service) Profile() Profile {
	return s.profile
}

// Signup 注册
//
// 顺序：校验 → 邮箱唯一 → 用户名唯一 → 保存头像 → 哈希 → 写入 → 签发令牌。
// 写入时的唯一索引冲突与预检查返回相同的错误。
func (s *Service) Signup(ctx context.Context, req validation.Signup, upload *multipart.FileHeader) (*Result, error) {
	role := s.profile.Role
	res, err := s.signup(ctx, req, upload)
	s.recorder.RecordAuthAttempt(role, "signup", outcome(err))
	return res, err
}

func (s *Service) signup(ctx context.Context, req validation.Signup, upload *multipart.FileHeader) (*Result, error) {
	role := s.profile.Role

	if errs := s.validator.ValidateSignup(req); len(errs) > 0 {
		return nil, errs
	}
	common := req.Common()
	if upload == nil {
		if errs := s.checkAvatar(ctx, common.Avatar); len(errs) > 0 {
			return nil, errs
		}
	}

	if err := s.checkUnique(ctx, common.Email, common.UserName, ""); err != nil {
		return nil, err
	}

	p := common.Person(role)
	req.ApplyExtension(p)

	var uploaded *model.File
	if upload != nil {
		if s.avatars == nil || !s.avatars.Enabled() {
			return nil, avatar.ErrUnavailable
		}
		f, err := s.avatars.Save(ctx, upload)
		if err != nil {
			return nil, fmt.Errorf("save avatar: %w", err)
		}
		uploaded = f
		p.Avatar = f.ID
	}

	hash, err := s.auth.HashPassword(common.Password)
	if err != nil {
		s.discardAvatar(ctx, uploaded)
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	p.ID = model.NewID()
	p.PasswordHash = hash
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.CreatePerson(ctx, role, p); err != nil {
		s.discardAvatar(ctx, uploaded)
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, s.classifyDuplicate(ctx, p.Email, "")
		}
		return nil, fmt.Errorf("create %s: %w", role, err)
	}

	token, err := auth.IssueToken(s.auth, p.ID, role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publish(ctx, eventbus.AccountRegistered, p)
	return &Result{Person: p, Token: token}, nil
}

// Login 使用邮箱和密码登录
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	res, err := s.login(ctx, email, password)
	s.recorder.RecordAuthAttempt(s.profile.Role, "login", outcome(err))
	return res, err
}

func (s *Service) login(ctx context.Context, email, password string) (*Result, error) {
	role := s.profile.Role

	email = model.NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	p, err := s.store.GetPersonByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find %s by email: %w", role, err)
	}

	ok, err := auth.VerifyPassword(password, p.PasswordHash)
	if err != nil {
		log.Printf("[person.login] %s %s has a malformed password hash: %v", role, p.ID, err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.auth, p.ID, role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publish(ctx, eventbus.AccountLoggedIn, p)
	return &Result{Person: p, Token: token}, nil
}

// List 列出该角色全部成员，按创建时间倒序
func (s *Service) List(ctx context.Context) ([]*model.Person, error) {
	people, err := s.store.ListPeople(ctx, s.profile.Role)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.profile.Role, err)
	}
	return people, nil
}

// Get 按 ID 获取成员，非法 ID 视为不存在
func (s *Service) Get(ctx context.Context, id string) (*model.Person, error) {
	if !model.IsValidID(id) {
		return nil, storage.ErrNotFound
	}
	return s.store.GetPersonByID(ctx, s.profile.Role, id)
}

// Update 更新资料，只校验并写入出现的字段
//
// 出现 password 时重新哈希；邮箱与用户名变更需保持唯一。
func (s *Service) Update(ctx context.Context, id string, req *validation.PersonUpdate) (*model.Person, error) {
	role := s.profile.Role
	if !model.IsValidID(id) {
		return nil, storage.ErrNotFound
	}

	req.ForRole(role)
	if errs := s.validator.ValidateUpdate(req); len(errs) > 0 {
		return nil, errs
	}
	if req.IsEmpty() {
		return s.store.GetPersonByID(ctx, role, id)
	}
	if req.Avatar != nil {
		if errs := s.checkAvatar(ctx, *req.Avatar); len(errs) > 0 {
			return nil, errs
		}
	}

	var email, userName string
	if req.Email != nil {
		email = *req.Email
	}
	if req.UserName != nil {
		userName = *req.UserName
	}
	if err := s.checkUnique(ctx, email, userName, id); err != nil {
		return nil, err
	}

	upd := req.ToModel()
	if req.Password != nil {
		hash, err := s.auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	p, err := s.store.UpdatePerson(ctx, role, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, s.classifyDuplicate(ctx, email, id)
		}
		return nil, err
	}

	s.publish(ctx, eventbus.AccountUpdated, p)
	return p, nil
}

// Delete 删除成员，返回被删除的记录
func (s *Service) Delete(ctx context.Context, id string) (*model.Person, error) {
	if !model.IsValidID(id) {
		return nil, storage.ErrNotFound
	}
	p, err := s.store.DeletePerson(ctx, s.profile.Role, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, eventbus.AccountDeleted, p)
	return p, nil
}

// checkUnique 预检查邮箱与用户名（空字符串跳过），selfID 为更新时的本人 ID
func (s *Service) checkUnique(ctx context.Context, email, userName, selfID string) error {
	role := s.profile.Role
	if email != "" {
		existing, err := s.store.GetPersonByEmail(ctx, role, email)
		switch {
		case err == nil && existing.ID != selfID:
			return ErrEmailTaken
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("find %s by email: %w", role, err)
		}
	}
	if userName != "" {
		existing, err := s.store.GetPersonByUserName(ctx, role, userName)
		switch {
		case err == nil && existing.ID != selfID:
			return ErrUserNameTaken
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("find %s by userName: %w", role, err)
		}
	}
	return nil
}

// classifyDuplicate 写入时触发唯一约束，重新查询邮箱判断冲突字段
func (s *Service) classifyDuplicate(ctx context.Context, email, selfID string) error {
	if email != "" {
		existing, err := s.store.GetPersonByEmail(ctx, s.profile.Role, email)
		if err == nil && existing.ID != selfID {
			return ErrEmailTaken
		}
	}
	return ErrUserNameTaken
}

// checkAvatar avatar 字段必须引用已有文件或默认头像
func (s *Service) checkAvatar(ctx context.Context, id string) validation.ValidationErrors {
	if id == "" || id == model.DefaultAvatarID || s.avatars == nil {
		return nil
	}
	ok, err := s.avatars.Exists(ctx, id)
	if err != nil {
		log.Printf("[person] avatar lookup %s failed: %v", id, err)
		return nil
	}
	if ok {
		return nil
	}
	return validation.ValidationErrors{{
		Field:   "avatar",
		Message: `"avatar" must reference an uploaded file`,
		Value:   id,
		Rule:    "exists",
	}}
}

func (s *Service) discardAvatar(ctx context.Context, f *model.File) {
	if f == nil || s.avatars == nil {
		return
	}
	if err := s.avatars.Remove(ctx, f.ID); err != nil {
		log.Printf("[person] discard avatar %s failed: %v", f.ID, err)
	}
}

// publish 发布账户事件，失败只记录日志
func (s *Service) publish(ctx context.Context, t eventbus.AccountEventType, p *model.Person) {
	event := eventbus.NewAccountEvent(t, p.ID, p.Email)
	if err := s.events.PublishAccountEvent(ctx, s.profile.Role, event); err != nil {
		log.Printf("[person] publish %s event for %s failed: %v", t, p.ID, err)
	}
}

// outcome 认证指标中的结果标签
func outcome(err error) string {
	var verrs validation.ValidationErrors
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verrs):
		return "invalid"
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUserNameTaken):
		return "duplicate"
	case errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
