package person

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"afro-class/internal/apiserver/auth"
	"afro-class/internal/apiserver/avatar"
	"afro-class/internal/apiserver/validation"
	"afro-class/internal/config"
	"afro-class/internal/shared/storage"
)

// literalID 旧客户端请求 PUT/DELETE /id，真实 ID 放在请求体中
const literalID = "id"

// Handler 单个角色的 HTTP 处理器
type Handler struct {
	svc     *Service
	cfg     auth.Config
	protect func(http.Handler) http.Handler
}

// NewHandler 创建处理器，受保护路由使用该角色的认证中间件
func NewHandler(svc *Service, cfg auth.Config) *Handler {
	return &Handler{
		svc:     svc,
		cfg:     cfg,
		protect: auth.Middleware(cfg, svc.profile.Role, svc.store),
	}
}

// RegisterRoutes 在 prefix（如 /api/v1/student）下注册路由
//
//   - POST   {prefix}/signup  注册
//   - POST   {prefix}/login   登录
//   - GET    {prefix}/        列表（需认证）
//   - GET    {prefix}/{id}    详情（需认证）
//   - POST   {prefix}/{id}    详情，兼容旧客户端（需认证）
//   - PUT    {prefix}/{id}    更新（需认证）
//   - DELETE {prefix}/{id}    删除（需认证）
func (h *Handler) RegisterRoutes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("POST "+prefix+"/signup", h.Signup)
	mux.HandleFunc("POST "+prefix+"/login", h.Login)

	list := h.protect(http.HandlerFunc(h.List))
	mux.Handle("GET "+prefix, list)
	mux.Handle("GET "+prefix+"/{$}", list)

	get := h.protect(http.HandlerFunc(h.Get))
	mux.Handle("GET "+prefix+"/{id}", get)
	mux.Handle("POST "+prefix+"/{id}", get)
	mux.Handle("PUT "+prefix+"/{id}", h.protect(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+prefix+"/{id}", h.protect(http.HandlerFunc(h.Delete)))
}

// response 统一响应格式
type response struct {
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateRequest struct {
	validation.PersonUpdate
	bodyID
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// Signup 注册
// POST {prefix}/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	req := h.svc.profile.NewSignup()
	upload, err := decodeRequest(r, req)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Signup(r.Context(), req, upload)
	if err != nil {
		h.writeServiceError(w, "signup", err)
		return
	}

	log.Printf("[person.signup] %s %s registered", h.svc.profile.Role, res.Person.ID)
	h.setToken(w, res.Token)
	writeJSON(w, http.StatusCreated, response{
		Token:   res.Token,
		Message: h.svc.profile.msgRegistered(),
		Data:    res.Person,
	})
}

// Login 登录
// POST {prefix}/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}

	h.setToken(w, res.Token)
	writeJSON(w, http.StatusOK, response{
		Token:   res.Token,
		Message: h.svc.profile.msgLoggedIn(),
		Data:    res.Person,
	})
}

// List 列表
// GET {prefix}/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, response{
		Message: h.svc.profile.msgListed(),
		Data:    people,
	})
}

// Get 详情
// GET|POST {prefix}/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == literalID {
		var b bodyID
		if _, err := decodeRequest(r, &b); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id = b.value()
	}
	if id == "" {
		h.writeServiceError(w, "get", ErrMissingID)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, response{
		Message: h.svc.profile.msgRetrieved(),
		Data:    p,
	})
}

// Update 更新资料
// PUT {prefix}/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if _, err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	id := r.PathValue("id")
	if id == literalID {
		id = req.bodyID.value()
	}
	if id == "" {
		h.writeServiceError(w, "update", ErrMissingID)
		return
	}

	p, err := h.svc.Update(r.Context(), id, &req.PersonUpdate)
	if err != nil {
		h.writeServiceError(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, response{
		Message: h.svc.profile.msgUpdated(),
		Data:    p,
	})
}

// Delete 删除
// DELETE {prefix}/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == literalID {
		var b bodyID
		if _, err := decodeRequest(r, &b); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id = b.value()
	}
	if id == "" {
		h.writeServiceError(w, "delete", ErrMissingID)
		return
	}

	p, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "delete", err)
		return
	}
	log.Printf("[person.delete] %s %s deleted", h.svc.profile.Role, p.ID)
	writeJSON(w, http.StatusOK, response{
		Message: h.svc.profile.msgDeleted(),
		Data:    p,
	})
}

// ============================================================================
// 工具函数
// ============================================================================

// setToken 通过响应头 token 与 HttpOnly Cookie 下发令牌
func (h *Handler) setToken(w http.ResponseWriter, token string) {
	ttl := h.cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	w.Header().Set("token", token)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeServiceError 将服务层错误映射为 HTTP 响应
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var verrs validation.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		msg := verrs.First()
		writeJSON(w, http.StatusBadRequest, response{Error: msg, Message: msg})
	case errors.Is(err, ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, response{
			Error:   "That email is already registered",
			Message: "Must provide unique email",
		})
	case errors.Is(err, ErrUserNameTaken):
		writeJSON(w, http.StatusBadRequest, response{
			Error:   "That user Name is already registered",
			Message: "Must provide unique userName",
		})
	case errors.Is(err, ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Must provide Email and password.")
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid Email or password.")
	case errors.Is(err, ErrMissingID):
		writeError(w, http.StatusBadRequest, "Must provide id")
	case errors.Is(err, avatar.ErrUnavailable):
		writeError(w, http.StatusBadRequest, "Avatar upload is not available")
	case errors.Is(err, avatar.ErrInvalidAvatar):
		writeError(w, http.StatusBadRequest, `"avatar" must be an image no larger than 5 MiB`)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, h.svc.profile.msgNotFound())
	default:
		log.Printf("[person.%s] %s error: %v", op, h.svc.profile.Role, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Error: message})
}
