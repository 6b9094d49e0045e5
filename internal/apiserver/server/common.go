// Package server 路由配置与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义、健康检查与欢迎页
//   - handler.go: 路由装配，学生/教师两个角色共用 person 包
//   - middleware.go: CORS、请求 ID 与访问日志
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"afro-class/internal/apiserver/auth"
	"afro-class/internal/apiserver/avatar"
	"afro-class/internal/shared/eventbus"
	"afro-class/internal/shared/storage"
	"afro-class/pkg/logging"
)

// WelcomeMessage 根路径返回的欢迎文本
const WelcomeMessage = "Welcome to AFRO Class!"

// Handler API 处理器
//
// 依赖说明：
//   - store: 持久化存储（成员与文件记录）
//   - events: 账户事件总线（Redis Stream 或 NoOp）
//   - objects: 头像对象存储，可为 nil
type Handler struct {
	store      storage.PersistentStore
	events     eventbus.AccountEventBus
	objects    avatar.ObjectStore
	authConfig auth.Config

	corsOrigins []string
	logger      *logging.Logger
	registry    *prometheus.Registry
	metrics     *Metrics
}

// NewHandler 创建 Handler 实例，events 为 nil 时使用 NoOp 事件总线
func NewHandler(store storage.PersistentStore, events eventbus.AccountEventBus, authCfg auth.Config) *Handler {
	if events == nil {
		events = eventbus.NewNoOpEventBus()
	}
	reg := prometheus.NewRegistry()
	return &Handler{
		store:       store,
		events:      events,
		authConfig:  authCfg,
		corsOrigins: []string{"*"},
		logger:      logging.Default("api-server"),
		registry:    reg,
		metrics:     NewMetrics("afro_class", reg),
	}
}

// SetObjectStore 设置头像对象存储
func (h *Handler) SetObjectStore(objects avatar.ObjectStore) {
	h.objects = objects
}

// SetCORSOrigins 设置允许的跨域来源，空列表表示允许所有
func (h *Handler) SetCORSOrigins(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h.corsOrigins = origins
}

// SetLogger 设置访问日志使用的日志器
func (h *Handler) SetLogger(l *logging.Logger) {
	if l != nil {
		h.logger = l
	}
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Welcome 欢迎页
//
// 路由: GET /
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(WelcomeMessage))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
