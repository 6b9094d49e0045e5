package server

import (
	"net/http"

	"afro-class/internal/apiserver/avatar"
	"afro-class/internal/apiserver/person"
	"afro-class/internal/apiserver/validation"
)

// APIPrefix 业务接口前缀
const APIPrefix = "/api/v1"

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 基础:
//   - GET /         - 欢迎页
//   - GET /health   - 服务健康检查
//   - GET /metrics  - Prometheus 指标
//
// 学生 (/api/v1/student) 与教师 (/api/v1/teacher):
//   - POST   /signup  - 注册
//   - POST   /login   - 登录
//   - GET    /        - 列表（需认证）
//   - GET    /{id}    - 详情（需认证）
//   - POST   /{id}    - 详情，兼容旧客户端（需认证）
//   - PUT    /{id}    - 更新（需认证）
//   - DELETE /{id}    - 删除（需认证）
//
// 文件:
//   - GET /api/v1/files/{id} - 下载头像
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Welcome)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler(h.registry))

	// 头像
	avatars := avatar.NewService(h.store, h.objects)
	avatar.NewHandler(avatars).RegisterRoutes(mux)

	// 学生与教师使用同一套实现，按角色各挂载一次
	v := validation.New()
	for _, profile := range []person.Profile{person.StudentProfile(), person.TeacherProfile()} {
		svc := person.NewService(profile, h.store, h.authConfig, v, h.events, avatars)
		svc.SetRecorder(h.metrics)
		person.NewHandler(svc, h.authConfig).RegisterRoutes(mux, APIPrefix+"/"+string(profile.Role))
	}

	// 中间件由内到外：指标 → 访问日志 → CORS
	handler := h.metrics.MetricsMiddleware(mux)
	handler = accessLogMiddleware(h.logger)(handler)
	handler = corsMiddleware(h.corsOrigins)(handler)
	return handler
}
