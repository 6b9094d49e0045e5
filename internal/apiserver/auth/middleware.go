package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/storage"
)

// maxTokenBodyBytes 从请求体查找 token 时最多读取的字节数，超出部分原样保留给后续 handler
const maxTokenBodyBytes = 8 << 20

// PersonLookup 中间件解析令牌主体所需的存储能力
type PersonLookup interface {
	GetPersonByID(ctx context.Context, role model.Role, id string) (*model.Person, error)
}

// ExtractToken 按优先级从请求中提取令牌
//
//  1. Authorization 头：恰好两段时取第二段，否则取整个值
//  2. 请求体 token 字段（JSON / 表单），读取后恢复请求体
//  3. 原始 Cookie 头（仅 legacyCookie 开启时）
//  4. 名为 jwt 的 Cookie
func ExtractToken(r *http.Request, legacyCookie bool) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if parts := strings.Split(h, " "); len(parts) == 2 {
			return parts[1]
		}
		return h
	}

	if token := tokenFromBody(r); token != "" {
		return token
	}

	if legacyCookie {
		if token := tokenFromRawCookie(r.Header.Get("Cookie")); token != "" {
			return token
		}
	}

	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

// tokenFromRawCookie 取 Cookie 头第一个 "=" 之后到 ";" 之前的值
func tokenFromRawCookie(header string) string {
	_, value, ok := strings.Cut(header, "=")
	if !ok {
		return ""
	}
	value, _, _ = strings.Cut(value, ";")
	return strings.TrimSpace(value)
}

// tokenFromBody 读取请求体中的 token 字段，并把请求体还原
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	switch mediaType {
	case "application/json", "application/x-www-form-urlencoded", "multipart/form-data":
	default:
		return ""
	}

	orig := r.Body
	buf, err := io.ReadAll(io.LimitReader(orig, maxTokenBodyBytes))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), orig), orig}
	if err != nil {
		return ""
	}

	switch mediaType {
	case "application/json":
		var body struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(buf, &body) == nil {
			return body.Token
		}
	case "application/x-www-form-urlencoded":
		if values, err := url.ParseQuery(string(buf)); err == nil {
			return values.Get("token")
		}
	case "multipart/form-data":
		return tokenFromMultipart(buf, params["boundary"])
	}
	return ""
}

func tokenFromMultipart(buf []byte, boundary string) string {
	if boundary == "" {
		return ""
	}
	mr := multipart.NewReader(bytes.NewReader(buf), boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			return ""
		}
		if part.FormName() == "token" && part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, 4096))
			part.Close()
			if err != nil {
				return ""
			}
			return strings.TrimSpace(string(value))
		}
		part.Close()
	}
}

// Middleware 创建按角色校验的认证中间件
//
// 每个请求都会重新查询成员记录，令牌对应的成员不存在于该角色集合时拒绝访问。
func Middleware(cfg Config, role model.Role, people PersonLookup) func(http.Handler) http.Handler {
	label := role.Label()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cfg.LegacyCookieFallback)
			if token == "" {
				writeAuthError(w, http.StatusBadRequest, label+" not authenticated!")
				return
			}

			claims, err := ParseToken(cfg, token)
			if err != nil {
				log.Printf("[auth] %s token rejected: %v", role, err)
				writeAuthError(w, http.StatusBadRequest, label+" not authenticated. The token sent is bad or expired.")
				return
			}

			person, err := people.GetPersonByID(r.Context(), role, claims.Subject)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					writeAuthError(w, http.StatusBadRequest, label+" not authenticated or token sent is bad or expired.")
					return
				}
				log.Printf("[auth] %s lookup failed: %v", role, err)
				writeAuthError(w, http.StatusInternalServerError, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPerson(r.Context(), person)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
