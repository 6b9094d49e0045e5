package person

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
)

const (
	// maxBodyBytes JSON / 表单请求体上限
	maxBodyBytes = 1 << 20
	// maxMultipartMemory multipart 解析时保存在内存中的上限，超出部分写临时文件
	maxMultipartMemory = 8 << 20
	// avatarField multipart 中头像文件的字段名
	avatarField = "avatar"
)

// numericFields 表单提交时需要转换为数字的字段
var numericFields = map[string]bool{"grade": true}

// errBadBody 请求体无法解析
type errBadBody struct {
	msg string
}

func (e *errBadBody) Error() string { return e.msg }

// decodeRequest 将 JSON、url-encoded 表单或 multipart 请求体解析到 dst
//
// multipart 请求中的 avatar 文件部分单独返回；空请求体视为空对象。
func decodeRequest(r *http.Request, dst interface{}) (*multipart.FileHeader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, &errBadBody{msg: "invalid form body"}
		}
		return nil, decodeForm(r.PostForm, dst)

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, &errBadBody{msg: "invalid multipart body"}
		}
		if err := decodeForm(r.MultipartForm.Value, dst); err != nil {
			return nil, err
		}
		if files := r.MultipartForm.File[avatarField]; len(files) > 0 {
			return files[0], nil
		}
		return nil, nil

	default:
		if r.Body == nil || r.Body == http.NoBody {
			return nil, nil
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(dst); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, jsonError(err)
		}
		return nil, nil
	}
}

// decodeForm 表单字段转为 JSON 再解码，与 JSON 请求共用同一套字段定义
//
// 同名多值转为列表，numericFields 中的字段尝试转为数字。
func decodeForm(values map[string][]string, dst interface{}) error {
	m := make(map[string]interface{}, len(values))
	for key, vals := range values {
		switch {
		case len(vals) == 0:
			continue
		case len(vals) > 1:
			m[key] = vals
		case numericFields[key]:
			if f, err := strconv.ParseFloat(vals[0], 64); err == nil {
				m[key] = f
			} else {
				m[key] = vals[0]
			}
		default:
			m[key] = vals[0]
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return &errBadBody{msg: "invalid form body"}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return jsonError(err)
	}
	return nil
}

// jsonError 将解码错误转换为可读信息
func jsonError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &errBadBody{msg: fmt.Sprintf("%q must be a %s", typeErr.Field, typeName(typeErr.Type))}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &errBadBody{msg: "invalid JSON body"}
	}
	// StringList 等自定义解码错误
	return &errBadBody{msg: "invalid request body"}
}

// typeName 期望类型的描述
func typeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32:
		return "number"
	case reflect.Slice:
		return "list"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return "value"
	}
}

// bodyID 请求体中的 id 或 _id
type bodyID struct {
	ID  string `json:"id"`
	OID string `json:"_id"`
}

func (b bodyID) value() string {
	if b.ID != "" {
		return b.ID
	}
	return b.OID
}
