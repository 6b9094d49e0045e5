package model

import "time"

// File 上传文件记录（目前只有头像）
//
// 对象内容保存在对象存储中，Key 为对象键。
type File struct {
	ID          string    `json:"_id" bson:"_id"`
	Key         string    `json:"key" bson:"key"`
	Name        string    `json:"name" bson:"name"`
	ContentType string    `json:"contentType" bson:"contentType"`
	Size        int64     `json:"size" bson:"size"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// DefaultAvatarFile 返回默认头像的文件记录
func DefaultAvatarFile() *File {
	return &File{
		ID:          DefaultAvatarID,
		Key:         "avatars/default.png",
		Name:        "default.png",
		ContentType: "image/png",
		CreatedAt:   time.Now().UTC(),
	}
}
