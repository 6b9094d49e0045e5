package model

import "go.mongodb.org/mongo-driver/v2/bson"

// NewID 生成 24 位十六进制 ID（ObjectID 格式，所有存储驱动通用）
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID 是否为合法的 24 位十六进制 ID
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
