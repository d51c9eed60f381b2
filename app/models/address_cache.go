package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressCache bản ghi cache kết quả parse, lưu trong MongoDB
type AddressCache struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RawFingerprint string             `bson:"raw_fingerprint" json:"raw_fingerprint"` // sha256 của địa chỉ đã làm sạch
	CanonicalText  string             `bson:"canonical_text" json:"canonical_text"`   // FullAddress + Detail
	ParsedResult   ParsedAddress      `bson:"parsed_result" json:"parsed_result"`     // Kết quả parse
	DatasetVersion string             `bson:"dataset_version" json:"dataset_version"` // Phiên bản dataset đã dùng
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed   time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount    int                `bson:"access_count" json:"access_count"`
}

// NewAddressCache tạo mới một AddressCache
func NewAddressCache(fingerprint string, result ParsedAddress, datasetVersion string) *AddressCache {
	now := time.Now()
	return &AddressCache{
		RawFingerprint: fingerprint,
		CanonicalText:  result.String(),
		ParsedResult:   result,
		DatasetVersion: datasetVersion,
		CreatedAt:      now,
		LastAccessed:   now,
		AccessCount:    1,
	}
}

// UpdateAccess cập nhật thông tin truy cập
func (ac *AddressCache) UpdateAccess() {
	ac.LastAccessed = time.Now()
	ac.AccessCount++
}

// IsExpired kiểm tra cache có hết hạn không (dựa trên thời gian tạo)
func (ac *AddressCache) IsExpired(ttl time.Duration) bool {
	return time.Since(ac.CreatedAt) > ttl
}

// IsValidDatasetVersion kiểm tra phiên bản dataset có khớp không
func (ac *AddressCache) IsValidDatasetVersion(currentVersion string) bool {
	return ac.DatasetVersion == currentVersion
}
