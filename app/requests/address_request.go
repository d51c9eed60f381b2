package requests

// ParseAddressRequest request parse địa chỉ đơn lẻ
type ParseAddressRequest struct {
	Address string       `json:"address"`           // Địa chỉ cần parse, chuỗi rỗng hợp lệ
	Options ParseOptions `json:"options,omitempty"` // Tùy chọn parse
}

// ParseOptions tùy chọn parse
type ParseOptions struct {
	UseCache   bool `json:"use_cache,omitempty"`   // Có sử dụng cache không
	CleanInput bool `json:"clean_input,omitempty"` // Bỏ nhãn, số điện thoại, gộp full-width trước khi parse
}

// BatchParseRequest request parse hàng loạt địa chỉ
type BatchParseRequest struct {
	Addresses []string     `json:"addresses" binding:"required,min=1"` // Giới hạn số lượng theo config batch
	Options   ParseOptions `json:"options,omitempty"`
}

// NormalizeRequest request chuẩn hoá bộ ba tỉnh / thành phố / quận
type NormalizeRequest struct {
	Province string `json:"province" binding:"required"`
	City     string `json:"city" binding:"required"`
	District string `json:"district,omitempty"` // Rỗng: chỉ chuẩn hoá tới cấp thành phố
	Policy   string `json:"policy,omitempty"`   // strict | verbatim, rỗng dùng mặc định của parser
}

// ValidateRequest request kiểm tra địa chỉ đủ ba cấp
type ValidateRequest struct {
	Address string       `json:"address"`
	Options ParseOptions `json:"options,omitempty"`
}

// ExportRequest request export danh mục hành chính
type ExportRequest struct {
	DryRun bool `json:"dry_run,omitempty"` // Chỉ build documents, không ghi ra ngoài
}
