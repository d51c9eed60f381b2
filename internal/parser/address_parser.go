package parser

import (
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/gazetteer"
	"go.uber.org/zap"
)

// AddressParser parser địa chỉ chính. Chỉ đọc sau khi build, dùng chung
// giữa các goroutine không cần khóa.
type AddressParser struct {
	dataset    *gazetteer.Dataset
	index      *LookupIndex
	refs       *BackReferenceIndex
	resolver   *resolver
	normalizer *normalizer
	policy     NormalizePolicy
	logger     *zap.Logger
}

// Stats thống kê dataset và index
type Stats struct {
	DatasetVersion string           `json:"dataset_version"`
	Counts         gazetteer.Counts `json:"counts"`
	IndexedNames   int              `json:"indexed_names"`
	TrieNodes      int              `json:"trie_nodes"`
}

// New tạo AddressParser từ dataset embed
func New(opts ...Option) (*AddressParser, error) {
	ds, err := gazetteer.Embedded()
	if err != nil {
		return nil, err
	}
	return NewFromDataset(ds, opts...)
}

// NewFromDataset tạo AddressParser từ dataset cho trước
func NewFromDataset(ds *gazetteer.Dataset, opts ...Option) (*AddressParser, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	p := &AddressParser{
		dataset: ds,
		policy:  NormalizeStrict,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	start := time.Now()
	refs, err := NewBackReferenceIndex(ds)
	if err != nil {
		return nil, err
	}
	p.refs = refs
	p.index = NewLookupIndex(ds, refs)
	p.resolver = &resolver{ds: ds, index: p.index, refs: refs}
	p.normalizer = &normalizer{ds: ds, index: p.index, policy: p.policy}

	counts := ds.Counts()
	p.logger.Info("Đã build index địa chỉ",
		zap.String("dataset_version", ds.Version),
		zap.Int("provinces", counts.Provinces),
		zap.Int("cities", counts.Cities),
		zap.Int("districts", counts.Districts),
		zap.Int("trie_nodes", p.index.NodeCount()),
		zap.Duration("took", time.Since(start)))

	return p, nil
}

// Parse tách tỉnh / thành phố / quận huyện và phần chi tiết. Không bao giờ
// lỗi: cấp nào không match thì để trống.
func (p *AddressParser) Parse(text string) models.ParsedAddress {
	result := p.resolver.resolve(text)

	if ce := p.logger.Check(zap.DebugLevel, "Đã parse địa chỉ"); ce != nil {
		ce.Write(
			zap.String("raw", text),
			zap.String("province", result.Province),
			zap.String("city", result.City),
			zap.String("district", result.District),
			zap.String("detail", result.Detail))
	}
	return result
}

// ParseBatch parse lần lượt, giữ nguyên thứ tự đầu vào
func (p *AddressParser) ParseBatch(texts []string) []models.ParsedAddress {
	results := make([]models.ParsedAddress, len(texts))
	for i, text := range texts {
		results[i] = p.Parse(text)
	}
	return results
}

// Normalize ghép tên chuẩn từ các đoạn tỉnh / thành phố / quận huyện có thể
// viết tắt. district rỗng là không truyền.
func (p *AddressParser) Normalize(province, city, district string) (string, error) {
	out, err := p.normalizer.normalize(province, city, district)
	if err != nil {
		p.logger.Debug("Không chuẩn hóa được địa chỉ",
			zap.String("province", province),
			zap.String("city", city),
			zap.String("district", district),
			zap.Error(err))
		return "", err
	}
	return out, nil
}

// WithPolicy trả về parser dùng chung index nhưng với policy normalize khác
func (p *AddressParser) WithPolicy(policy NormalizePolicy) *AddressParser {
	cp := *p
	cp.policy = policy
	cp.normalizer = &normalizer{ds: p.dataset, index: p.index, policy: policy}
	return &cp
}

// IsValidAddress đúng khi parse ra đủ ba cấp
func (p *AddressParser) IsValidAddress(text string) bool {
	return p.Parse(text).IsComplete()
}

// Provinces tên đầy đủ mọi tỉnh theo thứ tự khai báo
func (p *AddressParser) Provinces() []string {
	out := make([]string, len(p.dataset.Provinces))
	for i, prov := range p.dataset.Provinces {
		out[i] = prov.Name
	}
	return out
}

// CitiesOfProvince tên các thành phố thuộc tỉnh (tên đầy đủ hoặc alias).
// Tỉnh không tồn tại trả slice rỗng.
func (p *AddressParser) CitiesOfProvince(name string) []string {
	ids := p.index.Lookup(name, AllProvinces())
	if len(ids) == 0 {
		return []string{}
	}
	cities := p.refs.CitiesOf(ids[0])
	out := make([]string, len(cities))
	for i, id := range cities {
		out[i] = p.dataset.Cities[id].Name
	}
	return out
}

// DistrictsOfCity tên các quận huyện thuộc thành phố (tên đầy đủ hoặc alias).
// Alias trùng giữa các tỉnh lấy thành phố khai báo trước.
func (p *AddressParser) DistrictsOfCity(name string) []string {
	ids := p.index.Lookup(name, AllCities())
	if len(ids) == 0 {
		return []string{}
	}
	districts := p.refs.DistrictsOf(ids[0])
	out := make([]string, len(districts))
	for i, id := range districts {
		out[i] = p.dataset.Districts[id].Name
	}
	return out
}

// Dataset dataset gốc, caller không được sửa
func (p *AddressParser) Dataset() *gazetteer.Dataset { return p.dataset }

// Policy policy Normalize đang dùng
func (p *AddressParser) Policy() NormalizePolicy { return p.policy }

// Stats số đơn vị và kích thước index
func (p *AddressParser) Stats() Stats {
	return Stats{
		DatasetVersion: p.dataset.Version,
		Counts:         p.dataset.Counts(),
		IndexedNames:   p.index.KeyCount(),
		TrieNodes:      p.index.NodeCount(),
	}
}
