package parser

import "go.uber.org/zap"

// Option cấu hình AddressParser
type Option func(*AddressParser)

// WithLogger gắn logger; mặc định zap.NewNop()
func WithLogger(logger *zap.Logger) Option {
	return func(p *AddressParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNormalizePolicy chọn policy cho Normalize; mặc định NormalizeStrict
func WithNormalizePolicy(policy NormalizePolicy) Option {
	return func(p *AddressParser) {
		p.policy = policy
	}
}
