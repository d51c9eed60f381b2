package routes

// Routes package cung cấp tất cả routing functions cho service parse địa chỉ
//
// Cấu trúc:
// - api.go: API routes (/v1/*), health và /metrics
// - web.go: Web routes (/, /docs)
//
// Sử dụng:
// routes.SetupAllRoutes(router, routes.Controllers{...}, cfg.RequestTimeout())
