package auth

import "net/http"

// BucketName identifies one of the five rate-limit buckets (§4.5). Every
// bucket is keyed on client IP independently of the others — a client
// hitting its auth-bucket limit can still make default-bucket requests.
type BucketName string

const (
	BucketDefault BucketName = "default"
	BucketAuth    BucketName = "auth"
	BucketSync    BucketName = "sync"
	BucketExport  BucketName = "export"
	BucketBackup  BucketName = "backup"
)

// Buckets holds the five named rate limiters the ApiPlane routes through,
// one RateLimiter instance per bucket so buckets never share tokens.
type Buckets struct {
	limiters map[BucketName]*RateLimiter
}

// NewBuckets constructs the standard bucket set: default (100/60s), auth
// (5/60s — the login path is never exempt), sync (10/300s), export
// (20/300s), backup (5/600s).
func NewBuckets() *Buckets {
	return &Buckets{
		limiters: map[BucketName]*RateLimiter{
			BucketDefault: NewRateLimiter(100.0/60.0, 100),
			BucketAuth:    NewRateLimiter(5.0/60.0, 5),
			BucketSync:    NewRateLimiter(10.0/300.0, 10),
			BucketExport:  NewRateLimiter(20.0/300.0, 20),
			BucketBackup:  NewRateLimiter(5.0/600.0, 5),
		},
	}
}

// Middleware wraps next with the named bucket's limiter. An unknown bucket
// name falls back to the default bucket.
func (b *Buckets) Middleware(name BucketName, next http.Handler) http.Handler {
	rl, ok := b.limiters[name]
	if !ok {
		rl = b.limiters[BucketDefault]
	}
	return rl.Middleware(next)
}
