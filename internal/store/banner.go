package store

import "time"

// BannerKind distinguishes success banners, which expire, from error
// banners, which stay until superseded or dismissed.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is a transient message shown above a resource list. ExpiresAt is
// zero for banners that do not expire.
type Banner struct {
	Kind      BannerKind
	Message   string
	ExpiresAt time.Time
}
