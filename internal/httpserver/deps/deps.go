package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/quill/internal/icons"
	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// ViewStore persists post view counters. The Redis store implements it.
type ViewStore interface {
	Ping(ctx context.Context) error
	IncrementViews(ctx context.Context, id string) (int64, error)
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time   // for testing, defaults to time.Now
	AllowedHosts  []string           // Host headers allowed to access admin routes
	AllowedCIDRS  []string           // IPs allowed to access admin routes
	TrustProxy    bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Index         *index.MemoryIndex // In-memory post index
	Store         ViewStore          // nil when Redis is disabled
	Icons         *icons.Config      // icon links handed to the frontend
	ContentDir    string             // collection root, also serves co-located images
	ShowDrafts    bool               // include drafts in listings
	ReloadTrigger chan struct{}      // Channel to trigger manual content reload
	CORSOrigins   []string           // allowed origins on /api, "*" for any
	RateBurst     int                // per-IP burst on /api
	RatePerMin    int                // per-IP refill on /api
}

// Now returns d.TimeNow() or time.Now() when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
