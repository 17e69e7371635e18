package todos

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// NewStore opens the backend named by the databaseURL scheme. An empty URL
// selects the in-memory store.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}
	switch Backend(databaseURL) {
	case "postgres":
		return NewPostgresStore(ctx, databaseURL)
	case "mongo":
		return NewMongoStore(ctx, databaseURL)
	case "mysql":
		return NewMySQLStore(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", schemeOf(databaseURL))
	}
}

// Backend names the store implementation a connection string selects.
func Backend(databaseURL string) string {
	switch schemeOf(databaseURL) {
	case "":
		if strings.TrimSpace(databaseURL) == "" {
			return "memory"
		}
		return ""
	case "postgres", "postgresql":
		return "postgres"
	case "mongodb", "mongodb+srv":
		return "mongo"
	case "mysql":
		return "mysql"
	default:
		return ""
	}
}

func schemeOf(databaseURL string) string {
	u, err := url.Parse(strings.TrimSpace(databaseURL))
	if err != nil {
		if i := strings.Index(databaseURL, "://"); i > 0 {
			return strings.ToLower(databaseURL[:i])
		}
		return ""
	}
	return strings.ToLower(u.Scheme)
}
