package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/reviewhub/internal/auth"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
	"github.com/sakif/reviewhub/internal/service"
)

// resolveActor loads the acting user, or nil for anonymous requests.
//
// On routes behind RequireAuth the context always carries a user ID; on
// OptionalAuth routes it may not, and that is fine — a nil actor simply
// fails every write-permission check downstream.
func resolveActor(r *http.Request, authSvc *service.AuthService) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, nil
	}
	return authSvc.GetActor(r.Context(), userID)
}

// listOptions reads ?limit=&offset=&search= with the service defaults for
// anything missing or malformed.
func listOptions(r *http.Request) repository.ListOptions {
	q := r.URL.Query()
	opts := repository.ListOptions{Search: q.Get("search")}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = v
	}
	return opts
}

// titleFilter reads the title listing query parameters.
func titleFilter(r *http.Request) repository.TitleFilter {
	q := r.URL.Query()
	filter := repository.TitleFilter{
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
		Name:     q.Get("name"),
	}
	if v, err := strconv.Atoi(q.Get("year")); err == nil {
		filter.Year = &v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = v
	}
	return filter
}
