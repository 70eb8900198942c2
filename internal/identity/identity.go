package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

const defaultName = "player"

// Lookup resolves a display name from an external account.
type Lookup func(ctx context.Context) (string, error)

// GitHubLogin returns the login of the authenticated GitHub user, using the
// same credentials as the gh CLI (GH_TOKEN, GITHUB_TOKEN or gh auth login).
func GitHubLogin(ctx context.Context) (string, error) {
	client, err := api.DefaultRESTClient()
	if err != nil {
		if isMissingAuth(err) {
			return "", &LookupError{Reason: "not logged in to GitHub", cause: err}
		}
		return "", fmt.Errorf("failed to create GitHub client: %w", err)
	}

	var resp struct {
		Login string `json:"login"`
	}
	if err := client.DoWithContext(ctx, http.MethodGet, "user", nil, &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			return "", &LookupError{Reason: "GitHub token rejected", cause: err}
		}
		return "", fmt.Errorf("failed to fetch GitHub user: %w", err)
	}
	if resp.Login == "" {
		return "", &LookupError{Reason: "empty login"}
	}
	return resp.Login, nil
}

// Fallback derives a name from the local environment.
func Fallback(getenv func(string) string) string {
	for _, k := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return defaultName
}

// Resolve picks the explicit name if set, then the lookup result, then the
// local fallback. The returned error is the lookup failure, if any; the name
// is always usable.
func Resolve(ctx context.Context, explicit string, lookup Lookup, getenv func(string) string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}
	if lookup != nil {
		name, err := lookup(ctx)
		if err == nil && name != "" {
			return name, nil
		}
		return Fallback(getenv), err
	}
	return Fallback(getenv), nil
}
