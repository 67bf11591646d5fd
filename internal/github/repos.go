package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/sjson"
)

// Status is a commit build status as CI reporters post it.
type Status struct {
	State       string // error, failure, pending or success
	TargetURL   string
	Description string
	Context     string
}

var validStates = map[string]struct{}{
	"error": {}, "failure": {}, "pending": {}, "success": {},
}

// CreateStatus posts a build status for a commit. The request rides the
// resilient executor, so token rotation and retries apply as usual.
func (c *Client) CreateStatus(ctx context.Context, owner, repo, sha string, status Status) (*http.Response, error) {
	if _, ok := validStates[status.State]; !ok {
		return nil, fmt.Errorf("invalid status state %q", status.State)
	}

	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "state", status.State)
	if status.TargetURL != "" {
		body, _ = sjson.SetBytes(body, "target_url", status.TargetURL)
	}
	if status.Description != "" {
		body, _ = sjson.SetBytes(body, "description", status.Description)
	}
	if status.Context != "" {
		body, _ = sjson.SetBytes(body, "context", status.Context)
	}

	endpoint := fmt.Sprintf("/repos/%s/%s/statuses/%s", owner, repo, sha)
	return c.Post(ctx, endpoint, &RequestOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
}

// CreateComment posts a comment on an issue or pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, text string) (*http.Response, error) {
	if text == "" {
		return nil, fmt.Errorf("comment body must not be empty")
	}

	body, _ := sjson.SetBytes([]byte(`{}`), "body", text)
	endpoint := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)
	return c.Post(ctx, endpoint, &RequestOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
}
