package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
)

const (
	defaultBaseURL = "https://api.github.com"

	// perPage is the page size used for paginated list endpoints.
	perPage = 100
)

// Client provides methods to interact with the GitHub API for a single
// repository's pull requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a client authenticated with a personal access token or
// an Actions-provided GITHUB_TOKEN. This is the usual CI mode.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}
}

// NewAppClient creates a client authenticated as a GitHub App installation.
// The privateKey should be the PEM-encoded private key of the App.
func NewAppClient(appID int64, privateKey []byte, installationID int64) (*Client, error) {
	transport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}, nil
}

// SetBaseURL overrides the API base URL. Used for GitHub Enterprise and tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// GetPullRequest fetches a pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, prNumber int) (*PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, prNumber)
	req, err := c.newRequest(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch pull request: status %d, body: %s", resp.StatusCode, string(body))
	}

	var pr PullRequest
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("failed to decode pull request: %w", err)
	}

	return &pr, nil
}

// ListFiles fetches the list of files changed in a pull request, following
// pagination until the last page.
func (c *Client) ListFiles(ctx context.Context, owner, repo string, prNumber int) ([]PullRequestFile, error) {
	var files []PullRequestFile

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=%d&page=%d", c.baseURL, owner, repo, prNumber, perPage, page)
		req, err := c.newRequest(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch files: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch files: status %d, body: %s", resp.StatusCode, string(body))
		}

		var pageFiles []PullRequestFile
		if err := json.NewDecoder(resp.Body).Decode(&pageFiles); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode files: %w", err)
		}
		resp.Body.Close()

		files = append(files, pageFiles...)
		if len(pageFiles) < perPage {
			return files, nil
		}
	}
}

// ListReviewComments fetches all inline review comments on a pull request.
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, prNumber int) ([]ReviewComment, error) {
	var comments []ReviewComment

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments?per_page=%d&page=%d", c.baseURL, owner, repo, prNumber, perPage, page)
		req, err := c.newRequest(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch comments: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch comments: status %d, body: %s", resp.StatusCode, string(body))
		}

		var pageComments []ReviewComment
		if err := json.NewDecoder(resp.Body).Decode(&pageComments); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode comments: %w", err)
		}
		resp.Body.Close()

		comments = append(comments, pageComments...)
		if len(pageComments) < perPage {
			return comments, nil
		}
	}
}

// ListReviews fetches all reviews on a pull request.
func (c *Client) ListReviews(ctx context.Context, owner, repo string, prNumber int) ([]Review, error) {
	var reviews []Review

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews?per_page=%d&page=%d", c.baseURL, owner, repo, prNumber, perPage, page)
		req, err := c.newRequest(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reviews: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch reviews: status %d, body: %s", resp.StatusCode, string(body))
		}

		var pageReviews []Review
		if err := json.NewDecoder(resp.Body).Decode(&pageReviews); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode reviews: %w", err)
		}
		resp.Body.Close()

		reviews = append(reviews, pageReviews...)
		if len(pageReviews) < perPage {
			return reviews, nil
		}
	}
}

// CreateReview posts a review on a pull request. Inline comments use
// position-based addressing, which avoids 422 responses for lines that the
// line/side addressing scheme rejects on rebased diffs.
func (c *Client) CreateReview(ctx context.Context, owner, repo string, prNumber int, review *ReviewRequest) (*Review, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.baseURL, owner, repo, prNumber)

	body, err := json.Marshal(review)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal review: %w", err)
	}

	req, err := c.newRequest(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create review: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var createdReview Review
	if err := json.NewDecoder(resp.Body).Decode(&createdReview); err != nil {
		return nil, fmt.Errorf("failed to decode review response: %w", err)
	}

	return &createdReview, nil
}
