// Package reddit implements a minimal client for the parts of the Reddit
// API the reader needs: listing new submissions, fetching comment forests,
// and expanding more-comments stubs.
package reddit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

const (
	userAgent = "linux:reddit-reader:v0.1.0"

	defaultAuthURL = "https://www.reddit.com"
	defaultAPIURL  = "https://oauth.reddit.com"

	// Listings cap out at 100 items per request.
	maxPageSize = 100
)

// Credentials holds the script-app credentials handed to Connect. They are
// used for the token exchange only and never persisted.
type Credentials struct {
	Username  string
	Password  string
	AppID     string
	AppSecret string
}

// Client talks to the Reddit API on behalf of one authenticated account.
type Client struct {
	http  *resty.Client
	log   *zap.SugaredLogger
	delay time.Duration

	authURL string
	apiURL  string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURLs points the client at alternative auth and API hosts.
func WithBaseURLs(authURL, apiURL string) ClientOption {
	return func(c *Client) {
		c.authURL = authURL
		c.apiURL = apiURL
	}
}

// NewClient creates an unauthenticated client. Delay is slept before every
// request to stay under the API rate limit.
func NewClient(log *zap.SugaredLogger, delay time.Duration, options ...ClientOption) *Client {
	client := &Client{
		http:    resty.New().SetHeader("User-Agent", userAgent),
		log:     log.With("component", "reddit"),
		delay:   delay,
		authURL: defaultAuthURL,
		apiURL:  defaultAPIURL,
	}
	for _, option := range options {
		option(client)
	}

	client.http.AddRequestMiddleware(func(_ *resty.Client, _ *resty.Request) error {
		time.Sleep(client.delay)
		return nil
	})

	return client
}

// Connect performs the password-grant token exchange and verifies the
// session belongs to the expected account.
func (c *Client) Connect(ctx context.Context, creds Credentials) error {
	c.log.Infow("connecting to reddit", "username", creds.Username, "app_id", creds.AppID)

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}

	res, err := c.http.R().
		WithContext(ctx).
		SetBasicAuth(creds.AppID, creds.AppSecret).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   creds.Username,
			"password":   creds.Password,
		}).
		SetResult(&token).
		Post(c.authURL + "/api/v1/access_token")
	if err != nil {
		return fmt.Errorf("requesting access token: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("requesting access token: %s", res.Status())
	}
	if token.AccessToken == "" {
		return fmt.Errorf("no access token for user %s and app %s", creds.Username, creds.AppID)
	}

	c.http.SetAuthToken(token.AccessToken)

	var me struct {
		Name string `json:"name"`
	}
	res, err = c.http.R().WithContext(ctx).SetResult(&me).Get(c.apiURL + "/api/v1/me")
	if err != nil {
		return fmt.Errorf("verifying connection: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("verifying connection: %s", res.Status())
	}
	if !strings.EqualFold(me.Name, creds.Username) {
		return fmt.Errorf("connection check failed for user %s and app %s", creds.Username, creds.AppID)
	}

	c.log.Infow("connected to reddit", "username", me.Name)
	return nil
}

// FetchSubmissions returns up to limit newest submissions from a subreddit,
// paging through the listing as needed.
func (c *Client) FetchSubmissions(ctx context.Context, subreddit string, limit int) ([]*Submission, error) {
	var submissions []*Submission
	after := ""

	for len(submissions) < limit {
		size := min(limit-len(submissions), maxPageSize)

		var page listing
		req := c.http.R().
			WithContext(ctx).
			SetQueryParam("limit", strconv.Itoa(size)).
			SetResult(&page)
		if after != "" {
			req.SetQueryParam("after", after)
		}

		res, err := req.Get(fmt.Sprintf("%s/r/%s/new", c.apiURL, subreddit))
		if err != nil {
			return nil, fmt.Errorf("fetching submissions from r/%s: %w", subreddit, err)
		}
		if res.IsError() {
			return nil, fmt.Errorf("fetching submissions from r/%s: %s", subreddit, res.Status())
		}

		if len(page.Data.Children) == 0 {
			break
		}
		for _, t := range page.Data.Children {
			if t.Kind != kindSubmission {
				continue
			}
			submission, err := parseSubmission(t.Data)
			if err != nil {
				return nil, err
			}
			submissions = append(submissions, submission)
		}

		if page.Data.After == "" {
			break
		}
		after = page.Data.After
	}

	return submissions, nil
}

// GetCommentForest fetches the comment tree for one submission. The API
// responds with two listings; the first repeats the submission, the second
// holds the top-level comments.
func (c *Client) GetCommentForest(ctx context.Context, submission *Submission) ([]*Node, error) {
	var pages []listing
	res, err := c.http.R().
		WithContext(ctx).
		SetResult(&pages).
		Get(fmt.Sprintf("%s/comments/%s", c.apiURL, submission.ID))
	if err != nil {
		return nil, fmt.Errorf("fetching comments for %s: %w", submission.Name, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetching comments for %s: %s", submission.Name, res.Status())
	}

	if len(pages) < 2 {
		return nil, nil
	}
	return parseThings(pages[1].Data.Children)
}

// MoreChildren expands one more-comments stub, requesting at most budget of
// its referenced comments. The returned nodes are flat: nested replies come
// back as separate nodes or further stubs.
func (c *Client) MoreChildren(ctx context.Context, linkID string, stub *MoreStub, budget int) ([]*Node, error) {
	children := stub.Children
	if budget < len(children) {
		children = children[:budget]
	}
	if len(children) == 0 {
		return nil, nil
	}

	var reply struct {
		JSON struct {
			Data struct {
				Things []thing `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}

	res, err := c.http.R().
		WithContext(ctx).
		SetQueryParams(map[string]string{
			"link_id":  linkID,
			"children": strings.Join(children, ","),
			"api_type": "json",
		}).
		SetResult(&reply).
		Get(c.apiURL + "/api/morechildren")
	if err != nil {
		return nil, fmt.Errorf("expanding comments for %s: %w", linkID, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("expanding comments for %s: %s", linkID, res.Status())
	}

	return parseThings(reply.JSON.Data.Things)
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}
