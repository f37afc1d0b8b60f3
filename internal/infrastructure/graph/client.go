// Package graph is a minimal Facebook Graph API client covering Instagram
// account discovery and carousel publishing.
package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	fb "github.com/huandu/facebook/v2"

	"github.com/groompost/groompost-api/internal/core/ports"
)

const (
	DefaultVersion = "v18.0"
	defaultTimeout = 30 * time.Second
)

var (
	ErrNoPages          = errors.New("no facebook pages found for this token")
	ErrNoBusinessAcct   = errors.New("no instagram business account connected to the facebook page")
	ErrMissingID        = errors.New("graph response carried no id")
	ErrMissingPermalink = errors.New("graph response carried no permalink")
)

// Config holds the credentials and endpoint. AppSecret is optional; when set
// every call carries an appsecret_proof.
type Config struct {
	AppID       string
	AppSecret   string
	AccessToken string
	Version     string
	// BaseURL overrides https://graph.facebook.com, e.g. for a local fake.
	BaseURL string
	Timeout time.Duration
}

// Configured reports whether an access token is present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

type Client struct {
	session *fb.Session
}

var _ ports.GraphAPI = (*Client)(nil)

// NewClient builds a Graph session for the long-lived access token.
func NewClient(cfg Config) (*Client, error) {
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := &http.Client{Timeout: timeout}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil || base.Scheme == "" || base.Host == "" {
			return nil, fmt.Errorf("graph: invalid base url %q", cfg.BaseURL)
		}
		hc.Transport = &rebaseTransport{base: base, next: http.DefaultTransport}
	}

	app := fb.New(cfg.AppID, cfg.AppSecret)
	session := app.Session(cfg.AccessToken)
	session.Version = version
	session.HttpClient = hc
	if cfg.AppSecret != "" && cfg.AccessToken != "" {
		if err := session.EnableAppsecretProof(true); err != nil {
			return nil, fmt.Errorf("graph: enable appsecret_proof: %w", err)
		}
	}
	return &Client{session: session}, nil
}

type idResult struct {
	ID string `facebook:"id"`
}

func (c *Client) FirstPageID(ctx context.Context) (string, error) {
	var resp struct {
		Data []idResult `facebook:"data"`
	}
	if err := c.get(ctx, "/me/accounts", nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].ID == "" {
		return "", ErrNoPages
	}
	return resp.Data[0].ID, nil
}

func (c *Client) InstagramAccountID(ctx context.Context, pageID string) (string, error) {
	var resp struct {
		Account idResult `facebook:"instagram_business_account"`
	}
	params := fb.Params{"fields": "instagram_business_account"}
	if err := c.get(ctx, "/"+url.PathEscape(pageID), params, &resp); err != nil {
		return "", err
	}
	if resp.Account.ID == "" {
		return "", ErrNoBusinessAcct
	}
	return resp.Account.ID, nil
}

func (c *Client) CreateCarouselContainer(ctx context.Context, accountID, caption string) (string, error) {
	return c.postForID(ctx, "/"+url.PathEscape(accountID)+"/media", fb.Params{
		"media_type": "CAROUSEL",
		"caption":    caption,
	})
}

func (c *Client) CreateCarouselItem(ctx context.Context, accountID, imageURL string) (string, error) {
	return c.postForID(ctx, "/"+url.PathEscape(accountID)+"/media", fb.Params{
		"image_url":        imageURL,
		"is_carousel_item": "true",
	})
}

// AttachChildren sets the container's children; slide order follows childIDs.
func (c *Client) AttachChildren(ctx context.Context, containerID string, childIDs []string) error {
	_, err := c.session.WithContext(ctx).Post("/"+url.PathEscape(containerID), fb.Params{
		"children": strings.Join(childIDs, ","),
	})
	if err != nil {
		return fmt.Errorf("graph POST %s: %w", containerID, err)
	}
	return nil
}

func (c *Client) PublishContainer(ctx context.Context, accountID, containerID string) (string, error) {
	return c.postForID(ctx, "/"+url.PathEscape(accountID)+"/media_publish", fb.Params{
		"creation_id": containerID,
	})
}

func (c *Client) Permalink(ctx context.Context, mediaID string) (string, error) {
	var resp struct {
		Permalink string `facebook:"permalink"`
	}
	if err := c.get(ctx, "/"+url.PathEscape(mediaID), fb.Params{"fields": "permalink"}, &resp); err != nil {
		return "", err
	}
	if resp.Permalink == "" {
		return "", ErrMissingPermalink
	}
	return resp.Permalink, nil
}

func (c *Client) get(ctx context.Context, path string, params fb.Params, out any) error {
	res, err := c.session.WithContext(ctx).Get(path, params)
	if err != nil {
		return fmt.Errorf("graph GET %s: %w", path, err)
	}
	if err := res.Decode(out); err != nil {
		return fmt.Errorf("graph decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postForID(ctx context.Context, path string, params fb.Params) (string, error) {
	res, err := c.session.WithContext(ctx).Post(path, params)
	if err != nil {
		return "", fmt.Errorf("graph POST %s: %w", path, err)
	}
	id, _ := res.Get("id").(string)
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}

// rebaseTransport sends every request to base, keeping the request path.
type rebaseTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.base.Scheme
	out.URL.Host = t.base.Host
	out.URL.Path = strings.TrimRight(t.base.Path, "/") + req.URL.Path
	out.Host = t.base.Host
	return t.next.RoundTrip(out)
}
