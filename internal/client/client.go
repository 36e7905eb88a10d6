// Package client is the REST client sitectl uses to talk to a running sited.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/theme"
)

// AddressCheck 地址校验结果
type AddressCheck struct {
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	FullAddress string   `json:"fullAddress,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// PublishOutcome 发布最终结果
type PublishOutcome struct {
	Success      bool          `json:"success"`
	AttemptID    string        `json:"attemptId,omitempty"`
	PublishedURL string        `json:"publishedUrl,omitempty"`
	PreviewURL   string        `json:"previewUrl,omitempty"`
	PublishedAt  *time.Time    `json:"publishedAt,omitempty"`
	Error        *deploy.Error `json:"error,omitempty"`
}

type accepted struct {
	AttemptID string       `json:"attemptId"`
	Stage     deploy.Stage `json:"stage"`
}

type tenantResponse struct {
	Success bool                  `json:"success"`
	Data    *domain.Configuration `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string { return fmt.Sprintf("sited returned %d: %s", e.Status, e.Body) }

// Client sited API 客户端
type Client struct {
	http   *resty.Client
	token  string
	logger *zap.Logger
}

// New 创建客户端；token 为 owner token，可为空（只读接口）
func New(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		// only idempotent reads are retried; a retried POST could start a second attempt
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() == http.StatusServiceUnavailable
		})
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c, token: token, logger: logger}
}

// r 新建请求；响应一律按 JSON 解析，不依赖服务端的 Content-Type
func (c *Client) r(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).ForceContentType("application/json")
}

func check(resp *resty.Response, err error, ok ...int) error {
	if err != nil {
		return fmt.Errorf("failed to call sited: %w", err)
	}
	for _, code := range ok {
		if resp.StatusCode() == code {
			return nil
		}
	}
	return &APIError{Status: resp.StatusCode(), Body: resp.String()}
}

func (c *Client) ValidateAddress(ctx context.Context, name, ownerID string) (*AddressCheck, error) {
	var out AddressCheck
	resp, err := c.r(ctx).
		SetBody(map[string]string{"candidateName": name, "ownerId": ownerID}).
		SetResult(&out).
		Post("/api/v1/addresses/validate")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartPublish 启动发布，返回 attemptId
func (c *Client) StartPublish(ctx context.Context, configID, candidate string) (string, error) {
	var out accepted
	resp, err := c.r(ctx).
		SetBody(service.StartPublishRequest{CandidateAddress: candidate, ConfigurationID: configID, OwnerToken: c.token}).
		SetResult(&out).
		Post("/api/v1/publish")
	if err := check(resp, err, http.StatusAccepted); err != nil {
		return "", err
	}
	c.logger.Debug("Publish started", zap.String("attempt_id", out.AttemptID))
	return out.AttemptID, nil
}

func (c *Client) PublishStatus(ctx context.Context, attemptID string) (*service.PublishStatus, error) {
	var out service.PublishStatus
	resp, err := c.r(ctx).
		SetPathParam("id", attemptID).
		SetResult(&out).
		Get("/api/v1/publish/{id}")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitPublish 轮询直到结束；每次阶段变化调用 onStage
func (c *Client) WaitPublish(ctx context.Context, attemptID string, interval time.Duration, onStage func(deploy.Stage, string)) (*service.PublishStatus, error) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	var last deploy.Stage
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := c.PublishStatus(ctx, attemptID)
		if err != nil {
			return nil, err
		}
		if st.Stage != last && onStage != nil {
			onStage(st.Stage, st.Message)
		}
		last = st.Stage
		if st.Done {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) AbandonPublish(ctx context.Context, attemptID string) error {
	resp, err := c.r(ctx).SetPathParam("id", attemptID).Delete("/api/v1/publish/{id}")
	return check(resp, err, http.StatusAccepted)
}

func (c *Client) Tenant(ctx context.Context, slug string) (*domain.Configuration, error) {
	var out tenantResponse
	resp, err := c.r(ctx).
		SetPathParam("slug", slug).
		SetResult(&out).
		Get("/api/v1/tenants/{slug}")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ExportMenu(ctx context.Context, configID string) ([]byte, error) {
	resp, err := c.r(ctx).
		SetPathParam("id", configID).
		Get("/api/v1/configurations/{id}/menu.xlsx")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// ImportMenu 上传菜单表格，返回导入条数
func (c *Client) ImportMenu(ctx context.Context, configID string, xlsx []byte) (int, error) {
	var out envelope[struct {
		Imported int `json:"imported"`
	}]
	resp, err := c.r(ctx).
		SetPathParam("id", configID).
		SetHeader("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		SetBody(xlsx).
		SetResult(&out).
		Post("/api/v1/configurations/{id}/menu.xlsx")
	if err := check(resp, err, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Result.Imported, nil
}

func (c *Client) Templates(ctx context.Context) ([]theme.Template, error) {
	var out envelope[[]theme.Template]
	resp, err := c.r(ctx).SetResult(&out).Get("/api/v1/templates")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// CreateConfiguration 创建草稿，返回服务端保存后的文档
func (c *Client) CreateConfiguration(ctx context.Context, cfg *domain.Configuration) (*domain.Configuration, error) {
	var out envelope[*domain.Configuration]
	resp, err := c.r(ctx).SetBody(cfg).SetResult(&out).Post("/api/v1/configurations")
	if err := check(resp, err, http.StatusCreated); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *Client) GetConfiguration(ctx context.Context, id string) (*domain.Configuration, error) {
	var out envelope[*domain.Configuration]
	resp, err := c.r(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/api/v1/configurations/{id}")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Result, nil
}
