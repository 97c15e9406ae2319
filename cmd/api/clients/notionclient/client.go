package notionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"portfolio-site/cmd/api/httpclient"
	"portfolio-site/config"
)

// Client 는 Notion REST API 를 호출하는 얇은 클라이언트다.
//
// - 블로그 글 목록(database query), 단일 페이지, 블록 children 조회만 다룬다.
// - 응답 스키마 해석은 services 계층이 담당하고, 여기서는 원본 JSON 을 그대로 돌려준다.
//
// baseURL 예: https://api.notion.com/v1
type Client struct {
	base *httpclient.BaseClient
}

var ErrNotFound = errors.New("resource not found")

// APIError 는 Notion 의 에러 응답 {object:"error", status, code, message} 이다.
type APIError struct {
	Op      string `json:"-"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion %s: status=%d code=%s message=%s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion %s: status=%d body=%s", e.Op, e.Status, e.Message)
}

// Is 는 404 / object_not_found 를 ErrNotFound 로 취급한다.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && (e.Status == http.StatusNotFound || e.Code == "object_not_found")
}

func New(cfg config.NotionConfig) *Client {
	return NewWithHTTPClient(cfg, httpclient.New(httpclient.Config{Timeout: cfg.Timeout}))
}

// NewWithHTTPClient 는 테스트 등에서 http.Client 를 주입할 때 사용한다.
func NewWithHTTPClient(cfg config.NotionConfig, httpClient *http.Client) *Client {
	base := httpclient.NewBaseClientWithClient(httpClient, cfg.BaseURL)
	if cfg.Token != "" {
		base.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	base.Header.Set("Notion-Version", cfg.Version)
	return &Client{base: base}
}

// -------------------- Databases --------------------

// QueryDatabase 는 POST /databases/{id}/query 로 페이지 목록 한 페이지를 조회한다.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, params QueryDatabaseParams) (QueryDatabaseResponse, error) {
	buf, err := json.Marshal(params)
	if err != nil {
		return QueryDatabaseResponse{}, err
	}

	var out QueryDatabaseResponse
	relPath := path.Join("/databases", url.PathEscape(databaseID), "query")
	if err := c.do(ctx, "QueryDatabase", http.MethodPost, relPath, nil, buf, &out); err != nil {
		return QueryDatabaseResponse{}, err
	}
	return out, nil
}

// RetrieveDatabase 는 데이터베이스 메타데이터(제목, property 스키마)를 조회한다.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (Database, error) {
	var out Database
	if err := c.do(ctx, "RetrieveDatabase", http.MethodGet, path.Join("/databases", url.PathEscape(databaseID)), nil, nil, &out); err != nil {
		return Database{}, err
	}
	return out, nil
}

// -------------------- Pages / Blocks --------------------

// RetrievePage 는 page object 를 가공하지 않은 원본 JSON 으로 반환한다.
// 존재하지 않으면 errors.Is(err, ErrNotFound) 가 참인 에러를 반환한다.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "RetrievePage", http.MethodGet, path.Join("/pages", url.PathEscape(pageID)), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBlockChildren 는 블록 children 한 페이지를 조회한다. 결과 순서는 문서의 읽기 순서다.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string, params ListBlockChildrenParams) (BlockChildrenResponse, error) {
	q := url.Values{}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}
	if params.StartCursor != "" {
		q.Set("start_cursor", params.StartCursor)
	}

	var out BlockChildrenResponse
	relPath := path.Join("/blocks", url.PathEscape(blockID), "children")
	if err := c.do(ctx, "ListBlockChildren", http.MethodGet, relPath, q, nil, &out); err != nil {
		return BlockChildrenResponse{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, relPath string, query url.Values, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := c.base.NewRequest(ctx, method, relPath, query, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("notion %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notion %s: decode response: %w", op, err)
	}
	return nil
}

func decodeAPIError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	apiErr := &APIError{}
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Code == "" {
		apiErr = &APIError{Message: string(b)}
	}
	apiErr.Op = op
	apiErr.Status = resp.StatusCode
	return apiErr
}
