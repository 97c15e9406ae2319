package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio-site/cmd/api/clients/notionclient"
	"portfolio-site/cmd/api/dto"
	"portfolio-site/cmd/api/trace"
	"portfolio-site/cmd/internal/logger"
	"portfolio-site/config"
)

// NotionAPI 는 ContentService 가 사용하는 Notion 호출 집합이다.
// *notionclient.Client 가 구현하며, 테스트에서는 가짜 구현으로 대체한다.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, params notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error)
	RetrieveDatabase(ctx context.Context, databaseID string) (notionclient.Database, error)
	RetrievePage(ctx context.Context, pageID string) (json.RawMessage, error)
	ListBlockChildren(ctx context.Context, blockID string, params notionclient.ListBlockChildrenParams) (notionclient.BlockChildrenResponse, error)
}

var _ NotionAPI = (*notionclient.Client)(nil)

// ContentService 는 블로그 목록/단건 조회를 Notion 호출로 변환하고
// Notion 의 가변 스키마를 고정된 DTO 로 정규화한다.
//
// - 상태가 없으며 매 요청마다 Notion 을 새로 조회한다. (캐시 없음)
// - 모든 Notion 호출은 cfg.Timeout 안에서 끝나야 한다.
type ContentService struct {
	client NotionAPI
	cfg    config.NotionConfig
	now    func() time.Time
}

type Option func(*ContentService)

// WithClock 은 날짜 fallback 과 placeholder 에 쓰는 현재 시각 함수를 교체한다.
func WithClock(now func() time.Time) Option {
	return func(s *ContentService) { s.now = now }
}

func NewContentService(client NotionAPI, cfg config.NotionConfig, opts ...Option) *ContentService {
	s := &ContentService{client: client, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPosts 는 데이터베이스의 모든 글을 Date 내림차순으로 조회해 요약 목록을 반환한다.
// 글이 하나도 없으면 빈 슬라이스를 반환한다. 항목 하나의 정규화 실패는 placeholder 로 대체된다.
func (s *ContentService) ListPosts(ctx context.Context) ([]dto.PostSummaryDTO, error) {
	if missing := s.cfg.MissingKeys(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.client.QueryDatabase(ctx, s.cfg.DatabaseID, notionclient.QueryDatabaseParams{
		Sorts: []notionclient.Sort{{Property: s.cfg.SortProperty, Direction: notionclient.Descending}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	requestID := trace.RequestIDFromContext(ctx)
	logger.DebugWithFields("notion query succeeded", logger.Fields{
		"request_id":  requestID,
		"results":     len(resp.Results),
		"has_more":    resp.HasMore,
		"database_id": s.cfg.DatabaseID,
	})
	if len(resp.Results) > 0 {
		if page, err := notionclient.DecodePage(resp.Results[0]); err == nil {
			logger.DebugWithFields("first result properties", logger.Fields{
				"request_id": requestID,
				"properties": propertyNames(page.Properties),
			})
		}
	}

	now := s.now()
	out := make([]dto.PostSummaryDTO, 0, len(resp.Results))
	for i, raw := range resp.Results {
		post, err := extractSummary(raw, now)
		if err != nil {
			itemErr := &ItemExtractionError{Index: i, Err: err}
			if id, ok := notionclient.PageID(raw); ok {
				itemErr.PageID = id
			}
			logger.WarnWithFields("post extraction failed, using placeholder", logger.Fields{
				"request_id": requestID,
				"index":      itemErr.Index,
				"page_id":    itemErr.PageID,
				"error":      itemErr.Error(),
			})
			post = placeholderSummary(raw, now)
		}
		out = append(out, post)
	}
	return out, nil
}

// GetPost 는 page 원본과 그 block children 을 가공 없이 묶어서 반환한다.
// id 가 비어 있으면 Notion 을 호출하지 않고 ErrInvalidArgument 를 반환한다.
func (s *ContentService) GetPost(ctx context.Context, id string) (*dto.PostDetailDTO, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidArgument
	}
	if s.cfg.Token == "" {
		return nil, fmt.Errorf("%w: NOTION_INTEGRATION_TOKEN", ErrConfiguration)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var (
		page   json.RawMessage
		blocks []json.RawMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.client.RetrievePage(gctx, id)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	g.Go(func() error {
		b, err := s.listBlocks(gctx, id)
		if err != nil {
			return err
		}
		blocks = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	logger.DebugWithFields("notion page fetched", logger.Fields{
		"request_id": trace.RequestIDFromContext(ctx),
		"page_id":    id,
		"blocks":     len(blocks),
	})
	return &dto.PostDetailDTO{Page: page, Blocks: blocks}, nil
}

// listBlocks 는 최대 cfg.MaxBlockPages 페이지까지 children 을 순서대로 이어붙인다.
func (s *ContentService) listBlocks(ctx context.Context, id string) ([]json.RawMessage, error) {
	blocks := make([]json.RawMessage, 0)
	cursor := ""
	for pageNo := 0; pageNo < s.cfg.MaxBlockPages; pageNo++ {
		resp, err := s.client.ListBlockChildren(ctx, id, notionclient.ListBlockChildrenParams{
			PageSize:    s.cfg.BlockPageSize,
			StartCursor: cursor,
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return blocks, nil
		}
		cursor = *resp.NextCursor
	}

	logger.InfoWithFields("block children truncated", logger.Fields{
		"request_id": trace.RequestIDFromContext(ctx),
		"page_id":    id,
		"blocks":     len(blocks),
		"max_pages":  s.cfg.MaxBlockPages,
	})
	return blocks, nil
}

// CheckDatabase 는 데이터베이스 메타데이터를 조회해 접근 가능 여부를 확인한다.
func (s *ContentService) CheckDatabase(ctx context.Context) (dto.HealthResponseDTO, error) {
	if missing := s.cfg.MissingKeys(); len(missing) > 0 {
		return dto.HealthResponseDTO{}, fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	db, err := s.client.RetrieveDatabase(ctx, s.cfg.DatabaseID)
	if err != nil {
		return dto.HealthResponseDTO{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return dto.HealthResponseDTO{
		Status:     "ok",
		Database:   db.PlainTitle(),
		Properties: rawPropertyNames(db.Properties),
	}, nil
}

func propertyNames(props map[string]notionclient.Property) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func rawPropertyNames(props map[string]json.RawMessage) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
