package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-site/cmd/api/clients/notionclient"
	"portfolio-site/config"
)

type fakeNotion struct {
	queryDatabase     func(ctx context.Context, databaseID string, params notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error)
	retrieveDatabase  func(ctx context.Context, databaseID string) (notionclient.Database, error)
	retrievePage      func(ctx context.Context, pageID string) (json.RawMessage, error)
	listBlockChildren func(ctx context.Context, blockID string, params notionclient.ListBlockChildrenParams) (notionclient.BlockChildrenResponse, error)

	calls atomic.Int32
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, params notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error) {
	f.calls.Add(1)
	if f.queryDatabase != nil {
		return f.queryDatabase(ctx, databaseID, params)
	}
	return notionclient.QueryDatabaseResponse{}, nil
}

func (f *fakeNotion) RetrieveDatabase(ctx context.Context, databaseID string) (notionclient.Database, error) {
	f.calls.Add(1)
	if f.retrieveDatabase != nil {
		return f.retrieveDatabase(ctx, databaseID)
	}
	return notionclient.Database{}, nil
}

func (f *fakeNotion) RetrievePage(ctx context.Context, pageID string) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.retrievePage != nil {
		return f.retrievePage(ctx, pageID)
	}
	return nil, notionclient.ErrNotFound
}

func (f *fakeNotion) ListBlockChildren(ctx context.Context, blockID string, params notionclient.ListBlockChildrenParams) (notionclient.BlockChildrenResponse, error) {
	f.calls.Add(1)
	if f.listBlockChildren != nil {
		return f.listBlockChildren(ctx, blockID, params)
	}
	return notionclient.BlockChildrenResponse{}, nil
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func testConfig() config.NotionConfig {
	return config.NotionConfig{
		DatabaseID:    "db-1",
		Token:         "secret_test",
		SortProperty:  "Date",
		Timeout:       time.Second,
		BlockPageSize: 100,
		MaxBlockPages: 1,
	}
}

func newTestService(f *fakeNotion, cfg config.NotionConfig) *ContentService {
	return NewContentService(f, cfg, WithClock(func() time.Time { return fixedNow }))
}

func raws(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}

const (
	fullPage = `{
		"object":"page","id":"p1","created_time":"2024-01-01T00:00:00.000Z",
		"cover":{"type":"file","file":{"url":"https://files.notion/cover.png","expiry_time":"2025-01-01T00:00:00.000Z"}},
		"properties":{
			"Name":{"type":"title","title":[{"plain_text":"Hello World"},{"plain_text":" ignored"}]},
			"Date":{"type":"date","date":{"start":"2024-05-01"}},
			"Content Summary":{"type":"rich_text","rich_text":[{"plain_text":"short summary"}]},
			"Description":{"type":"rich_text","rich_text":[{"plain_text":"long description"}]}
		}
	}`
	createdOnlyPage = `{
		"object":"page","id":"p2","created_time":"2023-12-24T10:00:00.000Z","cover":null,
		"properties":{
			"Name":{"type":"title","title":[]},
			"Date":{"type":"date","date":null},
			"Description":{"type":"rich_text","rich_text":[{"plain_text":"from description"}]},
			"Featured Image":{"type":"files","files":[{"name":"a.png","type":"external","external":{"url":"https://img.example/a.png"}}]}
		}
	}`
	barePage     = `{"object":"page","id":"p3","properties":{}}`
	noProperties = `{"object":"page","id":"p4"}`
	brokenPage   = `{"object":"page","id":"p5","properties":"not-an-object"}`
)

func TestListPostsExtractsFieldsAndFallbacks(t *testing.T) {
	f := &fakeNotion{
		queryDatabase: func(_ context.Context, databaseID string, params notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error) {
			assert.Equal(t, "db-1", databaseID)
			assert.Equal(t, []notionclient.Sort{{Property: "Date", Direction: "descending"}}, params.Sorts)
			return notionclient.QueryDatabaseResponse{Results: raws(fullPage, createdOnlyPage, barePage)}, nil
		},
	}

	posts, err := newTestService(f, testConfig()).ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	p1 := posts[0]
	assert.Equal(t, "p1", p1.ID)
	assert.Equal(t, "Hello World", p1.Title)
	assert.Equal(t, "2024-05-01", p1.Date)
	assert.Equal(t, "short summary", p1.Description)
	require.NotNil(t, p1.Cover)
	assert.Equal(t, "https://files.notion/cover.png", *p1.Cover)
	assert.Equal(t, "hello-world", p1.Slug)

	p2 := posts[1]
	assert.Equal(t, "Untitled", p2.Title)
	assert.Equal(t, "2023-12-24T10:00:00.000Z", p2.Date)
	assert.Equal(t, "from description", p2.Description)
	require.NotNil(t, p2.Cover)
	assert.Equal(t, "https://img.example/a.png", *p2.Cover)
	assert.Equal(t, "untitled", p2.Slug)

	p3 := posts[2]
	assert.Equal(t, "Untitled", p3.Title)
	assert.Equal(t, "2025-01-02T03:04:05.000Z", p3.Date)
	assert.Equal(t, "", p3.Description)
	assert.Nil(t, p3.Cover)
}

func TestListPostsIsolatesMalformedItems(t *testing.T) {
	f := &fakeNotion{
		queryDatabase: func(context.Context, string, notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error) {
			return notionclient.QueryDatabaseResponse{Results: raws(fullPage, noProperties, brokenPage, `42`, createdOnlyPage)}, nil
		},
	}

	posts, err := newTestService(f, testConfig()).ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 5)

	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, "Hello World", posts[0].Title)
	assert.Equal(t, "p2", posts[4].ID)

	for i, wantID := range map[int]string{1: "p4", 2: "p5", 3: "unknown"} {
		p := posts[i]
		assert.Equal(t, wantID, p.ID)
		assert.Equal(t, "Error loading post", p.Title)
		assert.Equal(t, "There was an error loading this post", p.Description)
		assert.Equal(t, "error", p.Slug)
		assert.Nil(t, p.Cover)
		assert.Equal(t, "2025-01-02T03:04:05.000Z", p.Date)
	}
}

func TestListPostsEmptyCollection(t *testing.T) {
	f := &fakeNotion{}

	posts, err := newTestService(f, testConfig()).ListPosts(context.Background())
	require.NoError(t, err)
	require.NotNil(t, posts)
	assert.Empty(t, posts)

	b, err := json.Marshal(posts)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestListPostsConfigurationMissing(t *testing.T) {
	for name, mutate := range map[string]func(*config.NotionConfig){
		"no token":       func(c *config.NotionConfig) { c.Token = "" },
		"no database id": func(c *config.NotionConfig) { c.DatabaseID = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			f := &fakeNotion{}

			_, err := newTestService(f, cfg).ListPosts(context.Background())
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Zero(t, f.calls.Load())
		})
	}
}

func TestListPostsQueryFailure(t *testing.T) {
	apiErr := &notionclient.APIError{Op: "QueryDatabase", Status: 401, Code: "unauthorized", Message: "API token is invalid."}
	f := &fakeNotion{
		queryDatabase: func(context.Context, string, notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error) {
			return notionclient.QueryDatabaseResponse{}, apiErr
		},
	}

	posts, err := newTestService(f, testConfig()).ListPosts(context.Background())
	assert.Nil(t, posts)
	assert.ErrorIs(t, err, ErrQuery)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "API token is invalid.")
}

func TestListPostsTimeoutMapsToQueryError(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	f := &fakeNotion{
		queryDatabase: func(ctx context.Context, _ string, _ notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error) {
			<-ctx.Done()
			return notionclient.QueryDatabaseResponse{}, ctx.Err()
		},
	}

	_, err := newTestService(f, cfg).ListPosts(context.Background())
	assert.ErrorIs(t, err, ErrQuery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListPostsIsIdempotent(t *testing.T) {
	f := &fakeNotion{
		queryDatabase: func(context.Context, string, notionclient.QueryDatabaseParams) (notionclient.QueryDatabaseResponse, error) {
			return notionclient.QueryDatabaseResponse{Results: raws(fullPage, createdOnlyPage, barePage, noProperties)}, nil
		},
	}
	svc := newTestService(f, testConfig())

	first, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	second, err := svc.ListPosts(context.Background())
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
}

func TestGetPostRejectsEmptyIDWithoutCalling(t *testing.T) {
	for _, id := range []string{"", "   "} {
		f := &fakeNotion{}
		_, err := newTestService(f, testConfig()).GetPost(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Zero(t, f.calls.Load())
	}
}

func TestGetPostWithoutTokenIsConfigurationError(t *testing.T) {
	cfg := testConfig()
	cfg.Token = ""
	f := &fakeNotion{}

	_, err := newTestService(f, cfg).GetPost(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, f.calls.Load())
}

func TestGetPostPassesThroughPageAndBlocks(t *testing.T) {
	pageRaw := `{"object":"page","id":"p1","properties":{"Anything":{"type":"rollup"}}}`
	f := &fakeNotion{
		retrievePage: func(_ context.Context, id string) (json.RawMessage, error) {
			assert.Equal(t, "p1", id)
			return json.RawMessage(pageRaw), nil
		},
		listBlockChildren: func(_ context.Context, id string, params notionclient.ListBlockChildrenParams) (notionclient.BlockChildrenResponse, error) {
			assert.Equal(t, "p1", id)
			assert.Equal(t, 100, params.PageSize)
			assert.Empty(t, params.StartCursor)
			return notionclient.BlockChildrenResponse{Results: raws(
				`{"type":"heading_1","heading_1":{"rich_text":[]}}`,
				`{"type":"exotic_unknown","exotic_unknown":{"x":1}}`,
				`{"type":"paragraph","paragraph":{"rich_text":[]}}`,
			)}, nil
		},
	}

	detail, err := newTestService(f, testConfig()).GetPost(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, pageRaw, string(detail.Page))
	require.Len(t, detail.Blocks, 3)
	assert.Equal(t, "heading_1", notionclient.BlockType(detail.Blocks[0]))
	assert.Equal(t, `{"type":"exotic_unknown","exotic_unknown":{"x":1}}`, string(detail.Blocks[1]))
	assert.Equal(t, "paragraph", notionclient.BlockType(detail.Blocks[2]))
}

func TestGetPostEmptyBlocksEncodeAsArray(t *testing.T) {
	f := &fakeNotion{
		retrievePage: func(context.Context, string) (json.RawMessage, error) {
			return json.RawMessage(`{"id":"p1"}`), nil
		},
	}

	detail, err := newTestService(f, testConfig()).GetPost(context.Background(), "p1")
	require.NoError(t, err)

	b, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":{"id":"p1"},"blocks":[]}`, string(b))
}

func TestGetPostFetchFailure(t *testing.T) {
	notFound := &notionclient.APIError{Op: "RetrievePage", Status: 404, Code: "object_not_found"}
	f := &fakeNotion{
		retrievePage: func(context.Context, string) (json.RawMessage, error) {
			return nil, notFound
		},
	}

	_, err := newTestService(f, testConfig()).GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, notionclient.ErrNotFound)
}

func TestGetPostBlockFailureCancelsPageFetch(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeNotion{
		retrievePage: func(ctx context.Context, _ string) (json.RawMessage, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		listBlockChildren: func(context.Context, string, notionclient.ListBlockChildrenParams) (notionclient.BlockChildrenResponse, error) {
			return notionclient.BlockChildrenResponse{}, boom
		},
	}

	_, err := newTestService(f, testConfig()).GetPost(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, boom)
}

func TestGetPostBlockPagination(t *testing.T) {
	pages := map[string]notionclient.BlockChildrenResponse{
		"":   {Results: raws(`{"type":"paragraph","n":1}`), HasMore: true, NextCursor: ptr("c2")},
		"c2": {Results: raws(`{"type":"paragraph","n":2}`), HasMore: true, NextCursor: ptr("c3")},
		"c3": {Results: raws(`{"type":"paragraph","n":3}`), HasMore: false},
	}
	newFake := func() *fakeNotion {
		return &fakeNotion{
			retrievePage: func(context.Context, string) (json.RawMessage, error) {
				return json.RawMessage(`{"id":"p1"}`), nil
			},
			listBlockChildren: func(_ context.Context, _ string, params notionclient.ListBlockChildrenParams) (notionclient.BlockChildrenResponse, error) {
				return pages[params.StartCursor], nil
			},
		}
	}

	t.Run("truncates to first page by default", func(t *testing.T) {
		f := newFake()
		detail, err := newTestService(f, testConfig()).GetPost(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, detail.Blocks, 1)
		assert.Equal(t, int32(2), f.calls.Load())
	})

	t.Run("follows cursors up to the configured page count", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxBlockPages = 5
		f := newFake()
		detail, err := newTestService(f, cfg).GetPost(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, detail.Blocks, 3)
		assert.JSONEq(t, `{"type":"paragraph","n":1}`, string(detail.Blocks[0]))
		assert.JSONEq(t, `{"type":"paragraph","n":3}`, string(detail.Blocks[2]))
	})
}

func TestCheckDatabase(t *testing.T) {
	f := &fakeNotion{
		retrieveDatabase: func(_ context.Context, id string) (notionclient.Database, error) {
			assert.Equal(t, "db-1", id)
			return notionclient.Database{
				Title:      []notionclient.RichText{{PlainText: "Research"}},
				Properties: map[string]json.RawMessage{"Name": nil, "Date": nil},
			}, nil
		},
	}

	health, err := newTestService(f, testConfig()).CheckDatabase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "Research", health.Database)
	assert.Equal(t, []string{"Date", "Name"}, health.Properties)
}

func ptr(s string) *string { return &s }
