package services

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration 은 Notion 토큰이나 데이터베이스 ID 가 설정되지 않은 경우다.
	ErrConfiguration = errors.New("notion configuration missing")
	// ErrQuery 는 데이터베이스 query 자체가 실패한 경우다. (네트워크, 인증, 타임아웃 등)
	ErrQuery = errors.New("notion database query failed")
	// ErrInvalidArgument 는 단건 조회에 id 가 없는 경우다.
	ErrInvalidArgument = errors.New("post id is required")
	// ErrFetch 는 단건 조회 실패다. not found 와 일시적 장애를 구분하지 않는다.
	ErrFetch = errors.New("notion page fetch failed")
)

// ItemExtractionError 는 목록의 한 항목만 정규화에 실패한 경우다.
// 목록 전체를 실패시키지 않고 placeholder 로 대체한 뒤 로그만 남긴다.
type ItemExtractionError struct {
	Index  int
	PageID string
	Err    error
}

func (e *ItemExtractionError) Error() string {
	return fmt.Sprintf("extract post %d (%s): %v", e.Index, e.PageID, e.Err)
}

func (e *ItemExtractionError) Unwrap() error { return e.Err }
