package notionclient

import (
	"encoding/json"
	"fmt"
)

// Sort 는 database query 의 정렬 조건 하나다.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

const (
	Ascending  = "ascending"
	Descending = "descending"
)

type QueryDatabaseParams struct {
	Sorts       []Sort `json:"sorts,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// QueryDatabaseResponse 의 Results 는 page object 원본이다.
// 페이지마다 스키마가 다를 수 있으므로 디코딩은 호출 측에서 항목별로 수행한다.
type QueryDatabaseResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
}

type ListBlockChildrenParams struct {
	PageSize    int
	StartCursor string
}

type BlockChildrenResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
}

// Database 는 /databases/{id} 응답 중 health 확인에 필요한 부분만 담는다.
type Database struct {
	ID         string                     `json:"id"`
	Title      []RichText                 `json:"title"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// PlainTitle 은 데이터베이스 제목의 첫 조각을 반환한다.
func (d Database) PlainTitle() string {
	if len(d.Title) == 0 {
		return ""
	}
	return d.Title[0].PlainText
}

// Page 는 page object 중 목록 정규화에 쓰는 필드만 디코딩한 형태다.
// Properties 의 키와 타입은 데이터베이스마다 다르므로 모두 optional 로 취급한다.
type Page struct {
	Object      string              `json:"object"`
	ID          string              `json:"id"`
	CreatedTime string              `json:"created_time"`
	Cover       *FileObject         `json:"cover"`
	Properties  map[string]Property `json:"properties"`
}

// Property 는 page property value 하나다. Type 에 해당하는 필드만 채워진다.
type Property struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Title    []RichText   `json:"title,omitempty"`
	RichText []RichText   `json:"rich_text,omitempty"`
	Date     *DateValue   `json:"date,omitempty"`
	Files    []FileObject `json:"files,omitempty"`
}

type RichText struct {
	Type      string  `json:"type"`
	PlainText string  `json:"plain_text"`
	Href      *string `json:"href"`
}

type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

// FileObject 는 cover 와 files property 항목에 쓰이는 파일 참조다.
// type 이 "external" 이면 External, "file" 이면 File 이 채워진다.
type FileObject struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	External *FileLink `json:"external,omitempty"`
	File     *FileLink `json:"file,omitempty"`
}

type FileLink struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// DecodePage 는 page object 원본을 Page 로 디코딩한다.
func DecodePage(raw json.RawMessage) (Page, error) {
	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	return p, nil
}

// PageID 는 디코딩이 불가능한 page 원본에서도 id 를 최대한 읽어낸다.
func PageID(raw json.RawMessage) (string, bool) {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.ID == "" {
		return "", false
	}
	return v.ID, true
}

// BlockType 은 block 원본의 type discriminator 를 반환한다. 읽을 수 없으면 빈 문자열이다.
func BlockType(raw json.RawMessage) string {
	var v struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v.Type
}
