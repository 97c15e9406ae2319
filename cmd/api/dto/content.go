package dto

import "encoding/json"

// PostSummaryDTO 는 블로그 목록 화면의 한 항목이다.
// Notion property 에서 추출한 값이며, 없는 필드는 정해진 기본값으로 채운다.
type PostSummaryDTO struct {
	ID          string  `json:"id" example:"1a2b3c4d-0000-4000-8000-000000000000"`
	Title       string  `json:"title" example:"Hello World"`
	Date        string  `json:"date" example:"2024-05-01"`
	Description string  `json:"description" example:"Notes on building a content proxy"`
	Cover       *string `json:"cover" example:"https://images.example.com/cover.png"`
	// Slug 는 제목에서 파생된 표시용 값이다. 고유하지 않으며 조회에는 id 를 사용한다.
	Slug string `json:"slug" example:"hello-world"`
}

// PostDetailDTO 는 단일 글 화면 응답이다.
// Page 는 Notion page object 원본, Blocks 는 문서 순서대로의 block object 원본이다.
type PostDetailDTO struct {
	Page   json.RawMessage   `json:"page" swaggertype:"object"`
	Blocks []json.RawMessage `json:"blocks" swaggertype:"array,object"`
}
