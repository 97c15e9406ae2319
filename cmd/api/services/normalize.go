package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"

	"portfolio-site/cmd/api/clients/notionclient"
	"portfolio-site/cmd/api/dto"
)

// Notion 데이터베이스의 property 이름. 블로그 데이터베이스 스키마에 맞춰져 있다.
const (
	propTitle         = "Name"
	propDate          = "Date"
	propSummary       = "Content Summary"
	propDescription   = "Description"
	propFeaturedImage = "Featured Image"
)

const (
	untitled = "Untitled"

	placeholderID          = "unknown"
	placeholderTitle       = "Error loading post"
	placeholderDescription = "There was an error loading this post"
	placeholderSlug        = "error"
)

// isoMillis 는 JavaScript Date.toISOString 과 같은 형식이다.
const isoMillis = "2006-01-02T15:04:05.000Z"

var errNoProperties = errors.New("page has no properties")

// extractSummary 는 page 원본 하나를 PostSummaryDTO 로 변환한다.
// 필드별 값이 없으면 기본값을 쓰고, page 자체를 해석할 수 없을 때만 에러를 반환한다.
func extractSummary(raw json.RawMessage, now time.Time) (dto.PostSummaryDTO, error) {
	page, err := notionclient.DecodePage(raw)
	if err != nil {
		return dto.PostSummaryDTO{}, err
	}
	if page.Properties == nil {
		return dto.PostSummaryDTO{}, errNoProperties
	}

	title := extractTitle(page)
	return dto.PostSummaryDTO{
		ID:          page.ID,
		Title:       title,
		Date:        extractDate(page, now),
		Description: extractDescription(page),
		Cover:       extractCover(page),
		Slug:        Slugify(title),
	}, nil
}

func placeholderSummary(raw json.RawMessage, now time.Time) dto.PostSummaryDTO {
	id, ok := notionclient.PageID(raw)
	if !ok {
		id = placeholderID
	}
	return dto.PostSummaryDTO{
		ID:          id,
		Title:       placeholderTitle,
		Date:        formatISO(now),
		Description: placeholderDescription,
		Cover:       nil,
		Slug:        placeholderSlug,
	}
}

func extractTitle(page notionclient.Page) string {
	if t := firstPlainText(page.Properties[propTitle].Title); t != "" {
		return t
	}
	return untitled
}

// extractDate: Date property → created_time → now
func extractDate(page notionclient.Page, now time.Time) string {
	if d := page.Properties[propDate].Date; d != nil && d.Start != "" {
		return d.Start
	}
	if page.CreatedTime != "" {
		return page.CreatedTime
	}
	return formatISO(now)
}

func extractDescription(page notionclient.Page) string {
	if s := firstPlainText(page.Properties[propSummary].RichText); s != "" {
		return s
	}
	return firstPlainText(page.Properties[propDescription].RichText)
}

// extractCover 는 page cover 가 있으면 그것만 보고, 없을 때에만 Featured Image 를 본다.
func extractCover(page notionclient.Page) *string {
	if page.Cover != nil {
		switch page.Cover.Type {
		case "external":
			return linkURL(page.Cover.External)
		case "file":
			return linkURL(page.Cover.File)
		}
		return nil
	}

	files := page.Properties[propFeaturedImage].Files
	if len(files) == 0 {
		return nil
	}
	if u := linkURL(files[0].File); u != nil {
		return u
	}
	return linkURL(files[0].External)
}

func linkURL(l *notionclient.FileLink) *string {
	if l == nil || l.URL == "" {
		return nil
	}
	u := l.URL
	return &u
}

func firstPlainText(rt []notionclient.RichText) string {
	if len(rt) == 0 {
		return ""
	}
	return rt[0].PlainText
}

// Slugify 는 제목을 소문자로 바꾸고 연속된 공백 하나하나를 '-' 하나로 치환한다.
// "  A   B" → "-a-b"
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	inSpace := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
