package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-site/cmd/api/dto"
	"portfolio-site/cmd/api/services"
	"portfolio-site/cmd/api/trace"
	"portfolio-site/cmd/internal/logger"
)

// ContentService 는 핸들러가 필요로 하는 서비스 메서드 집합이다.
type ContentService interface {
	ListPosts(ctx context.Context) ([]dto.PostSummaryDTO, error)
	GetPost(ctx context.Context, id string) (*dto.PostDetailDTO, error)
	CheckDatabase(ctx context.Context) (dto.HealthResponseDTO, error)
}

var _ ContentService = (*services.ContentService)(nil)

// ContentHandler godoc
// @Summary      List posts or get a single post
// @Description  Without id, returns every post of the Notion database as summaries (newest first).
// @Description  With id, returns the raw Notion page and its ordered blocks.
// @Tags         content
// @Param        id   query  string  false  "Notion page id"
// @Produce      json
// @Success      200  {array}   dto.PostSummaryDTO
// @Success      200  {object}  dto.PostDetailDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /content [get]
func ContentHandler(svc ContentService) gin.HandlerFunc {
	list := ListPostsHandler(svc)
	get := GetPostHandler(svc)
	return func(c *gin.Context) {
		if _, ok := c.GetQuery("id"); ok {
			get(c)
			return
		}
		list(c)
	}
}

// ListPostsHandler 는 ?id 가 없는 /content 요청을 처리한다.
func ListPostsHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := svc.ListPosts(c.Request.Context())
		if err != nil {
			label := "Failed to fetch posts"
			switch {
			case errors.Is(err, services.ErrConfiguration):
				label = "Notion API configuration missing"
			case errors.Is(err, services.ErrQuery):
				label = "Failed to query Notion database"
			}
			respondError(c, http.StatusInternalServerError, label, err)
			return
		}
		c.JSON(http.StatusOK, posts)
	}
}

// GetPostHandler 는 ?id= 가 있는 /content 요청을 처리한다.
func GetPostHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetPost(c.Request.Context(), c.Query("id"))
		if err != nil {
			if errors.Is(err, services.ErrInvalidArgument) {
				c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "Post ID is required"})
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to fetch post content", err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Description  Retrieves the Notion database metadata to verify credentials and access.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Failure      503  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.CheckDatabase(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponseDTO{Status: "degraded", Notion: "down", Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func respondError(c *gin.Context, status int, label string, err error) {
	logger.ErrorWithFields(label, logger.Fields{
		"request_id": trace.RequestIDFromContext(c.Request.Context()),
		"path":       c.Request.URL.Path,
		"error":      err.Error(),
	})
	c.JSON(status, dto.ErrorResponseDTO{Error: label, Message: err.Error()})
}
