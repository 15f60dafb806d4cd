package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"polyglot/backend/internal/model"
	"polyglot/backend/internal/service"
)

type TranslationHandler struct {
	service service.TranslationService
}

type createTranslationRequest struct {
	Key     string   `json:"key"`
	Locale  string   `json:"locale"`
	Content string   `json:"content"`
	TagIDs  []string `json:"tagIds"`
}

type updateTranslationRequest struct {
	Key     *string   `json:"key"`
	Locale  *string   `json:"locale"`
	Content *string   `json:"content"`
	TagIDs  *[]string `json:"tagIds"`
}

type syncTagsRequest struct {
	TagIDs []string `json:"tagIds"`
}

type translationResponse struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Locale    string        `json:"locale"`
	Content   string        `json:"content"`
	Tags      []tagResponse `json:"tags"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

type translationPageResponse struct {
	Items    []translationResponse `json:"items"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
	Total    int                   `json:"total"`
}

func NewTranslationHandler(service service.TranslationService) *TranslationHandler {
	return &TranslationHandler{service: service}
}

func (h *TranslationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/translations", h.Create)
	g.GET("/translations", h.Search)
	g.GET("/translations/:id", h.Get)
	g.PUT("/translations/:id", h.Update)
	g.DELETE("/translations/:id", h.Delete)
	g.PUT("/translation-keys/:id/tags", h.SyncTags)
}

func (h *TranslationHandler) Create(c echo.Context) error {
	var req createTranslationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	translation, err := h.service.Create(c.Request().Context(), service.CreateTranslationInput{
		Key:     req.Key,
		Locale:  req.Locale,
		Content: req.Content,
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTranslationResponse(translation))
}

func (h *TranslationHandler) Get(c echo.Context) error {
	translation, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(translation))
}

func (h *TranslationHandler) Update(c echo.Context) error {
	var req updateTranslationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	translation, err := h.service.Update(c.Request().Context(), c.Param("id"), service.UpdateTranslationInput{
		Key:     req.Key,
		Locale:  req.Locale,
		Content: req.Content,
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(translation))
}

func (h *TranslationHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TranslationHandler) Search(c echo.Context) error {
	page, err := h.service.Search(c.Request().Context(), service.TranslationSearchParams{
		Key:      queryString(c, "key"),
		Value:    queryString(c, "value"),
		Locale:   queryString(c, "locale"),
		Tag:      queryString(c, "tag"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 0),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	items := make([]translationResponse, 0, len(page.Items))
	for _, translation := range page.Items {
		items = append(items, toTranslationResponse(translation))
	}
	return c.JSON(http.StatusOK, translationPageResponse{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	})
}

func (h *TranslationHandler) SyncTags(c echo.Context) error {
	var req syncTagsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if err := h.service.SyncTags(c.Request().Context(), c.Param("id"), req.TagIDs); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toTranslationResponse(translation model.Translation) translationResponse {
	tags := make([]tagResponse, 0, len(translation.Tags))
	for _, tag := range translation.Tags {
		tags = append(tags, toTagResponse(tag))
	}
	return translationResponse{
		ID:        translation.ID,
		Key:       translation.Key,
		Locale:    translation.Locale,
		Content:   translation.Content,
		Tags:      tags,
		CreatedAt: translation.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: translation.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
