package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"polyglot/backend/internal/model"
	"polyglot/backend/internal/service"
)

type TagHandler struct {
	service service.TagService
}

type tagRequest struct {
	Name string `json:"name"`
}

type tagResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type tagPageResponse struct {
	Items    []tagResponse `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int           `json:"total"`
}

func NewTagHandler(service service.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func (h *TagHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/tags", h.Create)
	g.GET("/tags", h.Search)
	g.GET("/tags/:id", h.Get)
	g.PUT("/tags/:id", h.Update)
	g.DELETE("/tags/:id", h.Delete)
}

func (h *TagHandler) Create(c echo.Context) error {
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	tag, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTagResponse(tag))
}

func (h *TagHandler) Get(c echo.Context) error {
	tag, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTagResponse(tag))
}

func (h *TagHandler) Update(c echo.Context) error {
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	tag, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTagResponse(tag))
}

func (h *TagHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TagHandler) Search(c echo.Context) error {
	page, err := h.service.Search(c.Request().Context(), service.TagSearchParams{
		Name:     queryString(c, "name"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 0),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	items := make([]tagResponse, 0, len(page.Items))
	for _, tag := range page.Items {
		items = append(items, toTagResponse(tag))
	}
	return c.JSON(http.StatusOK, tagPageResponse{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	})
}

func toTagResponse(tag model.Tag) tagResponse {
	return tagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: tag.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
