package handler

import (
	"net/http"
	"strconv"

	"github.com/yourorg/tag-service/internal/middleware"
	"github.com/yourorg/tag-service/internal/service"
	"github.com/yourorg/tag-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TagHandler handles tag-related HTTP requests.
type TagHandler struct {
	tagService *service.TagService
	logger     *zap.Logger
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(tagService *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// CreateTagRequest is the body for tag creation. The caller becomes the
// owner.
type CreateTagRequest struct {
	Name    string `json:"name" binding:"required,tagname"`
	Content string `json:"content" binding:"required,max=2000"`
}

// Create handles tag creation
// POST /api/v1/spaces/{space_id}/tags
func (h *TagHandler) Create(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tag, err := h.tagService.Create(c.Request.Context(), spaceID, middleware.CallerID(c), req.Name, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tag})
}

// Get handles fetching a single tag by name or alias
// GET /api/v1/spaces/{space_id}/tags/{name}?resolve_alias=true
func (h *TagHandler) Get(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	resolveAlias := c.DefaultQuery("resolve_alias", "true") != "false"

	tag, err := h.tagService.Get(c.Request.Context(), spaceID, c.Param("name"), resolveAlias)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

// EditTagRequest is the body for a content edit. Nothing else about a tag
// is mutable.
type EditTagRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// Edit handles replacing a tag's content
// PUT /api/v1/spaces/{space_id}/tags/{name}
func (h *TagHandler) Edit(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	var req EditTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tag, err := h.tagService.Edit(c.Request.Context(), spaceID, c.Param("name"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

// Delete handles removing a tag
// DELETE /api/v1/spaces/{space_id}/tags/{name}
func (h *TagHandler) Delete(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	err := h.tagService.Delete(c.Request.Context(), spaceID, c.Param("name"), middleware.CallerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Purge handles deleting every tag one owner holds in a space
// DELETE /api/v1/spaces/{space_id}/owners/{owner_id}/tags
func (h *TagHandler) Purge(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	deleted, err := h.tagService.Purge(c.Request.Context(), spaceID, ownerID, middleware.CallerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count_deleted": deleted})
}

// List handles listing tags with their 1-based indexes
// GET /api/v1/spaces/{space_id}/tags?owner_id=&page=&limit=
func (h *TagHandler) List(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	ownerID, _ := strconv.ParseInt(c.DefaultQuery("owner_id", "0"), 10, 64)
	params := utils.ParsePaginationParams(c, 20, 100)

	tags, err := h.tagService.List(c.Request.Context(), spaceID, ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	start, end := params.PageBounds(len(tags))
	utils.SendPaginatedResponse(c, http.StatusOK, tags[start:end], len(tags), params)
}

// Count handles counting tags
// GET /api/v1/spaces/{space_id}/tag-count?owner_id=
func (h *TagHandler) Count(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	ownerID, _ := strconv.ParseInt(c.DefaultQuery("owner_id", "0"), 10, 64)

	count, err := h.tagService.Count(c.Request.Context(), spaceID, ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Search handles substring search over names and aliases
// GET /api/v1/spaces/{space_id}/tag-search?q=
func (h *TagHandler) Search(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Missing query parameter q")
		return
	}

	names, err := h.tagService.Search(c.Request.Context(), spaceID, query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": names})
}

// AddAliasRequest is the body for alias registration.
type AddAliasRequest struct {
	Alias string `json:"alias" binding:"required,aliasname"`
}

// AddAlias handles registering an alias for a tag
// POST /api/v1/spaces/{space_id}/tags/{name}/aliases
func (h *TagHandler) AddAlias(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	var req AddAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tag, err := h.tagService.AddAlias(c.Request.Context(), spaceID, c.Param("name"), req.Alias)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}

// Claim handles ownership reassignment once the original owner has left
// POST /api/v1/spaces/{space_id}/tags/{name}/claim
func (h *TagHandler) Claim(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	tag, err := h.tagService.Claim(c.Request.Context(), spaceID, c.Param("name"), middleware.CallerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tag})
}
