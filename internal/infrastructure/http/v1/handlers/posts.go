package handlers

import (
	"github.com/gin-gonic/gin"

	"postboard/internal/domain/auth"
	"postboard/internal/domain/post"
	"postboard/internal/domain/query"
	"postboard/internal/infrastructure/http/v1/dto"
)

// PostHandler handles /posts endpoints.
type PostHandler struct {
	*BaseHandler
	posts *post.Service
	users *auth.Service
}

// NewPostHandler creates a post handler. users resolves roles for
// author-or-admin checks.
func NewPostHandler(base *BaseHandler, posts *post.Service, users *auth.Service) *PostHandler {
	return &PostHandler{BaseHandler: base, posts: posts, users: users}
}

// List handles GET /posts
func (h *PostHandler) List(c *gin.Context) {
	opts, err := query.ParseQuery(c.Request.URL.RawQuery)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.posts.Paginate(c.Request.Context(), opts)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromResult(res))
}

// Get handles GET /posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := h.ParseID(c)
	if !ok {
		return
	}

	p, err := h.posts.GetByID(c.Request.Context(), postID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPost(p))
}

// Create handles POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.posts.Create(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPost(p))
}

// GenerateRandom handles POST /posts/random
func (h *PostHandler) GenerateRandom(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	if err := h.posts.GenerateRandom(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.SuccessResponse{Success: true})
}

// Update handles PATCH /posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	postID, ok := h.ensureCanModify(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.posts.Update(c.Request.Context(), postID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPost(p))
}

// Delete handles DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := h.ensureCanModify(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), postID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PostHandler) ensureCanModify(c *gin.Context) (int64, bool) {
	userID, ok := h.UserID(c)
	if !ok {
		return 0, false
	}
	postID, ok := h.ParseID(c)
	if !ok {
		return 0, false
	}

	ctx := c.Request.Context()
	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return 0, false
	}
	if err := h.posts.EnsureCanModify(ctx, postID, userID, user.Role == auth.RoleAdmin); err != nil {
		h.Error(c, err)
		return 0, false
	}
	return postID, true
}

// RegisterRoutes registers post routes.
func (h *PostHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("", h.List)
	public.GET("/:id", h.Get)

	protected.POST("", h.Create)
	protected.POST("/random", h.GenerateRandom)
	protected.PATCH("/:id", h.Update)
	protected.DELETE("/:id", h.Delete)
}
