// Template HTTP handlers.
//
// This file exposes REST endpoints for response templates:
//   - POST   /businesses/{id}/templates            (create)
//   - GET    /businesses/{id}/templates            (list, ETag support)
//   - GET    /businesses/{id}/templates/suggested  (suggest for a review)
//   - GET    /templates/{id}                       (detail)
//   - PUT    /templates/{id}                       (edit)
//   - DELETE /templates/{id}                       (delete or archive)
//   - POST   /templates/{id}/default               (make default)
//   - GET    /templates/{id}/variables             (placeholder metadata)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
	"github.com/horlartundhey/servisbet-sub001/internal/services"
	"github.com/horlartundhey/servisbet-sub001/internal/utils"
)

// CreateTemplateRequest is the JSON payload for creating a template.
type CreateTemplateRequest struct {
	Name        string          `json:"name" binding:"required,max=255" example:"Five star thanks"`
	Description string          `json:"description,omitempty" example:"Default reply for happy customers"`
	Content     string          `json:"content" binding:"required" example:"Hi {{customerName}}, thanks for the {{rating}}-star review!"`
	Category    domain.Category `json:"category" binding:"required" example:"positive"`
	// RatingMin and RatingMax default to 1..5 when both are omitted.
	RatingMin int                       `json:"rating_min,omitempty" example:"4"`
	RatingMax int                       `json:"rating_max,omitempty" example:"5"`
	Keywords  []string                  `json:"keywords,omitempty"`
	Variables []domain.TemplateVariable `json:"variables,omitempty"`
	IsDefault bool                      `json:"is_default,omitempty"`
	AutoApply bool                      `json:"auto_apply,omitempty"`
}

// UpdateTemplateRequest is the JSON payload for editing a template. Omitted
// fields are left unchanged.
type UpdateTemplateRequest struct {
	Name        *string                    `json:"name,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Content     *string                    `json:"content,omitempty"`
	Category    *domain.Category           `json:"category,omitempty"`
	RatingMin   *int                       `json:"rating_min,omitempty"`
	RatingMax   *int                       `json:"rating_max,omitempty"`
	Keywords    *[]string                  `json:"keywords,omitempty"`
	Variables   *[]domain.TemplateVariable `json:"variables,omitempty"`
	IsActive    *bool                      `json:"is_active,omitempty"`
	AutoApply   *bool                      `json:"auto_apply,omitempty"`
}

// businessParam validates the {id} path parameter of /businesses routes.
func businessParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "business id must be a UUID")
		return "", false
	}
	return id, true
}

func templateParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return "", false
	}
	return id, true
}

// CreateTemplate godoc
// @ID          createTemplate
// @Summary     Create a response template
// @Description Creates a template for a business owned by the current user. Keywords are derived from the content when omitted.
// @Tags        Templates
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Business ID (UUID)"     format(uuid)
// @Param       body       body    handlers.CreateTemplateRequest  true  "Template payload"
//
// @Success     201  {object}  domain.ResponseTemplate
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the business owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Business not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Default already exists for category"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /businesses/{id}/templates [post]
func (h *Handlers) CreateTemplate(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid JSON body")
		return
	}

	t, err := h.tplSvc.Create(c.Request.Context(), businessID, userID(c), services.TemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Body:        req.Content,
		Category:    req.Category,
		RatingMin:   req.RatingMin,
		RatingMax:   req.RatingMax,
		Keywords:    req.Keywords,
		Variables:   req.Variables,
		IsDefault:   req.IsDefault,
		AutoApply:   req.AutoApply,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List a business's templates
// @Description Returns templates ordered default first, then most used, then name. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID         header  string  false "User ID (demo header)"       example(owner-1)
// @Param       If-None-Match     header  string  false "Return 304 if ETag matches"  example(W/\"templates:abc:3:1700000000\")
// @Param       id                path    string  true  "Business ID (UUID)"          format(uuid)
// @Param       category          query   string  false "Filter by category"          Enums(positive, neutral, negative, complaint, thank_you, apology, follow_up, general)
// @Param       include_archived  query   bool    false "Include archived templates"  default(false)
//
// @Success     200  {object} handlers.ListTemplatesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Business not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /businesses/{id}/templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	q := repo.TemplateQuery{
		Category:        domain.Category(strings.TrimSpace(c.Query("category"))),
		IncludeArchived: utils.BoolDefault(c.Query("include_archived"), false),
	}
	if q.Category != "" && !q.Category.IsValid() {
		fail(c, http.StatusBadRequest, ErrCodeValidation, services.ErrInvalidCategory.Error())
		return
	}

	items, err := h.tplSvc.List(ctx, businessID, userID(c), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// ETag (best effort). Computed after List so only the owner sees it.
	if svc, isConcrete := h.tplSvc.(*services.TemplateService); isConcrete && svc.DB != nil {
		count, maxTS, err := repo.TemplatesStats(ctx, svc.DB, businessID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"templates:%s:%d:%d"`, businessID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	ok(c, http.StatusOK, ListTemplatesResponse{Templates: items, Total: len(items)})
}

// SuggestTemplates godoc
// @ID          suggestTemplates
// @Summary     Suggest templates for a review
// @Description Returns up to five active templates covering the rating, preferring keyword matches against the review text.
// @Tags        Templates
// @Produce     json
//
// @Param       id      path    string  true  "Business ID (UUID)"  format(uuid)
// @Param       rating  query   int     true  "Review rating"       minimum(1) maximum(5)
// @Param       text    query   string  false "Review text"
//
// @Success     200  {object} handlers.ListTemplatesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /businesses/{id}/templates/suggested [get]
func (h *Handlers) SuggestTemplates(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	rating, present, err := utils.OptionalInt(c.Query("rating"))
	if err != nil || !present {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rating query parameter (1-5) is required")
		return
	}

	items, err := h.tplSvc.FindSuggested(c.Request.Context(), businessID, rating, c.Query("text"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, ListTemplatesResponse{Templates: items, Total: len(items)})
}

// GetTemplate godoc
// @ID          getTemplate
// @Summary     Get a template
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
//
// @Success     200  {object} domain.ResponseTemplate
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /templates/{id} [get]
func (h *Handlers) GetTemplate(c *gin.Context) {
	id, valid := templateParam(c)
	if !valid {
		return
	}
	t, err := h.tplSvc.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// UpdateTemplate godoc
// @ID          updateTemplate
// @Summary     Edit a template
// @Description Applies the supplied fields; content edits bump the version and re-derive keywords when none are given.
// @Tags        Templates
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
// @Param       body       body    handlers.UpdateTemplateRequest  true  "Fields to change"
//
// @Success     200  {object} domain.ResponseTemplate
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Failure     409  {object} handlers.ErrorResponse "Template archived or default conflict"
// @Router      /templates/{id} [put]
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	id, valid := templateParam(c)
	if !valid {
		return
	}
	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid JSON body")
		return
	}

	t, err := h.tplSvc.Update(c.Request.Context(), id, userID(c), services.TemplatePatch{
		Name:        req.Name,
		Description: req.Description,
		Body:        req.Content,
		Category:    req.Category,
		RatingMin:   req.RatingMin,
		RatingMax:   req.RatingMax,
		Keywords:    req.Keywords,
		Variables:   req.Variables,
		IsActive:    req.IsActive,
		AutoApply:   req.AutoApply,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTemplate godoc
// @ID          deleteTemplate
// @Summary     Delete or archive a template
// @Description Templates that were never used are deleted; used ones are archived so history stays intact.
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
//
// @Success     200  {object} handlers.RemoveTemplateResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /templates/{id} [delete]
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	id, valid := templateParam(c)
	if !valid {
		return
	}
	archived, err := h.tplSvc.Remove(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, RemoveTemplateResponse{Archived: archived, Deleted: !archived})
}

// SetDefaultTemplate godoc
// @ID          setDefaultTemplate
// @Summary     Make a template the category default
// @Description Clears any other default of the same business and category.
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
//
// @Success     200  {object} domain.ResponseTemplate
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Failure     409  {object} handlers.ErrorResponse "Template archived"
// @Router      /templates/{id}/default [post]
func (h *Handlers) SetDefaultTemplate(c *gin.Context) {
	id, valid := templateParam(c)
	if !valid {
		return
	}
	t, err := h.tplSvc.SetDefault(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// TemplateVariables godoc
// @ID          templateVariables
// @Summary     List template variables
// @Description Returns placeholders used by the content, merged with declared metadata.
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
//
// @Success     200  {object} handlers.VariablesResponse
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /templates/{id}/variables [get]
func (h *Handlers) TemplateVariables(c *gin.Context) {
	id, valid := templateParam(c)
	if !valid {
		return
	}
	vars, err := h.tplSvc.Variables(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, VariablesResponse{TemplateID: id, Variables: vars})
}
