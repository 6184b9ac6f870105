// Review and immediate-response HTTP handlers.
//
//   - GET  /businesses/{id}/reviews/eligible   (candidates for templated replies)
//   - POST /businesses/{id}/responses/preview  (render without writing)
//   - POST /businesses/{id}/responses/bulk     (apply a template now)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/horlartundhey/servisbet-sub001/internal/services"
	"github.com/horlartundhey/servisbet-sub001/internal/utils"
)

const maxEligibleLimit = 200

// ListEligibleReviews godoc
// @ID          listEligibleReviews
// @Summary     List reviews eligible for a templated response
// @Description Returns reviews by registered authors with a summary of responded and unresponded counts. An empty list is a valid result.
// @Tags        Reviews
// @Produce     json
//
// @Param       id          path   string  true  "Business ID (UUID)"  format(uuid)
// @Param       status      query  string  false "Response status"     Enums(all, unresponded, responded) default(all)
// @Param       min_rating  query  int     false "Minimum rating"      minimum(1) maximum(5)
// @Param       sort_by     query  string  false "Sort order"          Enums(newest, oldest, rating_low, rating_high) default(newest)
// @Param       limit       query  int     false "Maximum reviews"     minimum(1) maximum(200)
//
// @Success     200  {object} services.EligibleReviews
// @Failure     400  {object} handlers.ErrorResponse "Invalid filter"
// @Failure     404  {object} handlers.ErrorResponse "Business not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /businesses/{id}/reviews/eligible [get]
func (h *Handlers) ListEligibleReviews(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	minRating, _, err := utils.OptionalInt(c.Query("min_rating"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "min_rating must be an integer")
		return
	}
	limit, present, err := utils.OptionalInt(c.Query("limit"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be an integer")
		return
	}
	if present {
		limit = utils.Clamp(limit, 1, maxEligibleLimit)
	}

	res, err := h.eligSvc.ListEligible(c.Request.Context(), businessID, services.ReviewFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		MinRating: minRating,
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (h *Handlers) batchRequest(c *gin.Context) (services.BatchRequest, bool) {
	businessID, valid := businessParam(c)
	if !valid {
		return services.BatchRequest{}, false
	}
	var req BatchResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "template_id and at least one response are required")
		return services.BatchRequest{}, false
	}
	return services.BatchRequest{
		BusinessID:  businessID,
		TemplateID:  strings.TrimSpace(req.TemplateID),
		RequesterID: userID(c),
		Items:       toItems(req.Responses),
		Variables:   req.CustomVariables,
	}, true
}

// PreviewResponses godoc
// @ID          previewResponses
// @Summary     Preview templated responses
// @Description Renders the template for each review without writing anything.
// @Tags        Responses
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Business ID (UUID)"     format(uuid)
// @Param       body       body    handlers.BatchResponseRequest  true  "Template and target reviews"
//
// @Success     200  {object} handlers.PreviewResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Business or template not found"
// @Router      /businesses/{id}/responses/preview [post]
func (h *Handlers) PreviewResponses(c *gin.Context) {
	req, valid := h.batchRequest(c)
	if !valid {
		return
	}
	previews, err := h.execSvc.Preview(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, PreviewResponse{Previews: previews})
}

// BulkRespond godoc
// @ID          bulkRespond
// @Summary     Send templated responses now
// @Description Applies the template to each review. Per-review failures are reported in the results and do not fail the request.
// @Tags        Responses
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Business ID (UUID)"     format(uuid)
// @Param       body       body    handlers.BatchResponseRequest  true  "Template and target reviews"
//
// @Success     200  {object} handlers.BulkResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Business or template not found"
// @Failure     409  {object} handlers.ErrorResponse "Template archived"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /businesses/{id}/responses/bulk [post]
func (h *Handlers) BulkRespond(c *gin.Context) {
	req, valid := h.batchRequest(c)
	if !valid {
		return
	}
	res, err := h.execSvc.Execute(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, BulkResponse{Results: res, Sent: len(res.Successful), Failed: len(res.Failed)})
}
