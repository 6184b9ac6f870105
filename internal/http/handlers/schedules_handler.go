// Schedule HTTP handlers.
//
//   - POST /businesses/{id}/schedules            (create, Idempotency-Key aware)
//   - GET  /businesses/{id}/schedules            (list, ETag support)
//   - GET  /businesses/{id}/schedules/analytics  (aggregate statistics)
//   - GET  /schedules/{id}                       (detail)
//   - POST /schedules/{id}/cancel                (cancel a pending batch)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/horlartundhey/servisbet-sub001/internal/http/middleware"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

func scheduleParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "schedule id must be a UUID")
		return "", false
	}
	return id, true
}

// CreateSchedule godoc
// @ID          createSchedule
// @Summary     Schedule templated responses
// @Description Persists a batch to be sent at scheduled_time (at least the configured lead time ahead). Every review must be eligible now. Repeating the request with the same Idempotency-Key returns the original schedule with 200.
// @Tags        Schedules
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(owner-1)
// @Param       Idempotency-Key  header  string  false "Idempotency key"        example(sched-2025-03-01-a)
// @Param       id               path    string  true  "Business ID (UUID)"     format(uuid)
// @Param       body             body    handlers.CreateScheduleRequest  true  "Batch to schedule"
//
// @Success     201  {object} services.ScheduleReceipt
// @Success     200  {object} services.ScheduleReceipt "Idempotent replay"
// @Header      200  {string} Idempotent-Replayed "true on replay"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed or too soon"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Business, template or review not found"
// @Failure     409  {object} handlers.ErrorResponse "Template archived"
// @Failure     422  {object} handlers.ErrorResponse "Review not eligible"
// @Failure     429  {object} handlers.ErrorResponse "Too many requests"
// @Router      /businesses/{id}/schedules [post]
func (h *Handlers) CreateSchedule(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "template_id, responses and scheduled_time are required")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	receipt, err := h.schedSvc.Schedule(c.Request.Context(), services.ScheduleRequest{
		BusinessID:     businessID,
		RequesterID:    userID(c),
		TemplateID:     strings.TrimSpace(req.TemplateID),
		Items:          toItems(req.Responses),
		ScheduledTime:  req.ScheduledTime,
		Variables:      req.CustomVariables,
		IdempotencyKey: key,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if receipt.Replayed {
		middleware.MarkReplayed(c)
		ok(c, http.StatusOK, receipt)
		return
	}
	ok(c, http.StatusCreated, receipt)
}

// ListSchedules godoc
// @ID          listSchedules
// @Summary     List a business's scheduled batches
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Schedules
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(owner-1)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       id             path    string  true  "Business ID (UUID)"          format(uuid)
//
// @Success     200  {object} handlers.ListSchedulesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Business not found"
// @Router      /businesses/{id}/schedules [get]
func (h *Handlers) ListSchedules(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	items, err := h.schedSvc.List(ctx, businessID, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if svc, isConcrete := h.schedSvc.(*services.Scheduler); isConcrete && svc.DB != nil {
		count, maxTS, err := repo.SchedulesStats(ctx, svc.DB, businessID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"schedules:%s:%d:%d"`, businessID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	ok(c, http.StatusOK, ListSchedulesResponse{Schedules: items, Total: len(items)})
}

// ScheduleAnalytics godoc
// @ID          scheduleAnalytics
// @Summary     Scheduling analytics
// @Description Counts per status, total responses sent, average per completed batch, most active hour and activity in the last 30 days.
// @Tags        Schedules
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Business ID (UUID)"     format(uuid)
//
// @Success     200  {object} services.Analytics
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Business not found"
// @Router      /businesses/{id}/schedules/analytics [get]
func (h *Handlers) ScheduleAnalytics(c *gin.Context) {
	businessID, valid := businessParam(c)
	if !valid {
		return
	}
	a, err := h.schedSvc.Analytics(c.Request.Context(), businessID, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, a)
}

// GetSchedule godoc
// @ID          getSchedule
// @Summary     Get a scheduled batch
// @Tags        Schedules
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Schedule ID (UUID)"     format(uuid)
//
// @Success     200  {object} domain.ScheduledBatch
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Schedule not found"
// @Router      /schedules/{id} [get]
func (h *Handlers) GetSchedule(c *gin.Context) {
	id, valid := scheduleParam(c)
	if !valid {
		return
	}
	b, err := h.schedSvc.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// CancelSchedule godoc
// @ID          cancelSchedule
// @Summary     Cancel a pending batch
// @Description Only pending batches can be cancelled; executing or finished ones return 409.
// @Tags        Schedules
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(owner-1)
// @Param       id         path    string  true  "Schedule ID (UUID)"     format(uuid)
//
// @Success     200  {object} domain.ScheduledBatch
// @Failure     403  {object} handlers.ErrorResponse "Not the business owner"
// @Failure     404  {object} handlers.ErrorResponse "Schedule not found"
// @Failure     409  {object} handlers.ErrorResponse "Not pending"
// @Router      /schedules/{id}/cancel [post]
func (h *Handlers) CancelSchedule(c *gin.Context) {
	id, valid := scheduleParam(c)
	if !valid {
		return
	}
	b, err := h.schedSvc.Cancel(c.Request.Context(), id, userID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}
