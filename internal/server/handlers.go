package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	jobdomain "github.com/openhire/jobfeed/internal/job/domain"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
)

func (h *handler) listJobs(c *gin.Context) {
	filter := jobdomain.ListFilter{
		Company:   c.Query("company"),
		Workplace: c.Query("workplace"),
		Query:     c.Query("q"),
		Page:      queryInt(c, "page", 1),
		Size:      queryInt(c, "size", 50),
	}

	jobs, total, err := h.jobs.List(c.Request.Context(), h.db, filter)
	if err != nil {
		h.log.Error("job listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"jobs":  jobs,
	})
}

func (h *handler) getJob(c *gin.Context) {
	job, err := h.jobs.FindByUID(c.Request.Context(), h.db, c.Param("uid"))
	if err != nil {
		h.log.Error("job lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *handler) listSources(c *gin.Context) {
	sources, err := h.sources.List(c.Request.Context())
	if err != nil {
		h.log.Error("source listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

type createSourceRequest struct {
	ATSType       string `json:"ats_type" binding:"required"`
	CompanySlug   string `json:"company_slug"`
	CompanyName   string `json:"company_name"`
	APIBase       string `json:"api_base" binding:"required"`
	DiscoveredVia string `json:"discovered_via"`
	Activate      bool   `json:"activate"`
}

func (h *handler) createSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := h.sources.Upsert(c.Request.Context(), sourcedomain.UpsertRequest{
		ATSType:       req.ATSType,
		CompanySlug:   req.CompanySlug,
		CompanyName:   req.CompanyName,
		APIBase:       req.APIBase,
		DiscoveredVia: req.DiscoveredVia,
		Activate:      req.Activate,
	})
	if err != nil {
		if errors.Is(err, sourcedomain.ErrInvalidATSType) ||
			errors.Is(err, sourcedomain.ErrInvalidSlug) ||
			errors.Is(err, sourcedomain.ErrInvalidAPIBase) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("source upsert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, src)
}

func (h *handler) verifySources(c *gin.Context) {
	res, err := h.sources.VerifyInactive(c.Request.Context())
	if err != nil {
		h.log.Error("source verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified": res.Verified,
		"failed":   res.Failed,
	})
}

func (h *handler) triggerRun(c *gin.Context) {
	res, err := h.ingest.Run(c.Request.Context())
	if err != nil {
		h.log.Error("manual run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
