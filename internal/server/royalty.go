package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
)

type royaltyUsageRequest struct {
	Press     string `json:"press"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Deliver   bool   `json:"deliver"`
}

type royaltyUsageResponse struct {
	Press           string   `json:"press"`
	ReportingPeriod string   `json:"reporting_period"`
	Reports         []string `json:"reports"`
	Payees          []string `json:"payees"`
	TotalHits       int64    `json:"total_hits"`
	Delivered       bool     `json:"delivered"`
}

// CreateRoyaltyUsage builds a press's royalty reports and optionally pushes
// them to the delivery destination.
func (s *Server) CreateRoyaltyUsage(c *gin.Context) {
	var req royaltyUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	press := strings.TrimSpace(req.Press)
	if press == "" {
		AbortWithError(c, newValidationError("press", "required", "press is required"))
		return
	}
	start, err := report.ParseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_date", "dates must be YYYY-MM-DD"))
		return
	}
	end, err := report.ParseEndDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_date", "dates must be YYYY-MM-DD"))
		return
	}

	ctx, cancel := s.reportContext(c)
	defer cancel()

	usageReq := royaltydomain.UsageRequest{Press: press, StartDate: start, EndDate: end}
	var out *royaltydomain.UsageReports
	if req.Deliver {
		out, err = s.royaltySvc.DeliverUsageReports(ctx, usageReq)
	} else {
		out, err = s.royaltySvc.UsageReports(ctx, usageReq)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if out == nil {
		AbortWithError(c, errors.New("royalty service returned no reports"))
		return
	}

	names := make([]string, 0, len(out.Reports))
	for name := range out.Reports {
		names = append(names, name)
	}
	sort.Strings(names)

	c.JSON(http.StatusOK, royaltyUsageResponse{
		Press:           press,
		ReportingPeriod: out.Period.Label(),
		Reports:         names,
		Payees:          out.Payees,
		TotalHits:       out.TotalHits,
		Delivered:       req.Deliver,
	})
}
