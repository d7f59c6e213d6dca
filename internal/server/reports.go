package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/report"
)

// GetCounterReport renders PR_P1 or TR_B1 as CSV.
func (s *Server) GetCounterReport(c *gin.Context) {
	reportID := strings.ToUpper(strings.TrimSpace(c.Param("report_id")))

	start, err := report.ParseDate(c.Query("start_date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	end, err := report.ParseEndDate(c.Query("end_date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx, cancel := s.reportContext(c)
	defer cancel()

	rep, err := s.assembler.Assemble(ctx, counterdomain.ReportRequest{
		ReportID:    reportID,
		StartDate:   start,
		EndDate:     end,
		Institution: strings.TrimSpace(c.Query("institution")),
		Press:       strings.TrimSpace(c.Query("press")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := report.Serialize(rep)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, strings.ToLower(reportID)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
