package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	revenuedomain "github.com/pharmadesk/pharmadesk/internal/revenue/domain"
	"github.com/shopspring/decimal"
)

const dateOnlyLayout = "2006-01-02"

type financialSummaryResponse struct {
	Window             windowResponse        `json:"window"`
	Summary            revenuedomain.Summary `json:"summary"`
	PreviousNetRevenue decimal.Decimal       `json:"previous_net_revenue"`
	GrowthPercentage   string                `json:"growth_percentage"`
}

type windowResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FinancialSummary reports the revenue summary for the requested window
// with growth against the preceding window of equal length. Defaults to
// the running calendar month.
func (s *Server) FinancialSummary(c *gin.Context) {
	window, err := s.parseWindow(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.revenueSvc.SummarizeWithGrowth(c.Request.Context(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, financialSummaryResponse{
		Window:             windowResponse{Start: window.Start, End: window.End},
		Summary:            resp.Summary,
		PreviousNetRevenue: resp.PreviousNetRevenue,
		GrowthPercentage:   resp.GrowthPercentage.StringFixed(2),
	}, "")
}

func (s *Server) ListFinancialActivities(c *gin.Context) {
	window, err := s.parseWindow(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	activities, err := s.activities.List(c.Request.Context(), s.db, window.Start, window.End)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, gin.H{"activities": activities}, "")
}

func (s *Server) parseWindow(c *gin.Context) (revenuedomain.Window, error) {
	startValue := strings.TrimSpace(c.Query("start_date"))
	endValue := strings.TrimSpace(c.Query("end_date"))

	if startValue == "" && endValue == "" {
		now := s.clk.Now()
		return revenuedomain.Window{
			Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
			End:   now,
		}, nil
	}
	if startValue == "" || endValue == "" {
		return revenuedomain.Window{}, revenuedomain.ErrInvalidWindow
	}

	start, err := time.ParseInLocation(dateOnlyLayout, startValue, time.UTC)
	if err != nil {
		return revenuedomain.Window{}, revenuedomain.ErrInvalidWindow
	}
	end, err := time.ParseInLocation(dateOnlyLayout, endValue, time.UTC)
	if err != nil {
		return revenuedomain.Window{}, revenuedomain.ErrInvalidWindow
	}

	// end_date is inclusive.
	window := revenuedomain.Window{
		Start: start,
		End:   end.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
	if !window.Valid() {
		return revenuedomain.Window{}, revenuedomain.ErrInvalidWindow
	}
	return window, nil
}
