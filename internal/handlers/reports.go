package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
)

type ReportsHandler struct {
	log  *zap.Logger
	repo *repository.Repository
}

func NewReportsHandler(log *zap.Logger, repo *repository.Repository) *ReportsHandler {
	return &ReportsHandler{log: log, repo: repo}
}

var reportTestTypes = []struct {
	id    string
	label string
}{
	{models.TestTypeWordRecall, "Word Recall"},
	{models.TestTypeStroop, "Stroop"},
	{models.TestTypePatternRecognition, "Pattern Recognition"},
}

// Generate renders the full assessment report as a self-contained HTML page:
// score trends per test type plus the risk history. Clients print it or
// save it as needed.
func (h *ReportsHandler) Generate(c *gin.Context) {
	userID := currentUserID(c)

	page := components.NewPage()
	page.SetPageTitle("Cognitive Health Report")

	scoreChart, err := h.scoreChart(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}
	page.AddCharts(scoreChart)

	riskData, err := h.repo.RiskTimeline(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}
	if len(riskData) > 0 {
		page.AddCharts(riskChart(riskData))
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.log.Error("Failed to render report", zap.Uint("userID", userID), zap.Error(err))
	}
}

// Summary returns the report's underlying numbers as JSON for clients that
// render their own views.
func (h *ReportsHandler) Summary(c *gin.Context) {
	userID := currentUserID(c)

	user, err := h.repo.GetUserByID(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}
	stats, err := h.repo.DashboardStats(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}
	riskData, err := h.repo.RiskTimeline(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}

	payload := gin.H{
		"generated_at": time.Now().UTC(),
		"user": gin.H{
			"name":               user.FirstName + " " + user.LastName,
			"age":                user.Age,
			"family_history":     user.FamilyHistory,
			"medical_conditions": user.MedicalConditions,
		},
		"stats":         stats,
		"risk_timeline": riskData,
	}
	if latest, err := h.repo.LatestRisk(c, userID); err == nil {
		payload["latest_risk"] = latest
	}
	response.Success(c, http.StatusOK, payload)
}

func (h *ReportsHandler) scoreChart(c *gin.Context, userID uint) (*charts.Line, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Test Scores Over Time",
			Subtitle: "Normalized 0-10 scale",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	for _, tt := range reportTestTypes {
		data, err := h.repo.ScoreTimeline(c, userID, tt.id)
		if err != nil {
			return nil, err
		}
		items := make([]opts.LineData, 0, len(data))
		for _, point := range data {
			items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
		}
		line.AddSeries(tt.label, items).
			SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	}
	return line, nil
}

func riskChart(data []repository.TimelineDataPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Risk Score Over Time",
			Subtitle: "0-100 heuristic, not a diagnosis",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}
	line.AddSeries("Risk", items).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
