package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	catalogcache "github.com/smallbiznis/counterreport/internal/catalog/cache"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	"github.com/smallbiznis/counterreport/internal/clock"
	"github.com/smallbiznis/counterreport/internal/config"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/observability/logger"
	"github.com/smallbiznis/counterreport/internal/observability/metrics"
	"github.com/smallbiznis/counterreport/internal/report"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Config       config.Config
	Events       counterdomain.EventStore
	Institutions counterdomain.InstitutionDirectory
	Catalog      catalogdomain.Catalog
	Clock        clock.Clock
	Metrics      *metrics.ReportMetrics `optional:"true"`
}

type Service struct {
	log *zap.Logger

	events       counterdomain.EventStore
	institutions counterdomain.InstitutionDirectory
	catalog      catalogdomain.Catalog
	clock        clock.Clock
	metrics      *metrics.ReportMetrics
	tracer       trace.Tracer

	platform  string
	publicURL string
}

func NewService(p Params) *Service {
	platform := strings.TrimSpace(p.Config.Reporting.PlatformName)
	if platform == "" {
		platform = "Fulcrum"
	}
	return &Service{
		log:          p.Log.Named("counter.service"),
		events:       p.Events,
		institutions: p.Institutions,
		catalog:      p.Catalog,
		clock:        p.Clock,
		metrics:      p.Metrics,
		tracer:       otel.Tracer("counterreport/counter"),
		platform:     platform,
		publicURL:    strings.TrimRight(p.Config.Reporting.PublicURL, "/"),
	}
}

func (s *Service) Assemble(ctx context.Context, req counterdomain.ReportRequest) (*report.Report, error) {
	reportID := strings.ToUpper(strings.TrimSpace(req.ReportID))
	ctx = logger.ContextWithReportID(ctx, reportID)
	ctx, span := s.tracer.Start(ctx, "counter.assemble", trace.WithAttributes(
		attribute.String("counter.report_id", reportID),
		attribute.String("counter.institution", req.Institution),
		attribute.String("counter.press", req.Press),
	))
	defer span.End()

	started := time.Now()
	rep, err := s.assemble(ctx, reportID, req)

	rows := 0
	if rep != nil {
		rows = len(rep.Rows)
	}
	s.metrics.ObserveReportBuild(reportID, time.Since(started), rows, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("counter.rows", rows))
	return rep, nil
}

func (s *Service) assemble(ctx context.Context, reportID string, req counterdomain.ReportRequest) (*report.Report, error) {
	def, ok := definitions[reportID]
	if !ok {
		return nil, fmt.Errorf("%q: %w", req.ReportID, counterdomain.ErrUnknownReport)
	}

	period, err := s.ResolvePeriod(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	header := report.CounterHeader(report.CounterHeaderParams{
		ReportName:      def.name,
		ReportID:        def.id,
		InstitutionName: s.institutionName(ctx, req.Institution),
		InstitutionID:   req.Institution,
		MetricTypes:     def.metricTypes,
		ReportFilters:   def.filters,
		Start:           period.Start,
		End:             period.End,
		Created:         s.clock.Now(),
		CreatedBy:       s.platform,
	})

	base := counterdomain.Query{
		Institution:  req.Institution,
		Press:        req.Press,
		AccessType:   counterdomain.AccessTypeControlled,
		RequestsOnly: true,
		Since:        period.Since(),
		Until:        period.Until(),
	}

	var rows []*report.Row
	switch def.id {
	case report.ReportIDPlatform:
		rows, err = s.platformRows(ctx, def, base, period)
	case report.ReportIDTitle:
		rows, err = s.titleRows(ctx, def, base, period)
	}
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("report assembled",
		zap.String("reporting_period", period.Label()),
		zap.Int("rows", len(rows)),
	)
	return &report.Report{Header: header, Rows: rows}, nil
}

// ResolvePeriod applies the date defaults: a missing end is today and a
// missing start is the first event ever recorded, across all institutions.
func (s *Service) ResolvePeriod(ctx context.Context, start, end time.Time) (report.Period, error) {
	if !start.IsZero() && !end.IsZero() && !report.NewPeriod(start, end).Valid() {
		return report.Period{}, counterdomain.ErrInvalidDateRange
	}
	if end.IsZero() {
		end = s.clock.Now()
	}
	if start.IsZero() {
		first, ok, err := s.events.FirstEventAt(ctx)
		if err != nil {
			return report.Period{}, fmt.Errorf("first event: %w", err)
		}
		start = end
		if ok {
			start = first
		}
	}

	period := report.NewPeriod(start, end)
	if !period.Valid() {
		return report.Period{}, counterdomain.ErrInvalidDateRange
	}
	return period, nil
}

func (s *Service) institutionName(ctx context.Context, identifier string) string {
	if strings.TrimSpace(identifier) == "" {
		return ""
	}
	name, err := s.institutions.NameByIdentifier(ctx, identifier)
	if err != nil {
		log := logger.WithContext(ctx, s.log).With(zap.String("institution", identifier), zap.Error(err))
		if errors.Is(err, counterdomain.ErrUnknownInstitution) {
			log.Warn("institution not found, leaving name blank")
		} else {
			log.Error("institution lookup failed, leaving name blank")
		}
		return ""
	}
	return name
}

func (s *Service) platformRows(ctx context.Context, def definition, base counterdomain.Query, period report.Period) ([]*report.Row, error) {
	rows := make([]*report.Row, 0, len(def.metrics))
	for _, m := range def.metrics {
		row := report.NewRow(
			report.Column{Name: "Platform", Value: s.platform},
			report.Column{Name: "Metric_Type", Value: m.name},
		)
		q := base
		q.Unique = m.unique
		if err := s.fillCounts(ctx, row, m.name, q, period); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) titleRows(ctx context.Context, def definition, base counterdomain.Query, period report.Period) ([]*report.Row, error) {
	ids, err := s.events.DistinctTitleIDs(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("distinct titles: %w", err)
	}

	titles := catalogcache.NewMemo(s.catalog)
	rows := make([]*report.Row, 0, len(ids)*len(def.metrics))
	for _, id := range ids {
		title, err := titles.Resolve(ctx, id)
		if err != nil {
			logger.WithContext(ctx, s.log).Warn("title resolution failed, emitting blank metadata",
				zap.String("title_id", id),
				zap.Error(err),
			)
			title = catalogdomain.Title{ID: id}
		}

		for _, m := range def.metrics {
			row := s.titleColumns(id, title)
			row.Set("Metric_Type", m.name)
			q := base
			q.TitleID = id
			q.Unique = m.unique
			if err := s.fillCounts(ctx, row, m.name, q, period); err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Service) titleColumns(id string, title catalogdomain.Title) *report.Row {
	return report.NewRow(
		report.Column{Name: "Title", Value: title.Title},
		report.Column{Name: "Publisher", Value: title.Publisher},
		report.Column{Name: "Publisher_ID", Value: ""},
		report.Column{Name: "Platform", Value: s.platform},
		report.Column{Name: "DOI", Value: title.CitableLink},
		report.Column{Name: "Proprietary_ID", Value: id},
		report.Column{Name: "ISBN", Value: strings.Join(title.ISBNs, ";")},
		report.Column{Name: "Print_ISSN", Value: ""},
		report.Column{Name: "Online_ISSN", Value: ""},
		report.Column{Name: "URI", Value: s.MonographURL(id)},
	)
}

// MonographURL is the public landing page of a title.
func (s *Service) MonographURL(id string) string {
	return s.publicURL + "/concern/monographs/" + id
}

func (s *Service) fillCounts(ctx context.Context, row *report.Row, metricType string, q counterdomain.Query, period report.Period) error {
	total, perMonth, err := s.CountByMonth(ctx, metricType, q, period.Months())
	if err != nil {
		return err
	}
	row.SetInt("Reporting_Period_Total", total)
	for i, m := range period.Months() {
		row.SetInt(report.MonthKey(m), perMonth[i])
	}
	return nil
}

// CountByMonth returns the count over q and the count within each calendar
// month, each month clipped to q's bounds.
func (s *Service) CountByMonth(ctx context.Context, metricType string, q counterdomain.Query, months []time.Time) (int64, []int64, error) {
	total, err := s.count(ctx, metricType, q)
	if err != nil {
		return 0, nil, err
	}
	perMonth := make([]int64, len(months))
	for i, m := range months {
		n, err := s.count(ctx, metricType, q.Within(m, report.NextMonth(m)))
		if err != nil {
			return 0, nil, err
		}
		perMonth[i] = n
	}
	return total, perMonth, nil
}

func (s *Service) count(ctx context.Context, metricType string, q counterdomain.Query) (int64, error) {
	s.metrics.IncAggregateQuery(metricType)
	n, err := s.events.Count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", metricType, err)
	}
	return n, nil
}
