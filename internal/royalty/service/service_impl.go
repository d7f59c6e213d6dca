package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	catalogcache "github.com/smallbiznis/counterreport/internal/catalog/cache"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	"github.com/smallbiznis/counterreport/internal/config"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	counterservice "github.com/smallbiznis/counterreport/internal/counter/service"
	"github.com/smallbiznis/counterreport/internal/observability/logger"
	"github.com/smallbiznis/counterreport/internal/observability/metrics"
	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

const (
	reportName       = "Royalty Usage Report"
	allRightsHolders = "All Rights Holders"
	usageReportID    = "royalty_usage"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Config    config.Config
	Events    counterdomain.EventStore
	Counter   *counterservice.Service
	Catalog   catalogdomain.Catalog
	Deliverer royaltydomain.Deliverer `optional:"true"`
	Metrics   *metrics.ReportMetrics  `optional:"true"`
}

type Service struct {
	log *zap.Logger

	events    counterdomain.EventStore
	counter   *counterservice.Service
	catalog   catalogdomain.Catalog
	deliverer royaltydomain.Deliverer
	metrics   *metrics.ReportMetrics
	tracer    trace.Tracer

	collection string
}

func NewService(p Params) royaltydomain.Service {
	collection := strings.TrimSpace(p.Config.Reporting.CollectionName)
	if collection == "" {
		collection = "Humanities Ebook"
	}
	return &Service{
		log:        p.Log.Named("royalty.service"),
		events:     p.Events,
		counter:    p.Counter,
		catalog:    p.Catalog,
		deliverer:  p.Deliverer,
		metrics:    p.Metrics,
		tracer:     otel.Tracer("counterreport/royalty"),
		collection: collection,
	}
}

func (s *Service) UsageReports(ctx context.Context, req royaltydomain.UsageRequest) (*royaltydomain.UsageReports, error) {
	press := strings.TrimSpace(req.Press)
	ctx = logger.ContextWithReportID(ctx, usageReportID)
	ctx, span := s.tracer.Start(ctx, "royalty.usage_reports", trace.WithAttributes(
		attribute.String("royalty.press", press),
	))
	defer span.End()

	started := time.Now()
	out, err := s.build(ctx, press, req)

	rows := 0
	if out != nil {
		rows = len(out.Reports)
	}
	s.metrics.ObserveReportBuild(usageReportID, time.Since(started), rows, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

func (s *Service) DeliverUsageReports(ctx context.Context, req royaltydomain.UsageRequest) (*royaltydomain.UsageReports, error) {
	if s.deliverer == nil {
		return nil, royaltydomain.ErrDeliveryUnavailable
	}
	out, err := s.UsageReports(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.deliverer.Deliver(ctx, out.Reports, out.Period); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Service) build(ctx context.Context, press string, req royaltydomain.UsageRequest) (*royaltydomain.UsageReports, error) {
	if press == "" {
		return nil, royaltydomain.ErrInvalidPress
	}
	period, err := s.counter.ResolvePeriod(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	titles, err := s.catalog.ListByPress(ctx, press)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	lookup := royaltydomain.NewLookup(titles)
	byID := make(map[string]catalogdomain.Title, len(titles))
	for _, t := range titles {
		byID[t.ID] = t
	}

	items, err := s.itemRows(ctx, press, period, byID, lookup)
	if err != nil {
		return nil, err
	}

	items = ReclassifyISBNs(items)
	items = AddExternalIDs(items, lookup)
	payees, groups := GroupByPayee(items, lookup)
	total := TotalHits(items)

	printer := NewPrinter()
	stamp := period.FileStamp()
	reports := make(map[string]*report.Report, len(payees)+1)
	for _, payee := range payees {
		rows := groups[payee]
		name := fmt.Sprintf("%s.usage.%s.csv", slug.Make(payee), stamp)
		reports[name] = &report.Report{
			Header: s.header(printer, period, payee, total, TotalHits(rows)),
			Rows:   FormatHits(rows, printer),
		}
	}

	combined := FormatHits(AddCopyrightHolders(items, lookup), printer)
	reports[fmt.Sprintf("usage_combined.%s.csv", stamp)] = &report.Report{
		Header: s.header(printer, period, allRightsHolders, total, total),
		Rows:   combined,
	}

	logger.WithContext(ctx, s.log).Info("royalty usage reports built",
		zap.String("press", press),
		zap.String("reporting_period", period.Label()),
		zap.Int("titles", len(items)),
		zap.Int("payees", len(payees)),
		zap.Int64("total_hits", total),
	)
	return &royaltydomain.UsageReports{
		Period:    period,
		Reports:   reports,
		Payees:    payees,
		TotalHits: total,
	}, nil
}

// itemRows builds one row per used title with total item requests across
// every institution.
func (s *Service) itemRows(ctx context.Context, press string, period report.Period, byID map[string]catalogdomain.Title, lookup *royaltydomain.Lookup) ([]*report.Row, error) {
	base := counterdomain.Query{
		Press:        press,
		AccessType:   counterdomain.AccessTypeControlled,
		RequestsOnly: true,
		Since:        period.Since(),
		Until:        period.Until(),
	}
	ids, err := s.events.DistinctTitleIDs(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("distinct titles: %w", err)
	}

	fallback := catalogcache.NewMemo(s.catalog)
	months := period.Months()
	rows := make([]*report.Row, 0, len(ids))
	for _, id := range ids {
		title, ok := byID[id]
		if !ok {
			resolved, err := fallback.Resolve(ctx, id)
			if err != nil {
				logger.WithContext(ctx, s.log).Warn("royalty title resolution failed, emitting blank metadata",
					zap.String("title_id", id),
					zap.Error(err),
				)
				resolved = catalogdomain.Title{ID: id}
			} else {
				lookup.Add(resolved)
			}
			title = resolved
		}

		q := base
		q.TitleID = id
		total, perMonth, err := s.counter.CountByMonth(ctx, report.MetricTotalItemRequests, q, months)
		if err != nil {
			return nil, err
		}

		isbns := strings.Join(title.ISBNs, ", ")
		row := report.NewRow(
			report.Column{Name: royaltydomain.ColumnTitle, Value: title.Title},
			report.Column{Name: royaltydomain.ColumnPublisher, Value: title.Publisher},
			report.Column{Name: royaltydomain.ColumnTitleID, Value: id},
			report.Column{Name: royaltydomain.ColumnISBN, Value: isbns},
			report.Column{Name: royaltydomain.ColumnParentISBN, Value: isbns},
			report.Column{Name: royaltydomain.ColumnParentPrintISSN, Value: ""},
			report.Column{Name: royaltydomain.ColumnParentOnlineISSN, Value: ""},
		)
		row.SetInt(royaltydomain.ColumnHits, total)
		for i, m := range months {
			row.SetInt(report.MonthKey(m), perMonth[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) header(printer *message.Printer, period report.Period, holder string, all, own int64) report.Header {
	return report.Header{
		{Key: "Collection Name", Value: s.collection},
		{Key: "Report Name", Value: reportName},
		{Key: "Rightsholder Name", Value: holder},
		{Key: "Reporting Period", Value: period.Label()},
		{Key: "Total Hits (All Rights Holders)", Value: printer.Sprintf("%d", all)},
		{Key: "Total Hits (Rights Holder)", Value: printer.Sprintf("%d", own)},
	}
}
