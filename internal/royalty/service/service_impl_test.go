package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/counterreport/internal/catalog/repository"
	"github.com/smallbiznis/counterreport/internal/clock"
	"github.com/smallbiznis/counterreport/internal/config"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	counterrepository "github.com/smallbiznis/counterreport/internal/counter/repository"
	counterservice "github.com/smallbiznis/counterreport/internal/counter/service"
	"github.com/smallbiznis/counterreport/internal/migration"
	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"github.com/smallbiznis/counterreport/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type fakeDeliverer struct {
	mock.Mock
}

func (f *fakeDeliverer) Deliver(ctx context.Context, reports map[string]*report.Report, period report.Period) error {
	return f.Called(ctx, reports, period).Error(0)
}

// flakyCatalog fails Resolve for one title id.
type flakyCatalog struct {
	catalogdomain.Catalog
	failID string
	err    error
}

func (c flakyCatalog) Resolve(ctx context.Context, id string) (catalogdomain.Title, error) {
	if id == c.failID {
		return catalogdomain.Title{}, c.err
	}
	return c.Catalog.Resolve(ctx, id)
}

type royaltyFixture struct {
	svc       royaltydomain.Service
	deliverer *fakeDeliverer
	hit       func(title, institution, session string, at time.Time, access string)
}

func setupRoyalty(t *testing.T, wrap ...func(catalogdomain.Catalog) catalogdomain.Catalog) royaltyFixture {
	t.Helper()
	conn := db.NewTest(t)
	require.NoError(t, migration.AutoMigrate(conn))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	titles := []catalogdomain.Title{
		{
			ID: "t1", Press: "heb", Title: "First", Publisher: "Press A", CopyrightHolder: "Regents of the University",
			ISBNs:       datatypes.NewJSONSlice([]string{"9780000000001 (hardcover)", "9780000000002 (ebook)"}),
			Identifiers: datatypes.NewJSONSlice([]string{"heb00001.0001.001"}),
		},
		{ID: "t2", Press: "heb", Title: "Second", Publisher: "Press B"},
		{
			ID: "t3", Press: "heb", Title: "Third", Publisher: "Press A", CopyrightHolder: "Regents of the University",
			ISBNs: datatypes.NewJSONSlice([]string{"9780000000003 (paper)"}),
		},
	}
	require.NoError(t, conn.Create(&titles).Error)

	events := counterrepository.NewEventStore(conn)
	hit := func(title, institution, session string, at time.Time, access string) {
		require.NoError(t, events.Append(context.Background(), &counterdomain.UsageEvent{
			ID: node.Generate(), InstitutionID: institution, Noid: title + "-f", ParentNoid: title,
			Press: "heb", Session: session, AccessType: access, AccessMethod: counterdomain.AccessMethodRegular,
			Request: true, CreatedAt: at,
		}))
	}
	jan := time.Date(2019, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2019, time.February, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1200; i++ {
		hit("t1", "1", "s", jan, counterdomain.AccessTypeControlled)
	}
	hit("t2", "2", "s", jan, counterdomain.AccessTypeControlled)
	hit("t3", "1", "s", feb, counterdomain.AccessTypeControlled)
	hit("t3", "3", "s", feb, counterdomain.AccessTypeControlled)
	hit("t3", "3", "s", feb, counterdomain.AccessTypeOAGold)

	cfg := config.Config{Reporting: config.ReportingConfig{PlatformName: "Fulcrum", CollectionName: "Humanities Ebook"}}
	catalog := catalogrepository.New(conn)
	counter := counterservice.NewService(counterservice.Params{
		Log:          zap.NewNop(),
		Config:       cfg,
		Events:       events,
		Institutions: counterrepository.NewInstitutionDirectory(conn),
		Catalog:      catalog,
		Clock:        clock.NewFakeClock(time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)),
	})

	var royaltyCatalog catalogdomain.Catalog = catalog
	for _, w := range wrap {
		royaltyCatalog = w(royaltyCatalog)
	}

	deliverer := &fakeDeliverer{}
	svc := NewService(Params{
		Log:       zap.NewNop(),
		Config:    cfg,
		Events:    events,
		Counter:   counter,
		Catalog:   royaltyCatalog,
		Deliverer: deliverer,
	})
	return royaltyFixture{svc: svc, deliverer: deliverer, hit: hit}
}

func usageRequest() royaltydomain.UsageRequest {
	return royaltydomain.UsageRequest{
		Press:     "heb",
		StartDate: time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2019, time.February, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestUsageReports(t *testing.T) {
	f := setupRoyalty(t)

	out, err := f.svc.UsageReports(context.Background(), usageRequest())
	require.NoError(t, err)

	names := make([]string, 0, len(out.Reports))
	for name := range out.Reports {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"no-copyright-holder.usage.201901-201902.csv",
		"regents-of-the-university.usage.201901-201902.csv",
		"usage_combined.201901-201902.csv",
	}, names)
	assert.Equal(t, []string{"Regents of the University", catalogdomain.NoCopyrightHolder}, out.Payees)
	assert.Equal(t, int64(1203), out.TotalHits)

	regents := out.Reports["regents-of-the-university.usage.201901-201902.csv"]
	require.Len(t, regents.Rows, 2)
	first := regents.Rows[0]
	assert.Equal(t, []string{
		"Parent_Title", "Publisher", "Parent_Proprietary_ID", "hebid",
		"ebook ISBN", "hardcover ISBN", "paper ISBN", "Hits", "Jan-2019", "Feb-2019",
	}, first.Names())
	assert.Equal(t, "1,200", first.Value("Hits"))
	assert.Equal(t, "heb00001.0001.001", first.Value("hebid"))
	assert.Equal(t, "9780000000002", first.Value("ebook ISBN"))
	assert.Equal(t, "2", regents.Rows[1].Value("Hits"))

	own, _ := regents.Header.Get("Total Hits (Rights Holder)")
	assert.Equal(t, "1,202", own)
	all, _ := regents.Header.Get("Total Hits (All Rights Holders)")
	assert.Equal(t, "1,203", all)
	collection, _ := regents.Header.Get("Collection Name")
	assert.Equal(t, "Humanities Ebook", collection)

	combined := out.Reports["usage_combined.201901-201902.csv"]
	require.Len(t, combined.Rows, 3)
	assert.Equal(t, "Copyright Holder", combined.Rows[0].Names()[2])
	assert.Equal(t, catalogdomain.NoCopyrightHolder, combined.Rows[1].Value("Copyright Holder"))

	for name, rep := range out.Reports {
		_, err := report.Serialize(rep)
		assert.NoError(t, err, name)
	}
}

func TestUsageReportsSurvivesCatalogFailure(t *testing.T) {
	f := setupRoyalty(t, func(inner catalogdomain.Catalog) catalogdomain.Catalog {
		return flakyCatalog{Catalog: inner, failID: "tx", err: errors.New("solr timeout")}
	})
	f.hit("tx", "1", "s", time.Date(2019, time.January, 9, 0, 0, 0, 0, time.UTC), counterdomain.AccessTypeControlled)

	out, err := f.svc.UsageReports(context.Background(), usageRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1204), out.TotalHits)

	orphans := out.Reports["no-copyright-holder.usage.201901-201902.csv"]
	require.NotNil(t, orphans)
	var found bool
	for _, row := range orphans.Rows {
		if row.Value("Parent_Proprietary_ID") != "tx" {
			continue
		}
		found = true
		assert.Empty(t, row.Value("Parent_Title"))
		assert.Equal(t, "1", row.Value("Hits"))
	}
	assert.True(t, found)
	assert.Len(t, out.Reports["regents-of-the-university.usage.201901-201902.csv"].Rows, 2)
}

func TestUsageReportsRequiresPress(t *testing.T) {
	f := setupRoyalty(t)
	req := usageRequest()
	req.Press = " "

	_, err := f.svc.UsageReports(context.Background(), req)
	assert.True(t, errors.Is(err, royaltydomain.ErrInvalidPress))
}

func TestDeliverUsageReports(t *testing.T) {
	f := setupRoyalty(t)
	f.deliverer.On("Deliver", mock.Anything, mock.Anything, mock.MatchedBy(func(p report.Period) bool {
		return p.DirName() == "2019-01_to_2019-02"
	})).Return(nil).Once()

	out, err := f.svc.DeliverUsageReports(context.Background(), usageRequest())
	require.NoError(t, err)
	assert.Len(t, out.Reports, 3)
	f.deliverer.AssertExpectations(t)
}

func TestDeliverUsageReportsPropagatesFailure(t *testing.T) {
	f := setupRoyalty(t)
	boom := errors.New("connection refused")
	f.deliverer.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(boom).Once()

	out, err := f.svc.DeliverUsageReports(context.Background(), usageRequest())
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, out)
}
