package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/report"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoPress                 = "demo"
	DemoInstitutionIdentifier = "1"
	demoInstitutionName       = "Demo University Library"
	demoMonths                = 3
)

var demoTitles = []catalogdomain.Title{
	{
		ID: "demo0000a", Press: DemoPress, Title: "A History of the Book", Publisher: "Demo University Press",
		ISBNs:           datatypes.NewJSONSlice([]string{"9780000000011 (hardcover)", "9780000000028 (ebook)"}),
		Identifiers:     datatypes.NewJSONSlice([]string{"heb90001.0001.001"}),
		CopyrightHolder: "Regents of the Demo University",
	},
	{
		ID: "demo0000b", Press: DemoPress, Title: "Maps and Margins", Publisher: "Demo University Press",
		ISBNs:           datatypes.NewJSONSlice([]string{"9780000000035 (paper)"}),
		CopyrightHolder: "Regents of the Demo University",
	},
	{
		ID: "demo0000c", Press: DemoPress, Title: "Letters Home", Publisher: "Demo Imprint",
		ISBNs: datatypes.NewJSONSlice([]string{"9780000000042 (ebook)"}),
	},
}

// EnsureDemoData seeds one institution, a small catalog and the last three
// months of usage before now. It does nothing once any event exists and
// returns the number of events written.
func EnsureDemoData(ctx context.Context, db *gorm.DB, node *snowflake.Node, now time.Time) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if node == nil {
		return 0, errors.New("seed id generator is required")
	}

	written := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&counterdomain.UsageEvent{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		if err := ensureInstitutionTx(tx, node); err != nil {
			return err
		}
		for i := range demoTitles {
			title := demoTitles[i]
			if err := tx.Where("id = ?", title.ID).FirstOrCreate(&title).Error; err != nil {
				return fmt.Errorf("seed title %s: %w", title.ID, err)
			}
		}

		events := demoEvents(node, now)
		if err := tx.CreateInBatches(events, 100).Error; err != nil {
			return fmt.Errorf("seed events: %w", err)
		}
		written = len(events)
		return nil
	})
	return written, err
}

func ensureInstitutionTx(tx *gorm.DB, node *snowflake.Node) error {
	var inst counterdomain.Institution
	err := tx.Where("identifier = ?", DemoInstitutionIdentifier).First(&inst).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	inst = counterdomain.Institution{
		ID:         node.Generate(),
		Identifier: DemoInstitutionIdentifier,
		Name:       demoInstitutionName,
	}
	return tx.Create(&inst).Error
}

// demoEvents gives title j (j+1)*(m+1) item requests in month m, two per
// session, each preceded by an investigation.
func demoEvents(node *snowflake.Node, now time.Time) []*counterdomain.UsageEvent {
	first := report.MonthStart(now).AddDate(0, -demoMonths, 0)
	var events []*counterdomain.UsageEvent
	for m := 0; m < demoMonths; m++ {
		month := first.AddDate(0, m, 0)
		for j, title := range demoTitles {
			requests := (j + 1) * (m + 1)
			for k := 0; k < requests; k++ {
				at := month.Add(time.Duration(k+1) * time.Hour)
				session := fmt.Sprintf("%s|%d|%d", title.ID, m, k/2)
				events = append(events,
					demoEvent(node, title, session, at, false),
					demoEvent(node, title, session, at.Add(time.Minute), true),
				)
			}
		}
	}
	return events
}

func demoEvent(node *snowflake.Node, title catalogdomain.Title, session string, at time.Time, request bool) *counterdomain.UsageEvent {
	return &counterdomain.UsageEvent{
		ID:              node.Generate(),
		InstitutionID:   DemoInstitutionIdentifier,
		Noid:            title.ID + "-file",
		ParentNoid:      title.ID,
		Press:           DemoPress,
		Session:         session,
		AccessType:      counterdomain.AccessTypeControlled,
		AccessMethod:    counterdomain.AccessMethodRegular,
		Request:         request,
		Investigation:   true,
		IsUniqueSession: true,
		CreatedAt:       at,
	}
}
