package visits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/singularity-sky/singularity/internal/domain"
	"github.com/singularity-sky/singularity/internal/gamification"
	"github.com/singularity-sky/singularity/internal/infra/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := db.CreateUser(ctx, domain.User{ID: "u1", Email: "u1@example.com", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	for _, b := range []domain.Badge{
		{ID: "b1", Name: "First Light", PointsRequired: 0},
		{ID: "b2", Name: "Stargazer", PointsRequired: 100},
		{ID: "b3", Name: "Astronomer", PointsRequired: 500},
	} {
		if err := db.UpsertBadge(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.UpsertDarkSite(ctx, domain.DarkSite{
		ID:       "ds1",
		Name:     "Kolleru Viewpoint",
		Location: domain.Coordinate{Lat: 16.3458, Lon: 80.6789},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEvent(ctx, domain.Event{
		ID:       "ev1",
		Title:    "Geminids Meteor Shower",
		Start:    time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 12, 14, 23, 59, 59, 0, time.UTC),
		Type:     domain.EventMeteorShower,
		Location: domain.Coordinate{Lat: 16.3067, Lon: 80.4365},
	}); err != nil {
		t.Fatal(err)
	}

	return NewService(db, db, db, gamification.NewLedger(db)), db
}

func TestSubmit_DarkSiteVisit(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, Report{UserID: "u1", DarkSiteID: "ds1"})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if res.Visit.ID == "" {
		t.Error("visit should get a generated id")
	}
	if res.Visit.DarkSiteID != "ds1" {
		t.Errorf("DarkSiteID = %q, want ds1", res.Visit.DarkSiteID)
	}
	if res.PointsAwarded < 10 || res.PointsAwarded > 20 {
		t.Errorf("PointsAwarded = %d, want within [10,20]", res.PointsAwarded)
	}

	// First visit always crosses the zero-threshold badge.
	if len(res.NewlyEarned) == 0 || res.NewlyEarned[0].Name != "First Light" {
		t.Errorf("NewlyEarned = %v, want First Light", res.NewlyEarned)
	}

	u, err := db.GetUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Score != res.PointsAwarded {
		t.Errorf("user score = %d, want %d", u.Score, res.PointsAwarded)
	}

	visits, err := db.ListUserVisits(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(visits) != 1 {
		t.Errorf("got %d persisted visits, want 1", len(visits))
	}
}

func TestSubmit_EventVisit_ResolvesEventLocation(t *testing.T) {
	svc, _ := newTestService(t)

	var gotLat, gotLon float64
	svc.estimate = func(lat, lon float64, at time.Time) domain.VisibilityScore {
		gotLat, gotLon = lat, lon
		return domain.VisibilityScore{Score: 50, UpdatedAt: at}
	}

	res, err := svc.Submit(context.Background(), Report{UserID: "u1", EventID: "ev1"})
	if err != nil {
		t.Fatal(err)
	}
	if gotLat != 16.3067 || gotLon != 80.4365 {
		t.Errorf("estimated at (%v, %v), want event location", gotLat, gotLon)
	}
	if res.PointsAwarded != 15 { // 10 + round(50/10)
		t.Errorf("PointsAwarded = %d, want 15", res.PointsAwarded)
	}
}

func TestSubmit_ExplicitCoordinatesWin(t *testing.T) {
	svc, _ := newTestService(t)

	var gotLat, gotLon float64
	svc.estimate = func(lat, lon float64, at time.Time) domain.VisibilityScore {
		gotLat, gotLon = lat, lon
		return domain.VisibilityScore{Score: 0}
	}

	lat, lon := 51.5074, -0.1278
	_, err := svc.Submit(context.Background(), Report{UserID: "u1", DarkSiteID: "ds1", Lat: &lat, Lon: &lon})
	if err != nil {
		t.Fatal(err)
	}
	if gotLat != lat || gotLon != lon {
		t.Errorf("estimated at (%v, %v), want explicit coordinates", gotLat, gotLon)
	}
}

func TestSubmit_DegradedVisibilityStillRecords(t *testing.T) {
	svc, db := newTestService(t)
	svc.estimate = func(lat, lon float64, at time.Time) domain.VisibilityScore {
		// Fail-safe estimator output: worst case, never an error.
		return domain.VisibilityScore{Score: 0}
	}

	res, err := svc.Submit(context.Background(), Report{UserID: "u1", DarkSiteID: "ds1"})
	if err != nil {
		t.Fatalf("degraded visibility must not fail the report: %v", err)
	}
	if res.PointsAwarded != 10 {
		t.Errorf("PointsAwarded = %d, want base 10", res.PointsAwarded)
	}

	visits, _ := db.ListUserVisits(context.Background(), "u1")
	if len(visits) != 1 || visits[0].VisibilityScore != 0 {
		t.Errorf("visit should be recorded with score 0, got %+v", visits)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, Report{DarkSiteID: "ds1"}); err == nil {
		t.Error("missing user id should fail")
	}
	if _, err := svc.Submit(ctx, Report{UserID: "u1"}); !errors.Is(err, domain.ErrVisitTargetMissing) {
		t.Errorf("error = %v, want ErrVisitTargetMissing", err)
	}
}

func TestSubmit_UnknownTarget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, Report{UserID: "u1", DarkSiteID: "nope"}); !errors.Is(err, domain.ErrDarkSiteNotFound) {
		t.Errorf("error = %v, want ErrDarkSiteNotFound", err)
	}
	if _, err := svc.Submit(ctx, Report{UserID: "u1", EventID: "nope"}); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("error = %v, want ErrEventNotFound", err)
	}
}

func TestSubmit_UnknownUserFailsVisibly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), Report{UserID: "ghost", DarkSiteID: "ds1"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound (award failure must surface)", err)
	}
}

func TestSubmit_RepeatVisitsAccumulate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	svc.estimate = func(lat, lon float64, at time.Time) domain.VisibilityScore {
		return domain.VisibilityScore{Score: 100}
	}

	var earnedTotal []string
	for i := 0; i < 6; i++ {
		res, err := svc.Submit(ctx, Report{UserID: "u1", DarkSiteID: "ds1"})
		if err != nil {
			t.Fatal(err)
		}
		for _, b := range res.NewlyEarned {
			earnedTotal = append(earnedTotal, b.Name)
		}
	}

	// 6 visits × 20 points = 120: First Light then Stargazer, each exactly once.
	u, _ := db.GetUser(ctx, "u1")
	if u.Score != 120 {
		t.Errorf("score = %d, want 120", u.Score)
	}
	counts := make(map[string]int)
	for _, name := range earnedTotal {
		counts[name]++
	}
	if counts["First Light"] != 1 || counts["Stargazer"] != 1 || counts["Astronomer"] != 0 {
		t.Errorf("badge grants across visits = %v", counts)
	}
}
