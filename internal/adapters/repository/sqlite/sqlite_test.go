package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/adapters/repository/sqlite"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(),
		filepath.Join(t.TempDir(), "portfolio.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleItem(id, userID string) *model.PortfolioItem {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.PortfolioItem{
		ID:           id,
		UserID:       userID,
		Title:        "Harden a Linux Server",
		Summary:      "Locked down SSH and firewall rules",
		Type:         model.TypeMission,
		Skills:       []string{"Linux", "Networking"},
		Competencies: map[string]float64{"Linux": 9.2},
		Evidence: []model.EvidenceFile{
			{URL: "https://files.example/report.pdf", Kind: "document", Name: "report.pdf"},
		},
		Status:     model.StatusDraft,
		Visibility: model.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestSQLiteItems(t *testing.T) {
	Convey("Given a SQLite store", t, func() {
		ctx := context.Background()
		store := openStore(t)

		Convey("When an item round-trips", func() {
			item := sampleItem("item-1", "user-1")
			now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
			item.Status = model.StatusApproved
			item.ApprovedAt = &now
			item.Import = model.GitHubImport{Repo: "acme/hardening", Language: "Shell"}

			So(store.CreateItem(ctx, item), ShouldBeNil)
			got, err := store.GetItem(ctx, "item-1")

			Convey("Then every column survives the trip", func() {
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, item.Title)
				So(got.Skills, ShouldResemble, item.Skills)
				So(got.Competencies, ShouldResemble, item.Competencies)
				So(got.Evidence, ShouldResemble, item.Evidence)
				So(got.Version, ShouldEqual, 1)
				So(got.CreatedAt.Equal(item.CreatedAt), ShouldBeTrue)
				So(got.ApprovedAt, ShouldNotBeNil)
				So(got.ApprovedAt.Equal(now), ShouldBeTrue)
				So(got.PublishedAt, ShouldBeNil)
				So(got.Import, ShouldResemble, item.Import)
			})
		})

		Convey("When a duplicate id is inserted", func() {
			So(store.CreateItem(ctx, sampleItem("item-1", "user-1")), ShouldBeNil)
			So(store.CreateItem(ctx, sampleItem("item-1", "user-1")),
				ShouldWrap, repository.ErrAlreadyExists)
		})

		Convey("When mission-linked items collide", func() {
			first := sampleItem("item-1", "user-1")
			first.MissionID = "mission-7"
			So(store.CreateItem(ctx, first), ShouldBeNil)

			Convey("Then the item is findable by mission", func() {
				got, err := store.GetItemByMission(ctx, "user-1", "mission-7")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "item-1")
			})

			Convey("Then a second item for the same mission is rejected", func() {
				dup := sampleItem("item-2", "user-1")
				dup.MissionID = "mission-7"
				So(store.CreateItem(ctx, dup), ShouldWrap, repository.ErrAlreadyExists)
			})

			Convey("Then non-mission items never collide on the empty key", func() {
				So(store.CreateItem(ctx, sampleItem("item-2", "user-1")), ShouldBeNil)
				So(store.CreateItem(ctx, sampleItem("item-3", "user-1")), ShouldBeNil)
			})
		})

		Convey("When updating with optimistic versioning", func() {
			item := sampleItem("item-1", "user-1")
			So(store.CreateItem(ctx, item), ShouldBeNil)

			item.Title = "Renamed"
			So(store.UpdateItem(ctx, item), ShouldBeNil)
			So(item.Version, ShouldEqual, 2)

			Convey("Then a stale version is rejected as a conflict", func() {
				stale := sampleItem("item-1", "user-1")
				stale.Version = 1
				So(store.UpdateItem(ctx, stale), ShouldWrap, model.ErrConflict)
			})

			Convey("Then a missing row reads as not found", func() {
				ghost := sampleItem("ghost", "user-1")
				ghost.Version = 1
				So(store.UpdateItem(ctx, ghost), ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When listing a user's items", func() {
			a := sampleItem("item-a", "user-1")
			b := sampleItem("item-b", "user-1")
			b.CreatedAt = a.CreatedAt.Add(time.Hour)
			other := sampleItem("item-c", "user-2")
			for _, item := range []*model.PortfolioItem{b, a, other} {
				So(store.CreateItem(ctx, item), ShouldBeNil)
			}

			items, err := store.ListItemsByUser(ctx, "user-1")

			Convey("Then items come back in creation order", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 2)
				So(items[0].ID, ShouldEqual, "item-a")
				So(items[1].ID, ShouldEqual, "item-b")
			})
		})

		Convey("When syncing visibility for a status", func() {
			now := time.Now().UTC().Truncate(time.Millisecond)
			approved := sampleItem("item-1", "user-1")
			approved.Status = model.StatusApproved
			approved.ApprovedAt = &now
			draft := sampleItem("item-2", "user-1")
			So(store.CreateItem(ctx, approved), ShouldBeNil)
			So(store.CreateItem(ctx, draft), ShouldBeNil)

			n, err := store.SetVisibilityForStatus(ctx, "user-1",
				model.StatusApproved, model.VisibilityPublic)

			Convey("Then only matching rows are touched", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)

				got, _ := store.GetItem(ctx, "item-1")
				So(got.Visibility, ShouldEqual, model.VisibilityPublic)
				So(got.Version, ShouldEqual, 2)

				still, _ := store.GetItem(ctx, "item-2")
				So(still.Visibility, ShouldEqual, model.VisibilityPrivate)
			})
		})
	})
}

func TestSQLiteReviews(t *testing.T) {
	Convey("Given a SQLite store with an item", t, func() {
		ctx := context.Background()
		store := openStore(t)
		So(store.CreateItem(ctx, sampleItem("item-1", "user-1")), ShouldBeNil)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		review := &model.PortfolioReview{
			ID:         "review-1",
			ItemID:     "item-1",
			ReviewerID: "mentor-1",
			Status:     model.ReviewPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		Convey("When a review round-trips", func() {
			So(store.CreateReview(ctx, review), ShouldBeNil)

			got, err := store.GetReview(ctx, "review-1")
			So(err, ShouldBeNil)
			So(got.ReviewerID, ShouldEqual, "mentor-1")
			So(got.Status, ShouldEqual, model.ReviewPending)

			Convey("And it is updated with a decision", func() {
				got.CriterionScores = map[string]float64{"tech": 8, "docs": 7}
				got.Total = 7.625
				got.Status = model.ReviewApproved
				So(store.UpdateReview(ctx, got), ShouldBeNil)

				again, err := store.GetReview(ctx, "review-1")
				So(err, ShouldBeNil)
				So(again.Total, ShouldEqual, 7.625)
				So(again.CriterionScores, ShouldResemble, got.CriterionScores)
				So(again.Status, ShouldEqual, model.ReviewApproved)
			})
		})

		Convey("When listing reviews", func() {
			second := *review
			second.ID = "review-2"
			second.CreatedAt = now.Add(time.Minute)
			So(store.CreateReview(ctx, review), ShouldBeNil)
			So(store.CreateReview(ctx, &second), ShouldBeNil)

			reviews, err := store.ListReviewsByItem(ctx, "item-1")
			So(err, ShouldBeNil)
			So(len(reviews), ShouldEqual, 2)
			So(reviews[0].ID, ShouldEqual, "review-1")
			So(reviews[1].ID, ShouldEqual, "review-2")
		})

		Convey("When touching missing reviews", func() {
			_, err := store.GetReview(ctx, "ghost")
			So(err, ShouldWrap, repository.ErrNotFound)

			ghost := *review
			ghost.ID = "ghost"
			So(store.UpdateReview(ctx, &ghost), ShouldWrap, repository.ErrNotFound)
		})
	})
}

func TestSQLiteProfiles(t *testing.T) {
	Convey("Given a SQLite store", t, func() {
		ctx := context.Background()
		store := openStore(t)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		profile := &model.MarketplaceProfile{
			UserID:          "user-1",
			Username:        "user-1",
			PortfolioHealth: 8.4,
			ApprovedItems:   3,
			AvgCompetency:   7.9,
			FeaturedItemIDs: []string{"item-1", "item-2"},
			Skills:          map[string]float64{"Linux": 9.2},
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		Convey("When a profile round-trips through upsert", func() {
			So(store.UpsertProfile(ctx, profile), ShouldBeNil)

			got, err := store.GetProfile(ctx, "user-1")
			So(err, ShouldBeNil)
			So(got.PortfolioHealth, ShouldEqual, 8.4)
			So(got.ApprovedItems, ShouldEqual, 3)
			So(got.AvgCompetency, ShouldEqual, 7.9)
			So(got.FeaturedItemIDs, ShouldResemble, profile.FeaturedItemIDs)
			So(got.Skills, ShouldResemble, profile.Skills)
			So(got.Active, ShouldBeTrue)

			Convey("And a second upsert replaces in place", func() {
				got.Headline = "Security engineer"
				got.Active = false
				So(store.UpsertProfile(ctx, got), ShouldBeNil)

				again, err := store.GetProfile(ctx, "user-1")
				So(err, ShouldBeNil)
				So(again.Headline, ShouldEqual, "Security engineer")
				So(again.Active, ShouldBeFalse)
			})
		})

		Convey("When listing active profiles", func() {
			inactive := *profile
			inactive.UserID = "user-2"
			inactive.Active = false
			So(store.UpsertProfile(ctx, profile), ShouldBeNil)
			So(store.UpsertProfile(ctx, &inactive), ShouldBeNil)

			active, err := store.ListActiveProfiles(ctx)
			So(err, ShouldBeNil)
			So(len(active), ShouldEqual, 1)
			So(active[0].UserID, ShouldEqual, "user-1")
		})

		Convey("When fetching a missing profile", func() {
			_, err := store.GetProfile(ctx, "ghost")
			So(err, ShouldWrap, repository.ErrNotFound)
		})
	})
}

func TestSQLitePersistence(t *testing.T) {
	Convey("Given a database file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "portfolio.db")

		store, err := sqlite.Open(ctx, path)
		So(err, ShouldBeNil)
		So(store.CreateItem(ctx, sampleItem("item-1", "user-1")), ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("When the store is reopened", func() {
			reopened, err := sqlite.Open(ctx, path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then previously written rows are still there", func() {
				got, err := reopened.GetItem(ctx, "item-1")
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Harden a Linux Server")
			})
		})
	})
}
