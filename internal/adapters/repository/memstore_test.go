package repository_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

func newItem(id, userID string) *model.PortfolioItem {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &model.PortfolioItem{
		ID:         id,
		UserID:     userID,
		Title:      "Item " + id,
		Type:       model.TypeMission,
		Status:     model.StatusDraft,
		Visibility: model.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMemStoreItems(t *testing.T) {
	Convey("Given an empty MemStore", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("When creating an item", func() {
			item := newItem("item-1", "user-1")
			err := store.CreateItem(ctx, item)

			Convey("Then it is stored at version 1", func() {
				So(err, ShouldBeNil)
				So(item.Version, ShouldEqual, 1)

				got, err := store.GetItem(ctx, "item-1")
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Item item-1")
				So(got.Version, ShouldEqual, 1)
			})

			Convey("And creating the same id again fails", func() {
				So(store.CreateItem(ctx, newItem("item-1", "user-1")),
					ShouldWrap, repository.ErrAlreadyExists)
			})
		})

		Convey("When creating a mission-linked item", func() {
			item := newItem("item-1", "user-1")
			item.MissionID = "mission-7"
			So(store.CreateItem(ctx, item), ShouldBeNil)

			Convey("Then it is findable by mission", func() {
				got, err := store.GetItemByMission(ctx, "user-1", "mission-7")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "item-1")
			})

			Convey("And a second item for the same mission is rejected", func() {
				dup := newItem("item-2", "user-1")
				dup.MissionID = "mission-7"
				So(store.CreateItem(ctx, dup), ShouldWrap, repository.ErrAlreadyExists)
			})

			Convey("And the same mission for another user is fine", func() {
				other := newItem("item-2", "user-2")
				other.MissionID = "mission-7"
				So(store.CreateItem(ctx, other), ShouldBeNil)
			})
		})

		Convey("When fetching a missing item", func() {
			_, err := store.GetItem(ctx, "nope")
			So(err, ShouldWrap, repository.ErrNotFound)

			_, err = store.GetItemByMission(ctx, "user-1", "nope")
			So(err, ShouldWrap, repository.ErrNotFound)
		})

		Convey("When listing a user's items", func() {
			So(store.CreateItem(ctx, newItem("item-1", "user-1")), ShouldBeNil)
			So(store.CreateItem(ctx, newItem("item-2", "user-2")), ShouldBeNil)
			So(store.CreateItem(ctx, newItem("item-3", "user-1")), ShouldBeNil)

			items, err := store.ListItemsByUser(ctx, "user-1")

			Convey("Then only that user's items come back in insertion order", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 2)
				So(items[0].ID, ShouldEqual, "item-1")
				So(items[1].ID, ShouldEqual, "item-3")
			})
		})

		Convey("When updating an item", func() {
			item := newItem("item-1", "user-1")
			So(store.CreateItem(ctx, item), ShouldBeNil)

			Convey("And the version matches", func() {
				item.Title = "Renamed"
				err := store.UpdateItem(ctx, item)

				Convey("Then the update lands and the version increments", func() {
					So(err, ShouldBeNil)
					So(item.Version, ShouldEqual, 2)

					got, err := store.GetItem(ctx, "item-1")
					So(err, ShouldBeNil)
					So(got.Title, ShouldEqual, "Renamed")
					So(got.Version, ShouldEqual, 2)
				})
			})

			Convey("And the version is stale", func() {
				first, err := store.GetItem(ctx, "item-1")
				So(err, ShouldBeNil)
				first.Title = "winner"
				So(store.UpdateItem(ctx, first), ShouldBeNil)

				stale, _ := store.GetItem(ctx, "item-1")
				stale.Version = 1
				stale.Title = "loser"

				Convey("Then the update is rejected with a conflict", func() {
					So(store.UpdateItem(ctx, stale), ShouldWrap, model.ErrConflict)

					got, _ := store.GetItem(ctx, "item-1")
					So(got.Title, ShouldEqual, "winner")
				})
			})

			Convey("And the item does not exist", func() {
				So(store.UpdateItem(ctx, newItem("ghost", "user-1")),
					ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When returned items are mutated by the caller", func() {
			item := newItem("item-1", "user-1")
			item.Skills = []string{"Go"}
			So(store.CreateItem(ctx, item), ShouldBeNil)

			got, _ := store.GetItem(ctx, "item-1")
			got.Skills[0] = "Rust"
			got.Title = "scribbled"

			Convey("Then the stored copy is untouched", func() {
				again, _ := store.GetItem(ctx, "item-1")
				So(again.Skills[0], ShouldEqual, "Go")
				So(again.Title, ShouldEqual, "Item item-1")
			})
		})
	})
}

func TestMemStoreSetVisibilityForStatus(t *testing.T) {
	Convey("Given a store with items in mixed states", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		now := time.Now()

		approved1 := newItem("item-1", "user-1")
		approved1.Status = model.StatusApproved
		approved1.ApprovedAt = &now
		approved2 := newItem("item-2", "user-1")
		approved2.Status = model.StatusApproved
		approved2.ApprovedAt = &now
		draft := newItem("item-3", "user-1")
		otherUser := newItem("item-4", "user-2")
		otherUser.Status = model.StatusApproved
		otherUser.ApprovedAt = &now

		for _, item := range []*model.PortfolioItem{approved1, approved2, draft, otherUser} {
			So(store.CreateItem(ctx, item), ShouldBeNil)
		}

		Convey("When flipping approved items to public", func() {
			count, err := store.SetVisibilityForStatus(ctx, "user-1", model.StatusApproved, model.VisibilityPublic)

			Convey("Then only the matching items change", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)

				for id, want := range map[string]model.Visibility{
					"item-1": model.VisibilityPublic,
					"item-2": model.VisibilityPublic,
					"item-3": model.VisibilityPrivate,
					"item-4": model.VisibilityPrivate,
				} {
					got, err := store.GetItem(ctx, id)
					So(err, ShouldBeNil)
					So(got.Visibility, ShouldEqual, want)
				}
			})

			Convey("Then touched items get a version bump", func() {
				So(err, ShouldBeNil)
				got, _ := store.GetItem(ctx, "item-1")
				So(got.Version, ShouldEqual, 2)
				untouched, _ := store.GetItem(ctx, "item-3")
				So(untouched.Version, ShouldEqual, 1)
			})
		})

		Convey("When nothing matches", func() {
			count, err := store.SetVisibilityForStatus(ctx, "user-9", model.StatusApproved, model.VisibilityPublic)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 0)
		})
	})
}

func TestMemStoreReviews(t *testing.T) {
	Convey("Given a store with an item", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.CreateItem(ctx, newItem("item-1", "user-1")), ShouldBeNil)

		review := func(id string) *model.PortfolioReview {
			return &model.PortfolioReview{
				ID:         id,
				ItemID:     "item-1",
				ReviewerID: "mentor-1",
				Status:     model.ReviewPending,
			}
		}

		Convey("When creating reviews", func() {
			So(store.CreateReview(ctx, review("review-1")), ShouldBeNil)
			So(store.CreateReview(ctx, review("review-2")), ShouldBeNil)

			Convey("Then duplicates are rejected", func() {
				So(store.CreateReview(ctx, review("review-1")),
					ShouldWrap, repository.ErrAlreadyExists)
			})

			Convey("Then listing preserves creation order", func() {
				reviews, err := store.ListReviewsByItem(ctx, "item-1")
				So(err, ShouldBeNil)
				So(len(reviews), ShouldEqual, 2)
				So(reviews[0].ID, ShouldEqual, "review-1")
				So(reviews[1].ID, ShouldEqual, "review-2")
			})

			Convey("Then a review can be fetched and updated", func() {
				got, err := store.GetReview(ctx, "review-1")
				So(err, ShouldBeNil)

				got.Status = model.ReviewApproved
				got.Total = 8.2
				So(store.UpdateReview(ctx, got), ShouldBeNil)

				again, _ := store.GetReview(ctx, "review-1")
				So(again.Status, ShouldEqual, model.ReviewApproved)
				So(again.Total, ShouldEqual, 8.2)
			})
		})

		Convey("When touching missing reviews", func() {
			_, err := store.GetReview(ctx, "ghost")
			So(err, ShouldWrap, repository.ErrNotFound)

			So(store.UpdateReview(ctx, review("ghost")), ShouldWrap, repository.ErrNotFound)
		})

		Convey("When an item has no reviews", func() {
			reviews, err := store.ListReviewsByItem(ctx, "item-1")
			So(err, ShouldBeNil)
			So(reviews, ShouldBeEmpty)
		})
	})
}

func TestMemStoreProfiles(t *testing.T) {
	Convey("Given an empty MemStore", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		profile := func(userID string, active bool) *model.MarketplaceProfile {
			return &model.MarketplaceProfile{
				UserID:    userID,
				Username:  userID,
				Active:    active,
				CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			}
		}

		Convey("When upserting a profile twice", func() {
			So(store.UpsertProfile(ctx, profile("user-1", true)), ShouldBeNil)

			updated := profile("user-1", true)
			updated.Headline = "Security engineer"
			So(store.UpsertProfile(ctx, updated), ShouldBeNil)

			Convey("Then the second write replaces the first", func() {
				got, err := store.GetProfile(ctx, "user-1")
				So(err, ShouldBeNil)
				So(got.Headline, ShouldEqual, "Security engineer")
			})
		})

		Convey("When listing active profiles", func() {
			So(store.UpsertProfile(ctx, profile("user-1", true)), ShouldBeNil)
			So(store.UpsertProfile(ctx, profile("user-2", false)), ShouldBeNil)
			So(store.UpsertProfile(ctx, profile("user-3", true)), ShouldBeNil)

			active, err := store.ListActiveProfiles(ctx)

			Convey("Then inactive profiles are filtered and order is stable", func() {
				So(err, ShouldBeNil)
				So(len(active), ShouldEqual, 2)
				So(active[0].UserID, ShouldEqual, "user-1")
				So(active[1].UserID, ShouldEqual, "user-3")
			})
		})

		Convey("When fetching a missing profile", func() {
			_, err := store.GetProfile(ctx, "ghost")
			So(err, ShouldWrap, repository.ErrNotFound)
		})
	})
}
