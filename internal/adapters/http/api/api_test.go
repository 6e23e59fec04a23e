package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/upskillhq/portfolio-engine/internal/adapters/http/api"
	service "github.com/upskillhq/portfolio-engine/internal/app"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testServer hosts the full route table over a started service with an
// in-memory store.
type testServer struct {
	*httptest.Server
	svc *service.Service
}

func newTestServer() *testServer {
	n := 0
	svc := service.New(
		service.WithWorkerCount(1),
		service.WithQueueSize(64),
		service.WithClock(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
		service.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	So(svc.Start(context.Background()), ShouldBeNil)

	return &testServer{
		Server: httptest.NewServer(api.NewServer(svc, svc).Router()),
		svc:    svc,
	}
}

func (ts *testServer) stop() {
	ts.Close()
	ts.svc.Stop()
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, buf.Bytes()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode response %q: %v", body, err)
	}
	return v
}

func missionBody(userID, missionID string, score float64) map[string]any {
	return map[string]any{
		"user_id":    userID,
		"mission_id": missionID,
		"title":      "Harden a Linux Server",
		"score":      score,
		"skills":     []string{"Linux"},
	}
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer()
		Reset(ts.stop)

		Convey("When probing /healthz", func() {
			status, body := ts.do(t, http.MethodGet, "/healthz", nil)

			So(status, ShouldEqual, http.StatusOK)
			So(decode[map[string]string](t, body)["status"], ShouldEqual, "ok")
		})

		Convey("When reading /stats", func() {
			status, body := ts.do(t, http.MethodGet, "/stats", nil)

			So(status, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](t, body)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("When scraping /metrics", func() {
			status, _ := ts.do(t, http.MethodGet, "/metrics", nil)
			So(status, ShouldEqual, http.StatusOK)
		})
	})
}

func TestMissionCompletedEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer()
		Reset(ts.stop)

		Convey("When a high-scoring completion arrives", func() {
			status, body := ts.do(t, http.MethodPost,
				"/v1/events/mission-completed", missionBody("user-1", "mission-1", 95))

			Convey("Then the item is created and acknowledged", func() {
				So(status, ShouldEqual, http.StatusCreated)
				ack := decode[struct {
					Status string               `json:"status"`
					Item   *model.PortfolioItem `json:"item"`
				}](t, body)
				So(ack.Status, ShouldEqual, "created")
				So(ack.Item, ShouldNotBeNil)
				So(ack.Item.Status, ShouldEqual, model.StatusApproved)
			})

			Convey("And the same completion is replayed", func() {
				replayStatus, replayBody := ts.do(t, http.MethodPost,
					"/v1/events/mission-completed", missionBody("user-1", "mission-1", 95))

				Convey("Then the replay reads as a duplicate", func() {
					So(replayStatus, ShouldEqual, http.StatusOK)
					ack := decode[map[string]any](t, replayBody)
					So(ack["status"], ShouldEqual, "duplicate")
					So(ack["item"], ShouldNotBeNil)
				})
			})
		})

		Convey("When the score is below the creation threshold", func() {
			status, body := ts.do(t, http.MethodPost,
				"/v1/events/mission-completed", missionBody("user-1", "mission-2", 60))

			So(status, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](t, body)["status"], ShouldEqual, "skipped")
		})

		Convey("When the payload violates the schema", func() {
			Convey("And a required field is missing", func() {
				status, body := ts.do(t, http.MethodPost,
					"/v1/events/mission-completed",
					map[string]any{"mission_id": "mission-1", "title": "x", "score": 90})

				So(status, ShouldEqual, http.StatusBadRequest)
				So(decode[map[string]string](t, body)["code"], ShouldEqual, "validation_error")
			})

			Convey("And the score is out of range", func() {
				status, _ := ts.do(t, http.MethodPost,
					"/v1/events/mission-completed", missionBody("user-1", "mission-1", 140))
				So(status, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And the body is not JSON", func() {
				status, _ := ts.do(t, http.MethodPost,
					"/v1/events/mission-completed", "not json")
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestVisibilityChangedEndpoint(t *testing.T) {
	Convey("Given a server with an approved item", t, func() {
		ts := newTestServer()
		Reset(ts.stop)

		status, _ := ts.do(t, http.MethodPost,
			"/v1/events/mission-completed", missionBody("user-1", "mission-1", 95))
		So(status, ShouldEqual, http.StatusCreated)

		Convey("When the visibility preference changes", func() {
			status, body := ts.do(t, http.MethodPost,
				"/v1/events/visibility-changed",
				map[string]any{"user_id": "user-1", "new_visibility": "public"})

			Convey("Then the sync is acknowledged with a count", func() {
				So(status, ShouldEqual, http.StatusOK)
				ack := decode[struct {
					Status       string `json:"status"`
					ItemsUpdated int    `json:"items_updated"`
				}](t, body)
				So(ack.Status, ShouldEqual, "synced")
				So(ack.ItemsUpdated, ShouldEqual, 1)
			})
		})

		Convey("When the visibility value is unknown", func() {
			status, body := ts.do(t, http.MethodPost,
				"/v1/events/visibility-changed",
				map[string]any{"user_id": "user-1", "new_visibility": "friends"})

			So(status, ShouldEqual, http.StatusBadRequest)
			So(decode[map[string]string](t, body)["code"], ShouldEqual, "validation_error")
		})
	})
}

func TestItemEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer()
		Reset(ts.stop)

		createItem := func() *model.PortfolioItem {
			status, body := ts.do(t, http.MethodPost, "/v1/items", map[string]any{
				"user_id": "user-1",
				"title":   "Build a Packet Sniffer",
				"summary": "Raw socket capture tool",
				"type":    "mission",
			})
			So(status, ShouldEqual, http.StatusCreated)
			item := decode[*model.PortfolioItem](t, body)
			return item
		}

		Convey("When creating and fetching an item", func() {
			item := createItem()

			status, body := ts.do(t, http.MethodGet, "/v1/items/"+item.ID, nil)

			So(status, ShouldEqual, http.StatusOK)
			got := decode[*model.PortfolioItem](t, body)
			So(got.Title, ShouldEqual, "Build a Packet Sniffer")
			So(got.Status, ShouldEqual, model.StatusDraft)
		})

		Convey("When fetching a missing item", func() {
			status, body := ts.do(t, http.MethodGet, "/v1/items/ghost", nil)

			So(status, ShouldEqual, http.StatusNotFound)
			So(decode[map[string]string](t, body)["code"], ShouldEqual, "not_found")
		})

		Convey("When listing a user's items", func() {
			createItem()

			status, body := ts.do(t, http.MethodGet, "/v1/users/user-1/items", nil)
			So(status, ShouldEqual, http.StatusOK)
			So(len(decode[[]model.PortfolioItem](t, body)), ShouldEqual, 1)

			Convey("And an empty portfolio lists as an empty array", func() {
				status, body := ts.do(t, http.MethodGet, "/v1/users/ghost/items", nil)
				So(status, ShouldEqual, http.StatusOK)
				So(string(bytes.TrimSpace(body)), ShouldEqual, "[]")
			})
		})

		Convey("When editing an item", func() {
			item := createItem()

			status, body := ts.do(t, http.MethodPatch, "/v1/items/"+item.ID, map[string]any{
				"user_id": "user-1",
				"version": item.Version,
				"title":   "Renamed Sniffer",
			})

			So(status, ShouldEqual, http.StatusOK)
			So(decode[*model.PortfolioItem](t, body).Title, ShouldEqual, "Renamed Sniffer")

			Convey("And a stale version is rejected as a conflict", func() {
				status, body := ts.do(t, http.MethodPatch, "/v1/items/"+item.ID, map[string]any{
					"user_id": "user-1",
					"version": item.Version,
					"title":   "Too Late",
				})
				So(status, ShouldEqual, http.StatusConflict)
				So(decode[map[string]string](t, body)["code"], ShouldEqual, "conflict")
			})
		})

		Convey("When someone else edits the item", func() {
			item := createItem()

			status, body := ts.do(t, http.MethodPatch, "/v1/items/"+item.ID, map[string]any{
				"user_id": "user-2",
				"title":   "Hijacked",
			})

			Convey("Then the item reads as not found", func() {
				So(status, ShouldEqual, http.StatusNotFound)
				So(decode[map[string]string](t, body)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When walking the full review flow", func() {
			item := createItem()

			status, _ := ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/submit",
				map[string]any{"user_id": "user-1"})
			So(status, ShouldEqual, http.StatusOK)

			status, body := ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/review/start",
				map[string]any{"reviewer_id": "mentor-1", "reviewer_name": "Dana"})
			So(status, ShouldEqual, http.StatusCreated)
			So(decode[*model.PortfolioReview](t, body).Status, ShouldEqual, model.ReviewPending)

			Convey("And the item is edited mid-review", func() {
				status, body := ts.do(t, http.MethodPatch, "/v1/items/"+item.ID, map[string]any{
					"user_id": "user-1",
					"title":   "Sneaky Edit",
				})
				So(status, ShouldEqual, http.StatusConflict)
				So(decode[map[string]string](t, body)["code"], ShouldEqual, "conflict")
			})

			Convey("And the reviewer files passing scores", func() {
				status, body := ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/review",
					map[string]any{
						"reviewer_id": "mentor-1",
						"criterion_scores": map[string]float64{
							"tech": 8.0, "docs": 7.0, "comms": 8.5,
						},
					})

				So(status, ShouldEqual, http.StatusOK)
				review := decode[*model.PortfolioReview](t, body)
				So(review.Total, ShouldAlmostEqual, 7.8, 0.0001)
				So(review.Status, ShouldEqual, model.ReviewApproved)

				Convey("Then the item can be published", func() {
					status, body := ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/publish",
						map[string]any{"user_id": "user-1"})
					So(status, ShouldEqual, http.StatusOK)

					published := decode[*model.PortfolioItem](t, body)
					So(published.Status, ShouldEqual, model.StatusPublished)
					So(published.Visibility, ShouldEqual, model.VisibilityPublic)
				})

				Convey("Then the review history lists the decision", func() {
					status, body := ts.do(t, http.MethodGet, "/v1/items/"+item.ID+"/reviews", nil)
					So(status, ShouldEqual, http.StatusOK)

					reviews := decode[[]model.PortfolioReview](t, body)
					So(len(reviews), ShouldEqual, 1)
					So(reviews[0].Status, ShouldEqual, model.ReviewApproved)
				})
			})
		})

		Convey("When publishing a draft", func() {
			item := createItem()

			status, body := ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/publish",
				map[string]any{"user_id": "user-1"})

			So(status, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[map[string]string](t, body)["code"], ShouldEqual, "invalid_transition")
		})

		Convey("When recording engagement telemetry", func() {
			item := createItem()

			status, _ := ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/view", nil)
			So(status, ShouldEqual, http.StatusNoContent)

			status, _ = ts.do(t, http.MethodPost, "/v1/items/"+item.ID+"/contact", nil)
			So(status, ShouldEqual, http.StatusNoContent)

			status, body := ts.do(t, http.MethodGet, "/v1/items/"+item.ID, nil)
			So(status, ShouldEqual, http.StatusOK)
			got := decode[*model.PortfolioItem](t, body)
			So(got.Views, ShouldEqual, 1)
			So(got.EmployerContacts, ShouldEqual, 1)
		})
	})
}

func TestImportEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer()
		Reset(ts.stop)

		Convey("When importing from GitHub", func() {
			status, body := ts.do(t, http.MethodPost, "/v1/items/import", map[string]any{
				"user_id": "user-1",
				"title":   "acme/scanner",
				"import": map[string]any{
					"provider": "github",
					"data": map[string]any{
						"repo":     "acme/scanner",
						"language": "Go",
						"stars":    12,
					},
				},
			})

			Convey("Then a GitHub-typed draft is created", func() {
				So(status, ShouldEqual, http.StatusCreated)
				item := decode[*model.PortfolioItem](t, body)
				So(item.Type, ShouldEqual, model.TypeGitHub)
				So(item.Skills, ShouldContain, "Go")
			})
		})

		Convey("When the provider is unknown", func() {
			status, body := ts.do(t, http.MethodPost, "/v1/items/import", map[string]any{
				"user_id": "user-1",
				"title":   "mystery",
				"import":  map[string]any{"provider": "gitlab", "data": map[string]any{}},
			})

			So(status, ShouldEqual, http.StatusBadRequest)
			So(decode[map[string]string](t, body)["code"], ShouldEqual, "validation_error")
		})
	})
}

func TestMarketplaceEndpoints(t *testing.T) {
	Convey("Given a server with ranked users", t, func() {
		ts := newTestServer()
		Reset(ts.stop)

		for i, score := range []float64{98, 91} {
			status, _ := ts.do(t, http.MethodPost, "/v1/events/mission-completed",
				missionBody(fmt.Sprintf("user-%d", i+1), fmt.Sprintf("mission-%d", i+1), score))
			So(status, ShouldEqual, http.StatusCreated)
		}

		Convey("When reading the rankings", func() {
			status, body := ts.do(t, http.MethodGet, "/v1/marketplace/rankings", nil)

			Convey("Then entries come back ordered with dense ranks", func() {
				So(status, ShouldEqual, http.StatusOK)
				entries := decode[[]struct {
					UserID string `json:"user_id"`
					Rank   int    `json:"rank"`
					Score  int    `json:"score"`
				}](t, body)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].UserID, ShouldEqual, "user-1")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
			})

			Convey("And a limit truncates the board", func() {
				status, body := ts.do(t, http.MethodGet, "/v1/marketplace/rankings?limit=1", nil)
				So(status, ShouldEqual, http.StatusOK)
				So(len(decode[[]map[string]any](t, body)), ShouldEqual, 1)
			})

			Convey("And a malformed limit is rejected", func() {
				status, _ := ts.do(t, http.MethodGet, "/v1/marketplace/rankings?limit=abc", nil)
				So(status, ShouldEqual, http.StatusBadRequest)

				status, _ = ts.do(t, http.MethodGet, "/v1/marketplace/rankings?limit=-1", nil)
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When managing a profile", func() {
			status, body := ts.do(t, http.MethodGet, "/v1/marketplace/profiles/user-1", nil)
			So(status, ShouldEqual, http.StatusOK)
			So(decode[*model.MarketplaceProfile](t, body).UserID, ShouldEqual, "user-1")

			Convey("And readiness is updated", func() {
				status, body := ts.do(t, http.MethodPut,
					"/v1/marketplace/profiles/user-1/readiness",
					map[string]any{"score": 88.0})
				So(status, ShouldEqual, http.StatusOK)
				So(decode[*model.MarketplaceProfile](t, body).ReadinessScore, ShouldEqual, 88.0)
			})

			Convey("And an out-of-range readiness is rejected", func() {
				status, _ := ts.do(t, http.MethodPut,
					"/v1/marketplace/profiles/user-1/readiness",
					map[string]any{"score": 130.0})
				So(status, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And the profile is deactivated", func() {
				status, _ := ts.do(t, http.MethodDelete, "/v1/marketplace/profiles/user-2", nil)
				So(status, ShouldEqual, http.StatusNoContent)

				status, body := ts.do(t, http.MethodGet, "/v1/marketplace/rankings", nil)
				So(status, ShouldEqual, http.StatusOK)
				So(len(decode[[]map[string]any](t, body)), ShouldEqual, 1)
			})
		})

		Convey("When fetching an unknown profile", func() {
			status, body := ts.do(t, http.MethodGet, "/v1/marketplace/profiles/ghost", nil)
			So(status, ShouldEqual, http.StatusNotFound)
			So(decode[map[string]string](t, body)["code"], ShouldEqual, "not_found")
		})

		Convey("When rebuilding a thin portfolio", func() {
			status, _ := ts.do(t, http.MethodPost, "/v1/events/mission-completed",
				missionBody("user-thin", "mission-9", 86))
			So(status, ShouldEqual, http.StatusCreated)

			status, body := ts.do(t, http.MethodPost,
				"/v1/marketplace/profiles/user-thin/rebuild", nil)

			Convey("Then the response reports the threshold gate", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(decode[map[string]string](t, body)["status"],
					ShouldEqual, "below_marketplace_threshold")
			})
		})
	})
}
