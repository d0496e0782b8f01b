package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crypticsea/dungeond/internal/adapters/http/api"
	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/internal/rotation"
	"github.com/crypticsea/dungeond/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDeps struct {
	dungeon model.DungeonConfig
	date    string

	submitRank int
	submitErr  error
	submitted  []submitCall

	entries   []model.LeaderboardEntry
	lbErr     error
	userRank  int
	userFound bool
	total     int

	ghosts    []model.GhostMarker
	ghostsErr error

	rotateOut rotation.Outcome
	rotateErr error
	rotations int

	postID     string
	configured bool
	setPostErr error
	setPosts   []string

	cleared  int
	clearErr error
}

type submitCall struct {
	username string
	score    int
	survived bool
	ghost    *model.GhostMarker
}

func (m *mockDeps) DailyDungeon(context.Context) (model.DungeonConfig, string) {
	return m.dungeon, m.date
}

func (m *mockDeps) SubmitScore(_ context.Context, username string, score int, survived bool, ghost *model.GhostMarker) (int, error) {
	if m.submitErr != nil {
		return 0, m.submitErr
	}
	m.submitted = append(m.submitted, submitCall{username, score, survived, ghost})
	return m.submitRank, nil
}

func (m *mockDeps) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if m.lbErr != nil {
		return nil, m.lbErr
	}
	if limit > len(m.entries) {
		return m.entries, nil
	}
	return m.entries[:limit], nil
}

func (m *mockDeps) UserRank(context.Context, string) (int, bool, error) {
	return m.userRank, m.userFound, nil
}

func (m *mockDeps) TotalPlayers(context.Context) (int, error) {
	return m.total, nil
}

func (m *mockDeps) Ghosts(context.Context) ([]model.GhostMarker, error) {
	return m.ghosts, m.ghostsErr
}

func (m *mockDeps) TriggerRotation(context.Context) (rotation.Outcome, error) {
	if m.rotateErr != nil {
		return rotation.Outcome{}, m.rotateErr
	}
	m.rotations++
	return m.rotateOut, nil
}

func (m *mockDeps) SubmissionPost(context.Context) (string, bool, error) {
	return m.postID, m.configured, nil
}

func (m *mockDeps) SetSubmissionPost(_ context.Context, postID string) error {
	if m.setPostErr != nil {
		return m.setPostErr
	}
	m.setPosts = append(m.setPosts, postID)
	return nil
}

func (m *mockDeps) ClearToday(context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	return nil
}

func (m *mockDeps) DefaultLeaderboardLimit() int { return 10 }
func (m *mockDeps) MaxLeaderboardLimit() int     { return 100 }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&mockDeps{date: "2024-03-15"})

		Convey("Then the health endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should return JSON", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "started")
		})
	})
}

func TestDailyDungeonEndpoint(t *testing.T) {
	Convey("Given a server with a configured dungeon", t, func() {
		deps := &mockDeps{
			dungeon: model.DungeonConfig{
				Layout:      strings.Repeat("1", model.LayoutLength),
				Monster:     "Dragon",
				Modifier:    "Tank Mode",
				SubmittedBy: "alice",
			},
			date: "2024-03-15",
		}
		mux := newTestMux(deps)

		Convey("When fetching the daily dungeon", func() {
			req := httptest.NewRequest("GET", "/api/daily-dungeon", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the dungeon with its day key", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["monster"], ShouldEqual, "Dragon")
				So(resp["modifier"], ShouldEqual, "Tank Mode")
				So(resp["date"], ShouldEqual, "2024-03-15")
				So(resp["submittedBy"], ShouldEqual, "alice")
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("POST", "/api/daily-dungeon", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSubmitScoreEndpoint(t *testing.T) {
	Convey("Given a server accepting scores", t, func() {
		deps := &mockDeps{submitRank: 3, date: "2024-03-15"}
		mux := newTestMux(deps)

		Convey("When submitting a valid score with identity", func() {
			body := `{"score": 150, "survived": true}`
			req := httptest.NewRequest("POST", "/api/submit-score", strings.NewReader(body))
			req.Header.Set("X-Dungeond-User", "alice")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the insertion rank", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)
				So(resp["rank"], ShouldEqual, 3)

				So(len(deps.submitted), ShouldEqual, 1)
				So(deps.submitted[0].username, ShouldEqual, "alice")
				So(deps.submitted[0].score, ShouldEqual, 150)
				So(deps.submitted[0].survived, ShouldBeTrue)
				So(deps.submitted[0].ghost, ShouldBeNil)
			})
		})

		Convey("When submitting without an identity header", func() {
			body := `{"score": 10, "survived": false}`
			req := httptest.NewRequest("POST", "/api/submit-score", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the score is attributed to Anonymous", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.submitted[0].username, ShouldEqual, "Anonymous")
			})
		})

		Convey("When submitting with a death position", func() {
			body := `{"score": 10, "survived": false, "deathPosition": {"x": 3, "y": 4}}`
			req := httptest.NewRequest("POST", "/api/submit-score", strings.NewReader(body))
			req.Header.Set("X-Dungeond-User", "bob")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the ghost marker is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.submitted[0].ghost, ShouldNotBeNil)
				So(deps.submitted[0].ghost.X, ShouldEqual, 3)
				So(deps.submitted[0].ghost.Y, ShouldEqual, 4)
			})
		})

		Convey("When the request is invalid", func() {
			// Missing score, negative score, death position out of
			// bounds on each axis, and a malformed body.
			cases := []string{
				`{"survived": true}`,
				`{"score": -5}`,
				`{"score": 10, "deathPosition": {"x": 10, "y": 0}}`,
				`{"score": 10, "deathPosition": {"x": 0, "y": -1}}`,
				`not json`,
			}
			for _, body := range cases {
				req := httptest.NewRequest("POST", "/api/submit-score", strings.NewReader(body))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusBadRequest)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, false)
				So(resp["rank"], ShouldBeNil)
				So(resp["message"], ShouldNotBeEmpty)
			}

			Convey("Then nothing was recorded", func() {
				So(len(deps.submitted), ShouldEqual, 0)
			})
		})

		Convey("When the backend fails", func() {
			deps.submitErr = errors.New("kv down")
			body := `{"score": 10}`
			req := httptest.NewRequest("POST", "/api/submit-score", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the rank stays null", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, false)
				So(resp["rank"], ShouldBeNil)
				So(w.Body.String(), ShouldContainSubstring, `"rank":null`)
			})
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a server with leaderboard entries", t, func() {
		deps := &mockDeps{
			entries: []model.LeaderboardEntry{
				{Rank: 1, Username: "bob", Score: 200},
				{Rank: 2, Username: "alice", Score: 100},
			},
			userRank:  2,
			userFound: true,
			total:     2,
		}
		mux := newTestMux(deps)

		Convey("When fetching with an explicit limit", func() {
			req := httptest.NewRequest("GET", "/api/leaderboard?limit=1", nil)
			req.Header.Set("X-Dungeond-User", "alice")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the truncated board with context", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					Entries      []model.LeaderboardEntry `json:"entries"`
					UserRank     *int                     `json:"userRank"`
					TotalPlayers int                      `json:"totalPlayers"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(len(resp.Entries), ShouldEqual, 1)
				So(resp.Entries[0].Username, ShouldEqual, "bob")
				So(resp.UserRank, ShouldNotBeNil)
				So(*resp.UserRank, ShouldEqual, 2)
				So(resp.TotalPlayers, ShouldEqual, 2)
			})
		})

		Convey("When fetching without a limit", func() {
			req := httptest.NewRequest("GET", "/api/leaderboard", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the caller has no entries", func() {
			deps.userFound = false
			req := httptest.NewRequest("GET", "/api/leaderboard", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then userRank is null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["userRank"], ShouldBeNil)
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"limit=0", "limit=-2", "limit=abc"} {
				req := httptest.NewRequest("GET", "/api/leaderboard?"+q, nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the limit exceeds the maximum", func() {
			req := httptest.NewRequest("GET", "/api/leaderboard?limit=101", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
		})
	})
}

func TestGhostsEndpoint(t *testing.T) {
	Convey("Given a server with ghost markers", t, func() {
		deps := &mockDeps{ghosts: []model.GhostMarker{{X: 3, Y: 4, Username: "alice"}}}
		mux := newTestMux(deps)

		Convey("When fetching ghosts", func() {
			req := httptest.NewRequest("GET", "/api/ghosts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the markers", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					Ghosts []model.GhostMarker `json:"ghosts"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(len(resp.Ghosts), ShouldEqual, 1)
				So(resp.Ghosts[0].Username, ShouldEqual, "alice")
			})
		})

		Convey("When there are no ghosts", func() {
			deps.ghosts = nil
			req := httptest.NewRequest("GET", "/api/ghosts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return an empty array, not null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"ghosts":[]`)
			})
		})
	})
}

func TestRotationEndpoints(t *testing.T) {
	Convey("Given a server that can rotate", t, func() {
		deps := &mockDeps{
			rotateOut: rotation.Outcome{
				Status:   rotation.StatusRotated,
				Monster:  "Dragon",
				Modifier: "Tank Mode",
				Author:   "alice",
			},
		}
		mux := newTestMux(deps)

		Convey("When the scheduler hook fires", func() {
			req := httptest.NewRequest("POST", "/internal/scheduler/rotate", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then rotation runs without a moderator gate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.rotations, ShouldEqual, 1)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)

				dungeon, ok := resp["dungeon"].(map[string]interface{})
				So(ok, ShouldBeTrue)
				So(dungeon["monster"], ShouldEqual, "Dragon")
				So(dungeon["modifier"], ShouldEqual, "Tank Mode")
				So(dungeon["author"], ShouldEqual, "alice")
			})
		})

		Convey("When no submission post is configured", func() {
			deps.rotateOut = rotation.Outcome{Status: rotation.StatusNotConfigured}
			req := httptest.NewRequest("POST", "/internal/scheduler/rotate", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it reports failure without a dungeon", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, false)
				So(resp["dungeon"], ShouldBeNil)
				So(resp["message"], ShouldContainSubstring, "no submission post configured")
			})
		})

		Convey("When there are no valid submissions", func() {
			deps.rotateOut = rotation.Outcome{Status: rotation.StatusNoSubmissions}
			req := httptest.NewRequest("POST", "/internal/scheduler/rotate", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the current dungeon is kept", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["success"], ShouldEqual, true)
				So(resp["dungeon"], ShouldBeNil)
				So(resp["message"], ShouldContainSubstring, "keeping current dungeon")
			})
		})

		Convey("When a non-moderator triggers rotation", func() {
			req := httptest.NewRequest("POST", "/admin/trigger-rotation", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is forbidden and nothing ran", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
				So(deps.rotations, ShouldEqual, 0)
			})
		})

		Convey("When a moderator triggers rotation", func() {
			req := httptest.NewRequest("POST", "/admin/trigger-rotation", nil)
			req.Header.Set("X-Dungeond-Moderator", "true")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.rotations, ShouldEqual, 1)
		})
	})
}

func TestSubmissionPostEndpoint(t *testing.T) {
	Convey("Given a server with a configured submission post", t, func() {
		deps := &mockDeps{postID: "post-1", configured: true}
		mux := newTestMux(deps)

		Convey("When reading the pointer", func() {
			req := httptest.NewRequest("GET", "/admin/submission-post", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the pointer is readable without moderator status", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["postId"], ShouldEqual, "post-1")
				So(resp["configured"], ShouldEqual, true)
			})
		})

		Convey("When the pointer was never configured", func() {
			deps.postID = ""
			deps.configured = false
			req := httptest.NewRequest("GET", "/admin/submission-post", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then postId is null, not an empty string", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["postId"], ShouldBeNil)
				So(resp["configured"], ShouldEqual, false)
				So(w.Body.String(), ShouldContainSubstring, `"postId":null`)
			})
		})

		Convey("When a non-moderator updates the pointer", func() {
			body := `{"postId": "post-2"}`
			req := httptest.NewRequest("POST", "/admin/submission-post", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(len(deps.setPosts), ShouldEqual, 0)
		})

		Convey("When a moderator updates the pointer", func() {
			body := `{"postId": "post-2"}`
			req := httptest.NewRequest("POST", "/admin/submission-post", strings.NewReader(body))
			req.Header.Set("X-Dungeond-Moderator", "true")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.setPosts, ShouldResemble, []string{"post-2"})
		})

		Convey("When a moderator sends an empty post id", func() {
			body := `{"postId": "  "}`
			req := httptest.NewRequest("POST", "/admin/submission-post", strings.NewReader(body))
			req.Header.Set("X-Dungeond-Moderator", "true")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(len(deps.setPosts), ShouldEqual, 0)
		})
	})
}

func TestClearDataEndpoint(t *testing.T) {
	Convey("Given a server with data to clear", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When a non-moderator clears data", func() {
			req := httptest.NewRequest("DELETE", "/admin/data", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(deps.cleared, ShouldEqual, 0)
		})

		Convey("When a moderator clears data", func() {
			req := httptest.NewRequest("DELETE", "/admin/data", nil)
			req.Header.Set("X-Dungeond-Moderator", "true")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.cleared, ShouldEqual, 1)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("GET", "/admin/data", nil)
			req.Header.Set("X-Dungeond-Moderator", "true")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
