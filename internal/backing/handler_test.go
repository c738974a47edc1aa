package backing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/crowdtrust/backend/internal/middleware"
	"github.com/crowdtrust/backend/internal/models"
)

type stubBacker struct {
	pledge    *models.Pledge
	err       error
	projectID uuid.UUID
	backerID  uuid.UUID
	received  []RewardSelection
}

func (s *stubBacker) BackProject(_ context.Context, projectID, backerID uuid.UUID, selections []RewardSelection) (*models.Pledge, error) {
	s.projectID = projectID
	s.backerID = backerID
	s.received = selections
	if s.err != nil {
		return nil, s.err
	}
	return s.pledge, nil
}

func backReq(t *testing.T, projectID uuid.UUID, body string, principal *models.RequestUser) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID.String()+"/actions/back", strings.NewReader(body))
	r.SetPathValue("project_id", projectID.String())
	if principal != nil {
		r = r.WithContext(middleware.WithRequestUser(r.Context(), *principal))
	}
	return r
}

func TestBackHandlerCreated(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	rewardID := uuid.New()
	stub := &stubBacker{pledge: &models.Pledge{ID: uuid.New(), ProjectID: projectID, UserID: userID}}
	h := NewHandler(stub, nil)

	body := `{"rewards":[{"reward_id":"` + rewardID.String() + `","quantity":2}]}`
	principal := &models.RequestUser{ID: userID, UserType: models.UserTypeUser}
	w := httptest.NewRecorder()
	h.BackProject(w, backReq(t, projectID, body, principal))

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body: %s)", w.Code, w.Body.String())
	}
	if stub.projectID != projectID || stub.backerID != userID {
		t.Error("service should receive path project id and principal user id")
	}
	if len(stub.received) != 1 || stub.received[0].RewardID != rewardID || stub.received[0].Quantity != 2 {
		t.Errorf("selections: got %+v", stub.received)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["id"] != stub.pledge.ID.String() {
		t.Errorf("response id: got %v, want %s", resp["id"], stub.pledge.ID)
	}
}

func TestBackHandlerRequiresPrincipal(t *testing.T) {
	h := NewHandler(&stubBacker{}, nil)

	w := httptest.NewRecorder()
	h.BackProject(w, backReq(t, uuid.New(), `{"rewards":[]}`, nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestBackHandlerErrorMapping(t *testing.T) {
	principal := &models.RequestUser{ID: uuid.New(), UserType: models.UserTypeUser}
	rewardID := uuid.New()
	body := `{"rewards":[{"reward_id":"` + rewardID.String() + `","quantity":1}]}`

	cases := []struct {
		err  error
		want int
	}{
		{ErrProjectNotFound, http.StatusNotFound},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrProjectInactive, http.StatusBadRequest},
		{ErrUnknownReward, http.StatusBadRequest},
		{ErrQuantityRange, http.StatusBadRequest},
		{ErrNoSelections, http.StatusBadRequest},
		{ErrUserBlocked, http.StatusForbidden},
	}
	for _, tc := range cases {
		h := NewHandler(&stubBacker{err: tc.err}, nil)
		w := httptest.NewRecorder()
		h.BackProject(w, backReq(t, uuid.New(), body, principal))
		if w.Code != tc.want {
			t.Errorf("%v: status got %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestBackHandlerRejectsBadInput(t *testing.T) {
	principal := &models.RequestUser{ID: uuid.New(), UserType: models.UserTypeUser}
	h := NewHandler(&stubBacker{}, nil)

	// Malformed project id in the path.
	r := httptest.NewRequest(http.MethodPost, "/api/projects/nope/actions/back", strings.NewReader(`{}`))
	r.SetPathValue("project_id", "nope")
	r = r.WithContext(middleware.WithRequestUser(r.Context(), *principal))
	w := httptest.NewRecorder()
	h.BackProject(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad project id: status got %d, want 400", w.Code)
	}

	// Malformed JSON body.
	w = httptest.NewRecorder()
	h.BackProject(w, backReq(t, uuid.New(), `{"rewards":`, principal))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: status got %d, want 400", w.Code)
	}

	// Malformed reward id.
	w = httptest.NewRecorder()
	h.BackProject(w, backReq(t, uuid.New(), `{"rewards":[{"reward_id":"xyz","quantity":1}]}`, principal))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad reward id: status got %d, want 400", w.Code)
	}
}
