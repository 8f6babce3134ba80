package group

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fkhayef/groupapply/pkg/middleware"
)

func serve(h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFlow(t *testing.T) {
	f := newFixture(t)
	h := middleware.DevIdentityMiddleware(NewHandler(f.groups).Routes())

	rec := serve(h, http.MethodPost, "/", alice.ID, `{"job_id":"job-1","owner_name":"Alice","members":[{"name":"Bob","user_id":"u-bob"}],"required_count":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("create Cache-Control = %q", cc)
	}
	var created struct {
		Data GroupResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Data.Access == nil || !created.Data.Access.IsOwner {
		t.Errorf("access = %+v", created.Data.Access)
	}
	groupID, memberID := created.Data.ID, created.Data.Members[0].ID

	rec = serve(h, http.MethodPut, "/"+groupID+"/members/"+memberID+"/status", bob.ID, `{"status":"approved"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner status = %d", rec.Code)
	}
	rec = serve(h, http.MethodPut, "/"+groupID+"/members/"+memberID+"/status", alice.ID, `{"status":"maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status = %d", rec.Code)
	}
	rec = serve(h, http.MethodPut, "/"+groupID+"/members/"+memberID+"/participation", bob.ID, `{"status":"participating"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("participation while pending = %d", rec.Code)
	}

	rec = serve(h, http.MethodPost, "/"+groupID+"/respond", bob.ID, `{"accept":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("respond = %d: %s", rec.Code, rec.Body)
	}
	rec = serve(h, http.MethodPut, "/"+groupID+"/members/"+memberID+"/participation", bob.ID, `{"status":"participating"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("participation = %d: %s", rec.Code, rec.Body)
	}

	rec = serve(h, http.MethodGet, "/"+groupID+"/readiness", bob.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness = %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.HasPrefix(cc, "private, max-age=") {
		t.Errorf("readiness Cache-Control = %q", cc)
	}
	var readiness struct {
		Data Readiness `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&readiness); err != nil {
		t.Fatal(err)
	}
	if !readiness.Data.CanSubmit {
		t.Errorf("readiness = %+v", readiness.Data)
	}

	rec = serve(h, http.MethodPost, "/"+groupID+"/join", carol.ID, "")
	if rec.Code != http.StatusCreated {
		t.Errorf("join = %d: %s", rec.Code, rec.Body)
	}
	rec = serve(h, http.MethodPost, "/"+groupID+"/join", carol.ID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("second join = %d: %s", rec.Code, rec.Body)
	}

	rec = serve(h, http.MethodGet, "/?job_id=job-1", carol.ID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), groupID) {
		t.Errorf("list = %d: %s", rec.Code, rec.Body)
	}

	rec = serve(h, http.MethodGet, "/g-404", alice.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing group = %d", rec.Code)
	}
}

func TestRespondRequiresExplicitAnswer(t *testing.T) {
	f := newFixture(t)
	h := middleware.DevIdentityMiddleware(NewHandler(f.groups).Routes())
	g := f.createGroup(t, 1, MemberInput{Name: "Bob", UserID: strptr(bob.ID)})

	for _, body := range []string{"", "{}", `{"accept":null}`, `{"accept":"yes"}`} {
		rec := serve(h, http.MethodPost, "/"+g.ID+"/respond", bob.ID, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("respond %q = %d: %s", body, rec.Code, rec.Body)
		}
	}

	got, err := f.groups.GetGroup(context.Background(), g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status := got.Members[0].Status; status != MemberStatusPending {
		t.Fatalf("member status after malformed answers = %s, want pending", status)
	}

	rec := serve(h, http.MethodPost, "/"+g.ID+"/respond", bob.ID, `{"accept":false}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "declined") {
		t.Fatalf("decline = %d: %s", rec.Code, rec.Body)
	}
	got, _ = f.groups.GetGroup(context.Background(), g.ID)
	if status := got.Members[0].Status; status != MemberStatusRejected {
		t.Errorf("member status after decline = %s, want rejected", status)
	}
}
