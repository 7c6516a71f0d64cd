package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"coinclass/agent/internal/api"
)

type recordedCall struct {
	Path string
	Body interface{}
}

// fakeBackend answers canned JSON per path and records every post.
type fakeBackend struct {
	responses map[string]string
	failures  map[string]error
	posts     []recordedCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: map[string]string{},
		failures:  map[string]error{},
	}
}

func (f *fakeBackend) Get(_ context.Context, path string, out interface{}) error {
	if err := f.failures[path]; err != nil {
		return err
	}
	payload, ok := f.responses[path]
	if !ok {
		payload = `{}`
	}
	return json.Unmarshal([]byte(payload), out)
}

func (f *fakeBackend) Post(_ context.Context, path string, body, out interface{}) error {
	f.posts = append(f.posts, recordedCall{Path: path, Body: body})
	if err := f.failures[path]; err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	payload, ok := f.responses[path]
	if !ok {
		payload = `{}`
	}
	return json.Unmarshal([]byte(payload), out)
}

func (f *fakeBackend) postsTo(path string) []recordedCall {
	var calls []recordedCall
	for _, call := range f.posts {
		if call.Path == path {
			calls = append(calls, call)
		}
	}
	return calls
}

func presentForm(count int) FormState {
	form := FormState{CoinRate: 1}
	for i := 0; i < count; i++ {
		form.Rows = append(form.Rows, Row{StudentID: i + 1, Status: StatusPresent})
	}
	return form
}

func TestSubmitRewardsTeacherPerPresentStudent(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["/teacher/attendance"] = `{"msg":"Davomat saqlandi (3 o'quvchi)"}`
	svc := NewService(backend, 3)

	result, err := svc.Submit(context.Background(), 5, presentForm(3))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.PresentCount != 3 {
		t.Fatalf("expected present count 3, got %d", result.PresentCount)
	}
	if result.TeacherReward != 9 {
		t.Fatalf("expected teacher reward 9, got %g", result.TeacherReward)
	}
	rewards := backend.postsTo("/teacher/add-coin")
	if len(rewards) != 1 {
		t.Fatalf("expected one reward call, got %d", len(rewards))
	}
	reward := rewards[0].Body.(addCoinRequest)
	if reward.Amount != 9 {
		t.Fatalf("expected reward amount 9, got %g", reward.Amount)
	}
	if reward.Reason == "" {
		t.Fatalf("reward reason must be set")
	}
}

func TestSubmitNoRewardWhenNobodyPresent(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend, 3)

	form := FormState{
		CoinRate: 2,
		Rows: []Row{
			{StudentID: 1, Status: StatusAbsent},
			{StudentID: 2, Status: StatusLate},
		},
	}
	result, err := svc.Submit(context.Background(), 1, form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TeacherReward != 0 {
		t.Fatalf("expected no teacher reward, got %g", result.TeacherReward)
	}
	if calls := backend.postsTo("/teacher/add-coin"); len(calls) != 0 {
		t.Fatalf("expected no reward call, got %d", len(calls))
	}
}

func TestSubmitScenarioTotals(t *testing.T) {
	// A present bonus=2, B absent, C late bonus=5, rate=1.
	backend := newFakeBackend()
	svc := NewService(backend, 3)

	form := FormState{
		CoinRate: 1,
		Rows: []Row{
			{StudentID: 1, Status: StatusPresent, BonusAmount: 2},
			{StudentID: 2, Status: StatusAbsent},
			{StudentID: 3, Status: StatusLate, BonusAmount: 5},
		},
	}
	result, err := svc.Submit(context.Background(), 1, form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.StudentCoins != 8 {
		t.Fatalf("expected 8 coins issued, got %g", result.StudentCoins)
	}
	if result.PresentCount != 1 || result.TeacherReward != 3 {
		t.Fatalf("expected 1 present / reward 3, got %d / %g", result.PresentCount, result.TeacherReward)
	}

	batches := backend.postsTo("/teacher/attendance")
	if len(batches) != 1 {
		t.Fatalf("expected one batch call, got %d", len(batches))
	}
	batch := batches[0].Body.(Batch)
	want := []Record{
		{StudentID: 1, Status: StatusPresent, Coins: 1, BonusAmount: 2, BonusReason: DefaultBonusReason},
		{StudentID: 2, Status: StatusAbsent, Coins: 0, BonusAmount: 0, BonusReason: DefaultBonusReason},
		{StudentID: 3, Status: StatusLate, Coins: 0, BonusAmount: 5, BonusReason: DefaultBonusReason},
	}
	for i, rec := range want {
		if batch.Records[i] != rec {
			t.Fatalf("record %d: expected %+v, got %+v", i, rec, batch.Records[i])
		}
	}
}

func TestSubmitFailureSkipsRewardAndSurfacesError(t *testing.T) {
	backend := newFakeBackend()
	backend.failures["/teacher/attendance"] = &api.RequestError{StatusCode: http.StatusNotFound, Msg: "class not found"}
	svc := NewService(backend, 3)

	_, err := svc.Submit(context.Background(), 99, presentForm(2))
	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) || reqErr.Msg != "class not found" {
		t.Fatalf("expected class not found error, got %v", err)
	}
	if calls := backend.postsTo("/teacher/add-coin"); len(calls) != 0 {
		t.Fatalf("batch failure must not trigger a reward call")
	}
}

func TestSubmitRewardFailureSwallowed(t *testing.T) {
	backend := newFakeBackend()
	backend.failures["/teacher/add-coin"] = &api.RequestError{StatusCode: http.StatusNotFound, Msg: "request failed"}
	svc := NewService(backend, 3)

	result, err := svc.Submit(context.Background(), 1, presentForm(2))
	if err != nil {
		t.Fatalf("reward failure must not fail the flow: %v", err)
	}
	// The displayed summary is unchanged by the secondary failure.
	if result.TeacherReward != 6 {
		t.Fatalf("expected reported reward 6, got %g", result.TeacherReward)
	}
	if len(backend.postsTo("/teacher/add-coin")) != 1 {
		t.Fatalf("expected exactly one reward attempt (no retries)")
	}
}

func TestSubmitValidationErrorBeforeNetwork(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend, 3)

	_, err := svc.Submit(context.Background(), 1, FormState{})
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(backend.posts) != 0 {
		t.Fatalf("validation errors must never reach the network")
	}
}

func TestQuickAward(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["/teacher/award-coins"] = `{"msg":"5 coin berildi"}`
	svc := NewService(backend, 3)

	msg, err := svc.QuickAward(context.Background(), 12, 5, "Darsdagi faollik")
	if err != nil {
		t.Fatalf("quick award: %v", err)
	}
	if msg != "5 coin berildi" {
		t.Fatalf("expected backend msg, got %q", msg)
	}

	if _, err := svc.QuickAward(context.Background(), 12, 0, "x"); err == nil {
		t.Fatalf("expected validation error for non-positive amount")
	}
	if _, err := svc.QuickAward(context.Background(), 0, 5, "x"); err == nil {
		t.Fatalf("expected validation error for missing student")
	}
}

func TestLoadRosterPreDefaultsForm(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["/teacher/classes/4"] = `{"id":4,"name":"Beginner A","students":[{"id":1,"full_name":"Ali","balance":10.5},{"id":2,"full_name":"Vali","balance":3}]}`
	svc := NewService(backend, 3)

	roster, err := svc.LoadRoster(context.Background(), 4)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if roster.Name != "Beginner A" || len(roster.Students) != 2 {
		t.Fatalf("unexpected roster: %+v", roster)
	}
	if len(roster.Form.Rows) != 2 {
		t.Fatalf("expected one form row per student")
	}
	for _, row := range roster.Form.Rows {
		if row.Status != StatusPresent || row.BonusAmount != 0 {
			t.Fatalf("rows must default to present with no bonus, got %+v", row)
		}
	}
}

func TestListClasses(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["/teacher/dashboard"] = `{"classes":[{"id":1,"name":"Beginner A","student_count":12}]}`
	svc := NewService(backend, 3)

	classes, err := svc.ListClasses(context.Background())
	if err != nil {
		t.Fatalf("list classes: %v", err)
	}
	if len(classes) != 1 || classes[0].Name != "Beginner A" || classes[0].StudentCount != 12 {
		t.Fatalf("unexpected classes: %+v", classes)
	}
}
