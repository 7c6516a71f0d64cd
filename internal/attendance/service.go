package attendance

import (
	"context"
	"fmt"
	"log"

	"coinclass/agent/internal/api"
	"coinclass/agent/internal/metrics"
)

// Backend is the slice of the API client the flows use.
type Backend interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
}

const defaultRewardRate = 3

type Service struct {
	client     Backend
	rewardRate float64
}

func NewService(client Backend, rewardRate float64) *Service {
	if rewardRate <= 0 {
		rewardRate = defaultRewardRate
	}
	return &Service{client: client, rewardRate: rewardRate}
}

// Result summarizes one submitted batch back to the user.
type Result struct {
	Msg           string  `json:"msg"`
	StudentCoins  float64 `json:"student_coins"`
	PresentCount  int     `json:"present_count"`
	TeacherReward float64 `json:"teacher_reward"`
	Summary       string  `json:"summary"`
}

type addCoinRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// Submit aggregates the form, sends the batch in one call, then credits the
// teacher presentCount*rate coins in a second, best-effort call. The two
// calls run strictly in sequence; the reward call's failure is logged and
// swallowed so it can never undo or obscure the already-accepted batch.
func (s *Service) Submit(ctx context.Context, classID int, form FormState) (Result, error) {
	batch, err := Aggregate(classID, form)
	if err != nil {
		return Result{}, err
	}

	var resp struct {
		Msg string `json:"msg"`
	}
	if err := s.client.Post(ctx, "/teacher/attendance", batch, &resp); err != nil {
		return Result{}, err
	}
	metrics.BatchesSubmitted.Inc()
	metrics.StudentCoinsIssued.Add(batch.TotalCoins())

	result := Result{
		Msg:          resp.Msg,
		StudentCoins: batch.TotalCoins(),
		PresentCount: batch.PresentCount(),
	}
	if result.PresentCount > 0 {
		result.TeacherReward = float64(result.PresentCount) * s.rewardRate
		reward := addCoinRequest{
			Amount: result.TeacherReward,
			Reason: fmt.Sprintf("%d ta o'quvchining davomatini belgilash", result.PresentCount),
		}
		if err := s.client.Post(ctx, "/teacher/add-coin", reward, nil); err != nil {
			log.Printf("teacher coin award error: %v", err)
		} else {
			metrics.TeacherRewardCoins.Add(result.TeacherReward)
		}
	}
	result.Summary = fmt.Sprintf("Davomat saqlandi! Jami %g coin berildi. Sizga %g coin qo'shildi!",
		result.StudentCoins, result.TeacherReward)
	return result, nil
}

// QuickAward credits one student outside the attendance flow.
func (s *Service) QuickAward(ctx context.Context, studentID int, amount float64, reason string) (string, error) {
	if studentID <= 0 {
		return "", &api.ValidationError{Msg: "student id required"}
	}
	if amount <= 0 {
		return "", &api.ValidationError{Msg: "award amount must be positive"}
	}
	if reason == "" {
		reason = DefaultBonusReason
	}
	payload := struct {
		StudentID int     `json:"student_id"`
		Amount    float64 `json:"amount"`
		Source    string  `json:"source"`
	}{StudentID: studentID, Amount: amount, Source: reason}

	var resp struct {
		Msg string `json:"msg"`
	}
	if err := s.client.Post(ctx, "/teacher/award-coins", payload, &resp); err != nil {
		return "", err
	}
	return resp.Msg, nil
}
