// Package attendance implements the teacher-side coin flows: turning the
// rendered attendance form into a validated batch, submitting it, crediting
// the teacher's reward, and loading fresh class state for the re-render.
package attendance

import (
	"math"

	"coinclass/agent/internal/api"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// DefaultBonusReason is stored server-side when the teacher leaves the reason
// field blank.
const DefaultBonusReason = "Qo'shimcha faollik"

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// Row is one student's controls on the attendance form. An empty Status means
// no selection was made for that student.
type Row struct {
	StudentID   int     `json:"student_id" validate:"required,gt=0"`
	Status      Status  `json:"status"`
	BonusAmount float64 `json:"bonus_amount"`
	BonusReason string  `json:"bonus_reason"`
}

// FormState is the whole form: one row per rendered student plus the
// page-level coin rate applied to every present student.
type FormState struct {
	CoinRate float64 `json:"coin_rate"`
	Rows     []Row   `json:"rows" validate:"required,min=1,dive"`
}

type Record struct {
	StudentID   int     `json:"student_id"`
	Status      Status  `json:"status"`
	Coins       float64 `json:"coins"`
	BonusAmount float64 `json:"bonus_amount"`
	BonusReason string  `json:"bonus_reason"`
}

type Batch struct {
	ClassID int      `json:"class_id"`
	Records []Record `json:"records"`
}

func (b Batch) PresentCount() int {
	count := 0
	for _, rec := range b.Records {
		if rec.Status == StatusPresent {
			count++
		}
	}
	return count
}

// TotalCoins sums attendance coins and bonuses across the batch. Only used
// for the end-of-flow summary, never sent to the backend as its own field.
func (b Batch) TotalCoins() float64 {
	total := 0.0
	for _, rec := range b.Records {
		total += rec.Coins + rec.BonusAmount
	}
	return total
}

// Aggregate builds the batch from form state. Present students get the page
// rate as attendance coins, absent/late students get zero; bonuses apply
// regardless of status. Rows without a status selection are dropped. The
// resulting batch carries exactly one record per selected student.
func Aggregate(classID int, form FormState) (Batch, error) {
	rate := sanitizeAmount(form.CoinRate)

	records := make([]Record, 0, len(form.Rows))
	seen := make(map[int]bool, len(form.Rows))
	for _, row := range form.Rows {
		if row.Status == "" {
			continue
		}
		if !row.Status.Valid() {
			return Batch{}, &api.ValidationError{Msg: "invalid attendance status: " + string(row.Status)}
		}
		if seen[row.StudentID] {
			return Batch{}, &api.ValidationError{Msg: "duplicate student in form"}
		}
		seen[row.StudentID] = true

		coins := 0.0
		if row.Status == StatusPresent {
			coins = rate
		}
		reason := row.BonusReason
		if reason == "" {
			reason = DefaultBonusReason
		}
		records = append(records, Record{
			StudentID:   row.StudentID,
			Status:      row.Status,
			Coins:       coins,
			BonusAmount: sanitizeAmount(row.BonusAmount),
			BonusReason: reason,
		})
	}
	if len(records) == 0 {
		return Batch{}, &api.ValidationError{Msg: "no attendance records to submit"}
	}
	return Batch{ClassID: classID, Records: records}, nil
}

// sanitizeAmount coerces negative and non-numeric values to zero so a bad
// input can never turn into a negative award or NaN on the wire.
func sanitizeAmount(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
