package attendance

import (
	"context"
	"fmt"
)

type Student struct {
	ID       int     `json:"id"`
	FullName string  `json:"full_name"`
	Balance  float64 `json:"balance"`
}

type Class struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	StudentCount int    `json:"student_count"`
}

// Roster is the freshly fetched class state plus a form pre-defaulted the way
// the attendance screen renders: every student present, no bonus.
type Roster struct {
	ClassID  int       `json:"class_id"`
	Name     string    `json:"name"`
	Students []Student `json:"students"`
	Form     FormState `json:"form"`
}

// ListClasses returns the teacher's classes from the dashboard endpoint.
func (s *Service) ListClasses(ctx context.Context) ([]Class, error) {
	var resp struct {
		Classes []Class `json:"classes"`
	}
	if err := s.client.Get(ctx, "/teacher/dashboard", &resp); err != nil {
		return nil, err
	}
	return resp.Classes, nil
}

// LoadRoster re-fetches class state from the backend. The submit flow calls
// this after a successful batch instead of reusing client-held values, so any
// server-side rejection of individual records becomes visible in the fresh
// view.
func (s *Service) LoadRoster(ctx context.Context, classID int) (Roster, error) {
	var resp struct {
		ID       int       `json:"id"`
		Name     string    `json:"name"`
		Students []Student `json:"students"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/teacher/classes/%d", classID), &resp); err != nil {
		return Roster{}, err
	}

	rows := make([]Row, 0, len(resp.Students))
	for _, student := range resp.Students {
		rows = append(rows, Row{StudentID: student.ID, Status: StatusPresent})
	}
	return Roster{
		ClassID:  classID,
		Name:     resp.Name,
		Students: resp.Students,
		Form:     FormState{Rows: rows},
	}, nil
}
