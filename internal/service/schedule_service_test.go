package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Проверки входа в Move выполняются до обращения к хранилищу,
// поэтому сервису не нужны зависимости
func TestMoveRejectsInvalidWindow(t *testing.T) {
	s := &ScheduleService{}
	at := time.Date(2025, time.April, 7, 10, 0, 0, 0, time.UTC)

	if _, err := s.Move(context.Background(), 1, 1, at, at, false); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Move() with zero-length window error = %v, want ErrInvalidWindow", err)
	}

	if _, err := s.Move(context.Background(), 1, 1, at, at.Add(-time.Hour), false); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Move() with reversed window error = %v, want ErrInvalidWindow", err)
	}
}

func TestCreateSessionRejectsInvalidWindow(t *testing.T) {
	s := &ScheduleService{}
	at := time.Date(2025, time.April, 7, 10, 0, 0, 0, time.UTC)

	_, err := s.CreateSession(context.Background(), CreateSessionInput{
		StaffID:  1,
		RoomID:   1,
		StartsAt: at,
		EndsAt:   at,
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("CreateSession() error = %v, want ErrInvalidWindow", err)
	}
}
