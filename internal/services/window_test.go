package services

import (
	"testing"
	"time"
)

func TestIsWithinWindow(t *testing.T) {
	login := Window{Name: "LOGIN", Start: "10:00", End: "10:20"}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{
			name: "Exactly at start",
			now:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.Local),
			want: true,
		},
		{
			name: "Exactly at end",
			now:  time.Date(2026, 2, 1, 10, 20, 0, 0, time.Local),
			want: true,
		},
		{
			name: "Seconds into the end minute still count",
			now:  time.Date(2026, 2, 1, 10, 20, 59, 0, time.Local),
			want: true,
		},
		{
			name: "One minute before start",
			now:  time.Date(2026, 2, 1, 9, 59, 59, 0, time.Local),
			want: false,
		},
		{
			name: "One minute after end",
			now:  time.Date(2026, 2, 1, 10, 21, 0, 0, time.Local),
			want: false,
		},
		{
			name: "Middle of the window",
			now:  time.Date(2026, 2, 1, 10, 11, 30, 0, time.Local),
			want: true,
		},
		{
			name: "Evening is outside the login window",
			now:  time.Date(2026, 2, 1, 19, 10, 0, 0, time.Local),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsWithinWindow(login, tt.now)
			if got != tt.want {
				t.Errorf("IsWithinWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsWithinWindowEveryMinute(t *testing.T) {
	w := Window{Name: "LOGOUT", Start: "19:00", End: "19:20"}
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)

	for m := 0; m < 24*60; m++ {
		now := day.Add(time.Duration(m) * time.Minute)
		want := m >= 19*60 && m <= 19*60+20
		if got := IsWithinWindow(w, now); got != want {
			t.Fatalf("IsWithinWindow(%s) = %v, want %v", now.Format("15:04"), got, want)
		}
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Window
		wantErr bool
	}{
		{name: "valid", input: "10:00-10:20", want: Window{Name: "LOGIN", Start: "10:00", End: "10:20"}},
		{name: "spaces", input: " 19:00 - 19:20 ", want: Window{Name: "LOGIN", Start: "19:00", End: "19:20"}},
		{name: "missing dash", input: "10:00", wantErr: true},
		{name: "bad clock", input: "25:00-26:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindow("LOGIN", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseWindow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
