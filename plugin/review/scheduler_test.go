package review

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNewState_ImmediatelyDue(t *testing.T) {
	s := NewState(testNow)
	if !s.Due(testNow) {
		t.Error("fresh state should be due immediately")
	}
	if s.EaseFactor != DefaultEaseFactor {
		t.Errorf("EaseFactor = %f, want %f", s.EaseFactor, DefaultEaseFactor)
	}
	if s.IntervalDays != 0 {
		t.Errorf("IntervalDays = %d, want 0", s.IntervalDays)
	}
}

func TestRecord_FirstCorrect(t *testing.T) {
	s := Record(NewState(testNow), true, testNow)

	if s.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", s.IntervalDays)
	}
	if s.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", s.Repetitions)
	}
	if s.TotalAttempts != 1 || s.CorrectAttempts != 1 {
		t.Errorf("attempts = %d/%d, want 1/1", s.CorrectAttempts, s.TotalAttempts)
	}
	if s.LastReviewedAt == nil || !s.LastReviewedAt.Equal(testNow) {
		t.Error("LastReviewedAt should be set to now")
	}
	if want := testNow.AddDate(0, 0, 1); !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", s.NextReviewAt, want)
	}
}

func TestRecord_SecondCorrect(t *testing.T) {
	s := Record(NewState(testNow), true, testNow)
	s = Record(s, true, testNow)

	if s.IntervalDays != 6 {
		t.Errorf("IntervalDays = %d, want 6", s.IntervalDays)
	}
	if want := testNow.AddDate(0, 0, 6); !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", s.NextReviewAt, want)
	}
}

func TestRecord_ThirdCorrectMultipliesByEase(t *testing.T) {
	s := Record(NewState(testNow), true, testNow) // interval 1, ease 2.5 (capped)
	s = Record(s, true, testNow)                  // interval 6
	easeBefore := s.EaseFactor
	s = Record(s, true, testNow)

	want := int(float64(6) * easeBefore) // floored
	if s.IntervalDays != want {
		t.Errorf("IntervalDays = %d, want floor(6*%f) = %d", s.IntervalDays, easeBefore, want)
	}
}

func TestRecord_IncorrectResets(t *testing.T) {
	s := NewState(testNow)
	for i := 0; i < 4; i++ {
		s = Record(s, true, testNow)
	}
	easeBefore := s.EaseFactor
	s = Record(s, false, testNow)

	if s.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0 after incorrect", s.Repetitions)
	}
	if s.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1 after incorrect", s.IntervalDays)
	}
	if s.EaseFactor >= easeBefore {
		t.Errorf("EaseFactor = %f, expected decrease from %f", s.EaseFactor, easeBefore)
	}
	if s.CorrectAttempts != 4 || s.TotalAttempts != 5 {
		t.Errorf("attempts = %d/%d, want 4/5", s.CorrectAttempts, s.TotalAttempts)
	}
	if want := testNow.AddDate(0, 0, 1); !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want tomorrow", s.NextReviewAt)
	}
}

func TestRecord_EaseFactorBounds(t *testing.T) {
	// Long mixed sequences must keep ease inside [1.3, 2.5] and the
	// interval at least 1.
	s := NewState(testNow)
	for i := 0; i < 1000; i++ {
		s = Record(s, i%3 != 0, testNow)
		if s.EaseFactor < MinEaseFactor || s.EaseFactor > MaxEaseFactor {
			t.Fatalf("answer %d: EaseFactor = %f, outside [%f, %f]",
				i, s.EaseFactor, MinEaseFactor, MaxEaseFactor)
		}
		if s.IntervalDays < 1 {
			t.Fatalf("answer %d: IntervalDays = %d, want >= 1", i, s.IntervalDays)
		}
		if want := testNow.AddDate(0, 0, s.IntervalDays); !s.NextReviewAt.Equal(want) {
			t.Fatalf("answer %d: NextReviewAt drifted from now + interval", i)
		}
	}

	s = NewState(testNow)
	for i := 0; i < 1000; i++ {
		s = Record(s, false, testNow)
	}
	if s.EaseFactor != MinEaseFactor {
		t.Errorf("EaseFactor after failures = %f, want clamped at %f", s.EaseFactor, MinEaseFactor)
	}

	s = NewState(testNow)
	for i := 0; i < 1000; i++ {
		s = Record(s, true, testNow)
	}
	if s.EaseFactor != MaxEaseFactor {
		t.Errorf("EaseFactor after successes = %f, want clamped at %f", s.EaseFactor, MaxEaseFactor)
	}
}

func TestAccuracy(t *testing.T) {
	if got := (State{}).Accuracy(); got != 0 {
		t.Errorf("Accuracy with no attempts = %f, want 0", got)
	}

	s := State{TotalAttempts: 5, CorrectAttempts: 5}
	if got := s.Accuracy(); got != 1.0 {
		t.Errorf("Accuracy = %f, want 1.0", got)
	}
}

func TestTroubleAndMastered(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		trouble  bool
		mastered bool
	}{
		{"fresh", State{}, false, false},
		{"one wrong answer only", State{TotalAttempts: 1, CorrectAttempts: 0}, false, false},
		{"struggling", State{TotalAttempts: 4, CorrectAttempts: 1}, true, false},
		{"borderline accuracy ok", State{TotalAttempts: 5, CorrectAttempts: 3}, false, false},
		{"mastered", State{TotalAttempts: 5, CorrectAttempts: 5}, false, true},
		{"high accuracy too few attempts", State{TotalAttempts: 2, CorrectAttempts: 2}, false, false},
		{"exactly mastered", State{TotalAttempts: 5, CorrectAttempts: 4}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTrouble(tt.state); got != tt.trouble {
				t.Errorf("IsTrouble = %v, want %v", got, tt.trouble)
			}
			if got := IsMastered(tt.state); got != tt.mastered {
				t.Errorf("IsMastered = %v, want %v", got, tt.mastered)
			}
		})
	}
}

func TestSortDue(t *testing.T) {
	items := []DueItem{
		{PersonUID: "slightly-late", State: State{NextReviewAt: testNow.AddDate(0, 0, -1), TotalAttempts: 3}},
		{PersonUID: "very-late", State: State{NextReviewAt: testNow.AddDate(0, 0, -10), TotalAttempts: 3}},
		{PersonUID: "new", State: State{NextReviewAt: testNow.AddDate(0, 0, -1), TotalAttempts: 0}},
	}
	SortDue(items, testNow)

	if items[0].PersonUID != "very-late" {
		t.Errorf("first = %s, want very-late", items[0].PersonUID)
	}
	if items[1].PersonUID != "new" {
		t.Errorf("second = %s, want new (never reviewed wins the tie)", items[1].PersonUID)
	}
}
