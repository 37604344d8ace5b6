package schedule

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestAdvance_DailyAndWeekly(t *testing.T) {
	if got := Advance(mustDate(t, "2026-03-10"), Daily); !got.Equal(mustDate(t, "2026-03-11")) {
		t.Fatalf("daily advance = %s, want 2026-03-11", got.Format("2006-01-02"))
	}
	if got := Advance(mustDate(t, "2026-03-10"), Weekly); !got.Equal(mustDate(t, "2026-03-17")) {
		t.Fatalf("weekly advance = %s, want 2026-03-17", got.Format("2006-01-02"))
	}
}

func TestAdvance_MonthlyClampsToEndOfMonth(t *testing.T) {
	// 31 января -> 28 февраля в невисокосном году, не 2-3 марта
	got := Advance(mustDate(t, "2026-01-31"), Monthly)
	if !got.Equal(mustDate(t, "2026-02-28")) {
		t.Fatalf("2026-01-31 +1mo = %s, want 2026-02-28", got.Format("2006-01-02"))
	}

	// Високосный год: 31 января -> 29 февраля
	got = Advance(mustDate(t, "2028-01-31"), Monthly)
	if !got.Equal(mustDate(t, "2028-02-29")) {
		t.Fatalf("2028-01-31 +1mo = %s, want 2028-02-29", got.Format("2006-01-02"))
	}

	// Обычная дата без прижатия
	got = Advance(mustDate(t, "2026-04-15"), Monthly)
	if !got.Equal(mustDate(t, "2026-05-15")) {
		t.Fatalf("2026-04-15 +1mo = %s, want 2026-05-15", got.Format("2006-01-02"))
	}
}

func TestAdvance_QuarterlyClamps(t *testing.T) {
	// 30 ноября + 3 месяца = 28/29 февраля
	got := Advance(mustDate(t, "2026-11-30"), Quarterly)
	if !got.Equal(mustDate(t, "2027-02-28")) {
		t.Fatalf("2026-11-30 +3mo = %s, want 2027-02-28", got.Format("2006-01-02"))
	}

	got = Advance(mustDate(t, "2026-01-31"), Quarterly)
	if !got.Equal(mustDate(t, "2026-04-30")) {
		t.Fatalf("2026-01-31 +3mo = %s, want 2026-04-30", got.Format("2006-01-02"))
	}
}

func TestAdvance_YearlyClampsLeapDay(t *testing.T) {
	// 29 февраля високосного года -> 28 февраля следующего
	got := Advance(mustDate(t, "2028-02-29"), Yearly)
	if !got.Equal(mustDate(t, "2029-02-28")) {
		t.Fatalf("2028-02-29 +1y = %s, want 2029-02-28", got.Format("2006-01-02"))
	}

	got = Advance(mustDate(t, "2026-06-15"), Yearly)
	if !got.Equal(mustDate(t, "2027-06-15")) {
		t.Fatalf("2026-06-15 +1y = %s, want 2027-06-15", got.Format("2006-01-02"))
	}
}

func TestAdvance_IsMonotonic(t *testing.T) {
	freqs := []Frequency{Daily, Weekly, Monthly, Quarterly, Yearly}
	for _, f := range freqs {
		cursor := mustDate(t, "2026-01-31")
		for i := 0; i < 50; i++ {
			next := Advance(cursor, f)
			if !next.After(cursor) {
				t.Fatalf("%s: advance from %s produced %s, cursor did not move forward",
					f, cursor.Format("2006-01-02"), next.Format("2006-01-02"))
			}
			cursor = next
		}
	}
}

func TestParseFrequency(t *testing.T) {
	for _, s := range []string{"daily", "weekly", "monthly", "quarterly", "yearly"} {
		if _, err := ParseFrequency(s); err != nil {
			t.Fatalf("ParseFrequency(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseFrequency("biweekly"); err == nil {
		t.Fatal("ParseFrequency(biweekly) expected error, got nil")
	}
}

func TestPeriodStart(t *testing.T) {
	got := PeriodStart(mustDate(t, "2026-08-28"))
	if !got.Equal(mustDate(t, "2026-08-01")) {
		t.Fatalf("PeriodStart = %s, want 2026-08-01", got.Format("2006-01-02"))
	}
}
