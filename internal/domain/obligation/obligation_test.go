package obligation

import "testing"

func TestParseStatusAcceptsLegacyValues(t *testing.T) {
	t.Parallel()

	cases := map[string]Status{
		"active":    StatusActive,
		" Active ":  StatusActive,
		"نشط":       StatusActive,
		"overdue":   StatusOverdue,
		"متأخر":     StatusOverdue,
		"completed": StatusCompleted,
		"مكتمل":     StatusCompleted,
		"paused":    StatusUnknown,
		"":          StatusUnknown,
	}
	for raw, want := range cases {
		if got := ParseStatus(raw); got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestStoredValuesIncludesBothSpellings(t *testing.T) {
	t.Parallel()

	got := StoredValues(StatusActive, StatusOverdue)
	want := []string{"active", "نشط", "overdue", "متأخر"}
	if len(got) != len(want) {
		t.Fatalf("StoredValues len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("StoredValues[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDayOffsetHelpers(t *testing.T) {
	t.Parallel()

	upcoming := Obligation{DayOffset: -3}
	if upcoming.DaysUntilDue() != 3 {
		t.Fatalf("DaysUntilDue() = %d, want 3", upcoming.DaysUntilDue())
	}
	overdue := Obligation{DayOffset: 2}
	if overdue.DaysOverdue() != 2 {
		t.Fatalf("DaysOverdue() = %d, want 2", overdue.DaysOverdue())
	}
}
