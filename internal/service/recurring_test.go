package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("не удалось разобрать дату %q: %v", value, err)
	}
	return parsed
}

func TestDueOccurrencesCatchUp(t *testing.T) {
	// Шаблон спал три месяца: должны появиться все пропущенные вхождения
	tpl := &model.RecurringTemplate{
		Amount:         100,
		Frequency:      "monthly",
		NextOccurrence: mustDate(t, "2026-01-15"),
		IsActive:       true,
	}

	due := dueOccurrences(tpl, mustDate(t, "2026-04-20"))

	want := []string{"2026-01-15", "2026-02-15", "2026-03-15", "2026-04-15"}
	if len(due) != len(want) {
		t.Fatalf("ожидалось %d вхождений, получено %d: %v", len(want), len(due), due)
	}
	for i, w := range want {
		if got := due[i].Format("2006-01-02"); got != w {
			t.Errorf("вхождение %d = %s, ожидалось %s", i, got, w)
		}
	}
}

func TestDueOccurrencesNotDueYet(t *testing.T) {
	tpl := &model.RecurringTemplate{
		Amount:         100,
		Frequency:      "monthly",
		NextOccurrence: mustDate(t, "2026-05-01"),
		IsActive:       true,
	}

	if due := dueOccurrences(tpl, mustDate(t, "2026-04-20")); len(due) != 0 {
		t.Fatalf("курсор в будущем не должен давать вхождений, получено %v", due)
	}
}

func TestDueOccurrencesStopsAtEndDate(t *testing.T) {
	endDate := mustDate(t, "2026-02-20")
	tpl := &model.RecurringTemplate{
		Amount:         100,
		Frequency:      "monthly",
		NextOccurrence: mustDate(t, "2026-01-15"),
		EndDate:        &endDate,
		IsActive:       true,
	}

	due := dueOccurrences(tpl, mustDate(t, "2026-06-01"))

	// Январь и февраль попадают, март уже за end_date
	if len(due) != 2 {
		t.Fatalf("ожидалось 2 вхождения, получено %d: %v", len(due), due)
	}
	if got := due[1].Format("2006-01-02"); got != "2026-02-15" {
		t.Errorf("последнее вхождение = %s, ожидалось 2026-02-15", got)
	}
}

func TestDueOccurrencesCursorOnToday(t *testing.T) {
	// Вхождение на сегодняшнюю дату тоже считается просроченным
	tpl := &model.RecurringTemplate{
		Amount:         100,
		Frequency:      "daily",
		NextOccurrence: mustDate(t, "2026-04-20"),
		IsActive:       true,
	}

	due := dueOccurrences(tpl, mustDate(t, "2026-04-20"))
	if len(due) != 1 {
		t.Fatalf("ожидалось 1 вхождение, получено %d", len(due))
	}
}

func TestDueOccurrencesInvalidFrequency(t *testing.T) {
	tpl := &model.RecurringTemplate{
		Amount:         100,
		Frequency:      "fortnightly",
		NextOccurrence: mustDate(t, "2026-01-15"),
		IsActive:       true,
	}

	if due := dueOccurrences(tpl, mustDate(t, "2026-04-20")); due != nil {
		t.Fatalf("неизвестная частота должна давать nil, получено %v", due)
	}
}

func TestFailuresByUser(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	templates := []model.RecurringTemplate{
		{ID: uuid.New(), UserID: alice},
		{ID: uuid.New(), UserID: alice},
		{ID: uuid.New(), UserID: bob},
	}

	errs := []model.TemplateError{
		{TemplateID: templates[0].ID, Error: "ошибка"},
		{TemplateID: templates[1].ID, Error: "ошибка"},
		{TemplateID: templates[2].ID, Error: "ошибка"},
		{TemplateID: uuid.New(), Error: "неизвестный шаблон"},
	}

	failures := failuresByUser(templates, errs)

	if len(failures) != 2 {
		t.Fatalf("ожидалось 2 пользователя со сбоями, получено %d", len(failures))
	}
	if failures[alice] != 2 {
		t.Errorf("у первого пользователя %d сбоя, ожидалось 2", failures[alice])
	}
	if failures[bob] != 1 {
		t.Errorf("у второго пользователя %d сбой, ожидалось 1", failures[bob])
	}
}

func TestFailuresByUserNoErrors(t *testing.T) {
	templates := []model.RecurringTemplate{{ID: uuid.New(), UserID: uuid.New()}}

	if failures := failuresByUser(templates, nil); len(failures) != 0 {
		t.Fatalf("без ошибок карта должна быть пустой, получено %v", failures)
	}
}

func TestDueOccurrencesMonthEndClamp(t *testing.T) {
	// Курсор на 31-е число: февраль урезается до 28-го
	tpl := &model.RecurringTemplate{
		Amount:         100,
		Frequency:      "monthly",
		NextOccurrence: mustDate(t, "2026-01-31"),
		IsActive:       true,
	}

	due := dueOccurrences(tpl, mustDate(t, "2026-03-01"))

	want := []string{"2026-01-31", "2026-02-28"}
	if len(due) != len(want) {
		t.Fatalf("ожидалось %d вхождений, получено %d: %v", len(want), len(due), due)
	}
	for i, w := range want {
		if got := due[i].Format("2006-01-02"); got != w {
			t.Errorf("вхождение %d = %s, ожидалось %s", i, got, w)
		}
	}
}
