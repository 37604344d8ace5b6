package service

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
)

func monthlyTemplate(t *testing.T, amount float64, txType model.TransactionType, cursor string) model.RecurringTemplate {
	t.Helper()
	return model.RecurringTemplate{
		ID:              uuid.New(),
		Amount:          amount,
		TransactionType: txType,
		Frequency:       "monthly",
		NextOccurrence:  mustDate(t, cursor),
		IsActive:        true,
		Description:     "тестовый шаблон",
	}
}

func TestProjectDoesNotMutateTemplates(t *testing.T) {
	templates := []model.RecurringTemplate{
		monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-05-01"),
	}
	before := templates[0]

	Project(500, templates, mustDate(t, "2026-04-20"), mustDate(t, "2026-08-20"))

	if !reflect.DeepEqual(before, templates[0]) {
		t.Fatalf("прогноз изменил шаблон: было %+v, стало %+v", before, templates[0])
	}
}

func TestProjectDeterministic(t *testing.T) {
	templates := []model.RecurringTemplate{
		monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-05-01"),
		monthlyTemplate(t, 300, model.TransactionTypeExpense, "2026-05-10"),
	}
	today := mustDate(t, "2026-04-20")
	horizon := mustDate(t, "2026-10-20")

	first := Project(500, templates, today, horizon)
	second := Project(500, templates, today, horizon)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("повторный прогноз с теми же входами дал другой результат")
	}
}

func TestProjectMonthlySum(t *testing.T) {
	// Месячный доход 1000 с курсором на сегодня: на горизонте 3 месяцев
	// ровно 3 будущих вхождения - сегодняшнее принадлежит генератору
	templates := []model.RecurringTemplate{
		monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-04-20"),
	}
	points := Project(500, templates, mustDate(t, "2026-04-20"), mustDate(t, "2026-07-20"))

	// Стартовая точка + 3 события
	if len(points) != 4 {
		t.Fatalf("ожидалось 4 точки, получено %d: %v", len(points), points)
	}

	final := points[len(points)-1].Balance
	if want := 500 + 3*1000.0; math.Abs(final-want) > 1e-9 {
		t.Errorf("итоговый баланс = %.2f, ожидалось %.2f", final, want)
	}
}

func TestProjectStartsWithTodayPoint(t *testing.T) {
	points := Project(750, nil, mustDate(t, "2026-04-20"), mustDate(t, "2026-07-20"))

	if len(points) != 1 {
		t.Fatalf("без шаблонов ожидалась одна точка, получено %d", len(points))
	}
	if points[0].Balance != 750 {
		t.Errorf("стартовый баланс = %.2f, ожидалось 750", points[0].Balance)
	}
	if !points[0].Date.Equal(mustDate(t, "2026-04-20")) {
		t.Errorf("стартовая дата = %v, ожидалось 2026-04-20", points[0].Date)
	}
}

func TestProjectSkipsTransfers(t *testing.T) {
	toWallet := uuid.New()
	transfer := monthlyTemplate(t, 5000, model.TransactionTypeTransfer, "2026-05-01")
	transfer.ToWalletID = &toWallet

	points := Project(1000, []model.RecurringTemplate{transfer},
		mustDate(t, "2026-04-20"), mustDate(t, "2026-08-20"))

	if len(points) != 1 {
		t.Fatalf("перевод не должен давать событий, получено %d точек", len(points))
	}
}

func TestProjectSkipsPausedAndMalformed(t *testing.T) {
	paused := monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-05-01")
	paused.IsActive = false

	badFreq := monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-05-01")
	badFreq.Frequency = "hourly"

	zeroAmount := monthlyTemplate(t, 0, model.TransactionTypeIncome, "2026-05-01")

	valid := monthlyTemplate(t, 200, model.TransactionTypeExpense, "2026-05-01")

	points := Project(1000,
		[]model.RecurringTemplate{paused, badFreq, zeroAmount, valid},
		mustDate(t, "2026-04-20"), mustDate(t, "2026-06-20"))

	// Стартовая точка + два вхождения валидного шаблона (май и июнь)
	if len(points) != 3 {
		t.Fatalf("ожидалось 3 точки, получено %d: %v", len(points), points)
	}
	final := points[len(points)-1].Balance
	if want := 1000 - 2*200.0; math.Abs(final-want) > 1e-9 {
		t.Errorf("итоговый баланс = %.2f, ожидалось %.2f", final, want)
	}
}

func TestProjectHonorsEndDate(t *testing.T) {
	endDate := mustDate(t, "2026-06-15")
	tpl := monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-05-01")
	tpl.EndDate = &endDate

	points := Project(0, []model.RecurringTemplate{tpl},
		mustDate(t, "2026-04-20"), mustDate(t, "2026-12-31"))

	// Только май и июнь: июль уже за датой окончания
	if len(points) != 3 {
		t.Fatalf("ожидалось 3 точки, получено %d: %v", len(points), points)
	}
}

func TestProjectChronologicalOrder(t *testing.T) {
	templates := []model.RecurringTemplate{
		monthlyTemplate(t, 1000, model.TransactionTypeIncome, "2026-05-20"),
		monthlyTemplate(t, 50, model.TransactionTypeExpense, "2026-04-25"),
	}
	points := Project(0, templates, mustDate(t, "2026-04-20"), mustDate(t, "2026-08-20"))

	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Fatalf("точки не упорядочены по дате: %v после %v", points[i].Date, points[i-1].Date)
		}
	}
}
