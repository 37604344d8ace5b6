package service

import (
	"strings"
	"testing"

	"github.com/Yoodaddy171/MyLedge-sub000/internal/model"
)

func TestCrossedThresholds(t *testing.T) {
	tests := []struct {
		name        string
		percentUsed float64
		thresholds  []float64
		want        []float64
	}{
		{"ниже всех порогов", 50, []float64{80, 100}, nil},
		{"ровно на пороге", 80, []float64{80, 100}, []float64{80}},
		{"между порогами", 90, []float64{80, 100}, []float64{80}},
		{"превышение лимита", 120, []float64{80, 100}, []float64{80, 100}},
		{"пустые пороги", 150, nil, nil},
		{"один порог", 100, []float64{100}, []float64{100}},
		{"пороги хранятся не по порядку", 120, []float64{100, 50, 80}, []float64{50, 80, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crossedThresholds(tt.percentUsed, tt.thresholds)
			if len(got) != len(tt.want) {
				t.Fatalf("crossedThresholds(%.0f, %v) = %v, ожидалось %v",
					tt.percentUsed, tt.thresholds, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("порог %d = %.0f, ожидалось %.0f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAlertMessageExceeded(t *testing.T) {
	msg := alertMessage(100, 115.5, 30000)
	if !strings.Contains(msg, "превышен") {
		t.Errorf("сообщение для порога 100%% должно говорить о превышении: %q", msg)
	}
	if !strings.Contains(msg, "115.5") {
		t.Errorf("сообщение должно содержать процент использования: %q", msg)
	}
}

func TestAlertMessageApproaching(t *testing.T) {
	msg := alertMessage(80, 85.0, 30000)
	if !strings.Contains(msg, "приближается") {
		t.Errorf("сообщение для порога 80%% должно говорить о приближении: %q", msg)
	}
	if strings.Contains(msg, "превышен") {
		t.Errorf("порог ниже 100%% не должен сообщать о превышении: %q", msg)
	}
}

func TestDefaultAlertThresholds(t *testing.T) {
	want := []float64{80, 100}
	if len(model.DefaultAlertThresholds) != len(want) {
		t.Fatalf("пороги по умолчанию = %v, ожидалось %v", model.DefaultAlertThresholds, want)
	}
	for i, w := range want {
		if model.DefaultAlertThresholds[i] != w {
			t.Errorf("порог %d = %.0f, ожидалось %.0f", i, model.DefaultAlertThresholds[i], w)
		}
	}
}
