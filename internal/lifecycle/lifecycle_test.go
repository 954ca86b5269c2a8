package lifecycle

import (
	"testing"

	"github.com/mmeshcher/washerman-panel/internal/model"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		current model.OrderStatus
		next    model.OrderStatus
		ok      bool
	}{
		{model.OrderStatusPending, model.OrderStatusInProgress, true},
		{model.OrderStatusInProgress, model.OrderStatusComplete, true},
		{model.OrderStatusComplete, "", false},
		{"CANCELLED", "", false},
	}

	for _, tt := range tests {
		next, ok := NextStatus(tt.current)
		if ok != tt.ok || next != tt.next {
			t.Fatalf("NextStatus(%s) = (%s, %v), want (%s, %v)", tt.current, next, ok, tt.next, tt.ok)
		}
	}
}

func TestCanAdvance(t *testing.T) {
	if !CanAdvance(model.OrderStatusPending) {
		t.Fatalf("PENDING must be advanceable")
	}
	if !CanAdvance(model.OrderStatusInProgress) {
		t.Fatalf("INPROGRESS must be advanceable")
	}
	if CanAdvance(model.OrderStatusComplete) {
		t.Fatalf("COMPLETE must not be advanceable")
	}
}

func TestWireStatus_Lowercases(t *testing.T) {
	tests := map[model.OrderStatus]string{
		model.OrderStatusPending:    "pending",
		model.OrderStatusInProgress: "inprogress",
		model.OrderStatusComplete:   "complete",
	}

	for s, want := range tests {
		if got := WireStatus(s); got != want {
			t.Fatalf("WireStatus(%s) = %s, want %s", s, got, want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.OrderStatus
		ok   bool
	}{
		{"pending", model.OrderStatusPending, true},
		{"PENDING", model.OrderStatusPending, true},
		{"InProgress", model.OrderStatusInProgress, true},
		{" complete ", model.OrderStatusComplete, true},
		{"done", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseStatus(%q) = (%s, %v), want (%s, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLabels(t *testing.T) {
	if got := Label(model.OrderStatusPending); got != "To Start" {
		t.Fatalf("Label(PENDING) = %s", got)
	}
	if got := Label(model.OrderStatusComplete); got != "Done" {
		t.Fatalf("Label(COMPLETE) = %s", got)
	}
	if got := LabelFor(ViewDetail, model.OrderStatusComplete); got != "Finished" {
		t.Fatalf("detail label for COMPLETE = %s", got)
	}
	if got := LabelFor(ViewDetail, model.OrderStatusInProgress); got != "Washing" {
		t.Fatalf("detail label for INPROGRESS must fall back to default, got %s", got)
	}
	if got := LabelFor(ViewFilter, model.OrderStatusInProgress); got != "Wash" {
		t.Fatalf("filter label for INPROGRESS = %s", got)
	}
}

func TestActionLabel(t *testing.T) {
	if got := ActionLabel(model.OrderStatusPending); got != "Start Washing" {
		t.Fatalf("ActionLabel(PENDING) = %s", got)
	}
	if got := ActionLabel(model.OrderStatusInProgress); got != "Mark Finished" {
		t.Fatalf("ActionLabel(INPROGRESS) = %s", got)
	}
	if got := ActionLabel(model.OrderStatusComplete); got != "" {
		t.Fatalf("ActionLabel(COMPLETE) must be empty, got %s", got)
	}
}
