package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "non-empty", value: "x", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "whitespace", value: " \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.value, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateItems(t *testing.T) {
	valid := testItem("a", model.TierCapital, 1)
	noTitle := valid
	noTitle.Title = ""

	tests := []struct {
		wantErr error
		name    string
		items   []model.DecisionItem
	}{
		{name: "valid", items: []model.DecisionItem{valid}},
		{name: "empty", items: nil, wantErr: ErrEmptySlice},
		{name: "missing title", items: []model.DecisionItem{valid, noTitle}, wantErr: model.ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateItems(tt.items)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateItems() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateItems() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilter(t *testing.T) {
	if err := validateFilter(service.ItemFilter{Limit: 10}); err != nil {
		t.Errorf("validateFilter() unexpected error = %v", err)
	}
	if err := validateFilter(service.ItemFilter{Limit: -1}); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("validateFilter() error = %v, want ErrInvalidLimit", err)
	}
}
