package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultModifiers(t *testing.T) {
	config := DefaultModifiers()
	if err := validateModifiers(config); err != nil {
		t.Fatalf("Default modifiers should be valid: %v", err)
	}
	if len(config.Modifiers) != 14 {
		t.Errorf("Expected 14 modifiers, got %d", len(config.Modifiers))
	}

	m, ok := config.GetModifier(10)
	if !ok {
		t.Fatal("modifier 10 not found")
	}
	if m.Effects[EffectSellRefundRate] != 0.75 {
		t.Errorf("Expected refund rate 0.75, got %.2f", m.Effects[EffectSellRefundRate])
	}

	levels := config.UnlockLevels()
	if len(levels) != 11 || levels[0] != 2 || levels[len(levels)-1] != 12 {
		t.Errorf("Unexpected unlock levels: %v", levels)
	}
}

func TestLoadModifiersInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"重复 ID", "modifiers:\n  - {id: 1, name: a}\n  - {id: 1, name: b}\n", "duplicated"},
		{"未知效果键", "modifiers:\n  - {id: 1, name: a, effects: {laserPower: 2}}\n", "unknown effect key"},
		{"解锁未知修正", "modifiers:\n  - {id: 1, name: a}\nunlockByLevel: {2: 9}\n", "unknown modifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, "modifiers.yaml", tt.content)
			_, err := LoadModifiers(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseModifierIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"空字符串", "", nil, false},
		{"单个", "4", []int{4}, false},
		{"多个带空格", "1, 4 ,7", []int{1, 4, 7}, false},
		{"忽略空项", "2,,3,", []int{2, 3}, false},
		{"非法数字", "1,x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModifierIDs(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModifierIDs(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseModifierIDs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
