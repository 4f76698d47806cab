package filter

import (
	"reflect"
	"testing"
)

func TestCompileInvalid(t *testing.T) {
	tests := []string{
		`status ==`,
		`1 + `,
		`"unterminated`,
	}
	for _, expression := range tests {
		if _, err := Compile(expression); err == nil {
			t.Errorf("Compile(%q) succeeded, want error", expression)
		}
	}
}

func TestApply(t *testing.T) {
	rows := []interface{}{
		map[string]interface{}{"name": "prod", "status": "RUNNING", "size": 4},
		map[string]interface{}{"name": "dev", "status": "SUSPENDED", "size": 1},
		map[string]interface{}{"name": "ci", "status": "RUNNING", "size": 2},
	}

	tests := []struct {
		name       string
		expression string
		wantNames  []string
	}{
		{name: "equality", expression: `status == "RUNNING"`, wantNames: []string{"prod", "ci"}},
		{name: "numeric comparison", expression: `size > 1`, wantNames: []string{"prod", "ci"}},
		{name: "conjunction", expression: `status == "RUNNING" && size > 2`, wantNames: []string{"prod"}},
		{name: "no matches", expression: `status == "DELETED"`, wantNames: []string{}},
		{name: "undefined field is false", expression: `zone == "eu"`, wantNames: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expression)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}

			kept := f.Apply(rows).([]interface{})
			gotNames := make([]string, 0, len(kept))
			for _, item := range kept {
				gotNames = append(gotNames, item.(map[string]interface{})["name"].(string))
			}
			if !reflect.DeepEqual(gotNames, tt.wantNames) {
				t.Errorf("kept %v, want %v", gotNames, tt.wantNames)
			}
		})
	}
}

func TestApplyPassesThroughNonLists(t *testing.T) {
	f, err := Compile(`status == "RUNNING"`)
	if err != nil {
		t.Fatal(err)
	}
	single := map[string]interface{}{"status": "RUNNING"}
	if got := f.Apply(single); !reflect.DeepEqual(got, single) {
		t.Errorf("non-list input must pass through, got %v", got)
	}
}
