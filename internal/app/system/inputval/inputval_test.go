package inputval

import "testing"

func TestIsValidDatetime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-03-04 08:00:00", true},
		{"2024-03-04T08:00", true},
		{"2024-03-04T08:00:00Z", true},
		{"2024-03-04", true},
		{"", false},
		{"tomorrow", false},
		{"04/03/2024 08:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidDatetime(tt.in); got != tt.want {
				t.Errorf("IsValidDatetime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidDate(t *testing.T) {
	if !IsValidDate("2024-03-04") {
		t.Error("2024-03-04 should be valid")
	}
	if IsValidDate("2024-13-01") || IsValidDate("") {
		t.Error("bad dates should be invalid")
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://erp.example.com", true},
		{"http://localhost:8000", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

type rescheduleInput struct {
	NewStart       string `json:"new_start" validate:"required,datetime" label:"New Start Date/Time"`
	NewEnd         string `json:"new_end" validate:"required,datetime" label:"New End Date/Time"`
	NewWorkstation string `json:"new_workstation" validate:"max=140" label:"Workstation"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   rescheduleInput
		wantMsg string
	}{
		{
			name:  "valid input",
			input: rescheduleInput{NewStart: "2024-03-04 08:00:00", NewEnd: "2024-03-04 10:00:00"},
		},
		{
			name:    "missing start",
			input:   rescheduleInput{NewEnd: "2024-03-04 10:00:00"},
			wantMsg: "New Start Date/Time is required.",
		},
		{
			name:    "bad end",
			input:   rescheduleInput{NewStart: "2024-03-04 08:00:00", NewEnd: "later"},
			wantMsg: "New End Date/Time must be a date and time (YYYY-MM-DD HH:MM).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if tt.wantMsg == "" {
				if result.HasErrors() {
					t.Errorf("Validate() expected no errors, got: %s", result.First())
				}
				return
			}
			if result.First() != tt.wantMsg {
				t.Errorf("Validate() = %q, want %q", result.First(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_OneOfRule(t *testing.T) {
	type viewInput struct {
		Mode string `validate:"required,oneof=work_orders operations" label:"View"`
	}

	if r := Validate(viewInput{Mode: "operations"}); r.HasErrors() {
		t.Errorf("operations should be valid, got: %s", r.First())
	}
	if r := Validate(viewInput{Mode: "gantt"}); !r.HasErrors() {
		t.Error("gantt should fail oneof")
	}
}

func TestValidate_IsoDate(t *testing.T) {
	type gotoInput struct {
		Date string `validate:"required,isodate" label:"Date"`
	}
	if r := Validate(gotoInput{Date: "2024-03-04"}); r.HasErrors() {
		t.Errorf("valid date rejected: %s", r.First())
	}
	if r := Validate(gotoInput{Date: "March 4"}); r.First() != "Date must be a date (YYYY-MM-DD)." {
		t.Errorf("message = %q", r.First())
	}
}

func TestResult(t *testing.T) {
	r := &Result{}
	if r.HasErrors() || r.First() != "" || r.All() != "" {
		t.Error("empty result should have no errors")
	}

	r.Add("new_end", "New End", "New End must be after New Start.")
	r.Add("x", "X", "X is invalid.")
	if !r.HasErrors() {
		t.Error("HasErrors() should be true")
	}
	if r.First() != "New End must be after New Start." {
		t.Errorf("First() = %q", r.First())
	}
	if r.All() != "New End must be after New Start.; X is invalid." {
		t.Errorf("All() = %q", r.All())
	}
}

func TestValidate_PointerStruct(t *testing.T) {
	in := &rescheduleInput{NewStart: "2024-03-04 08:00", NewEnd: "2024-03-04 09:00"}
	if r := Validate(in); r.HasErrors() {
		t.Errorf("pointer struct should work, got: %s", r.First())
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if Validate("not a struct") == nil {
		t.Error("Validate() non-struct should return non-nil result")
	}
}

func TestValidate_NoLabel(t *testing.T) {
	type Input struct {
		Name string `validate:"required"`
	}
	if got := Validate(Input{}).First(); got != "Name is required." {
		t.Errorf("message = %q, want field name message", got)
	}
}
