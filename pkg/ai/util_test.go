package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type facility struct {
		Name   string `json:"name"`
		Region string `json:"region,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  facility
	}{
		{
			name:  "valid json object",
			input: `{"name":"Mercy General"}`,
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{name: 'Mercy General'}`,
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "trailing comma",
			input: `{"name":"Mercy General",}`,
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "missing endbracket",
			input: `{"name":"Mercy General`,
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{name: 'Mercy General'}"`,
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"name\": \"Mercy General\"\n}\n",
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "duplicate leading brace no newlines",
			input: `{ { "name": "Mercy General" }`,
			want:  facility{Name: "Mercy General"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got facility
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Name != tc.want.Name || got.Region != tc.want.Region {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_CodeFenced(t *testing.T) {
	type facility struct {
		Name   string `json:"name"`
		Region string `json:"region,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  facility
	}{
		{
			name:  "json fence",
			input: "```json\n{\"name\":\"Mercy General\"}\n```",
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "bare fence",
			input: "```\n{\"name\":\"Mercy General\"}\n```",
			want:  facility{Name: "Mercy General"},
		},
		{
			name:  "fence with surrounding prose",
			input: "Here is the result:\n```json\n{\"name\":\"Mercy General\",\"region\":\"CA\"}\n```\nLet me know if you need more.",
			want:  facility{Name: "Mercy General", Region: "CA"},
		},
		{
			name:  "malformed json inside fence",
			input: "```json\n{name: 'Mercy General'}\n```",
			want:  facility{Name: "Mercy General"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got facility
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Name != tc.want.Name || got.Region != tc.want.Region {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type facility struct {
		Name   string `json:"name"`
		Region string `json:"region,omitempty"`
	}

	input := `[{name:'A'},{name:'B',}]`
	var got []facility
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two facilities A,B", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type facility struct {
		Name   string `json:"name"`
		Region string `json:"region,omitempty"`
	}

	var got facility
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestUnmarshalFlexible_StringifiedNested(t *testing.T) {
	type scenario struct {
		Action     string   `json:"action"`
		Capability string   `json:"capability"`
		Regions    []string `json:"regions"`
	}

	tests := []struct {
		name  string
		input string
		want  scenario
	}{
		{
			name:  "simple stringified",
			input: `"{ \"action\": \"add\", \"capability\": \"dialysis\", \"regions\": [ \"MT\", \"WY\" ] }"`,
			want:  scenario{Action: "add", Capability: "dialysis", Regions: []string{"MT", "WY"}},
		},
		{
			name:  "stringified with newlines",
			input: `"{\n  \"action\": \"add\",\n  \"capability\": \"dialysis\",\n  \"regions\": [\"MT\", \"WY\", \"ND (rural counties only)\"]\n  }\n"`,
			want:  scenario{Action: "add", Capability: "dialysis", Regions: []string{"MT", "WY", "ND (rural counties only)"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got scenario
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Action != tc.want.Action || got.Capability != tc.want.Capability {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
			if len(got.Regions) != len(tc.want.Regions) {
				t.Fatalf("UnmarshalFlexible() regions length got = %d, want %d", len(got.Regions), len(tc.want.Regions))
			}
			for i := range got.Regions {
				if got.Regions[i] != tc.want.Regions[i] {
					t.Fatalf("UnmarshalFlexible() regions[%d] = %q, want %q", i, got.Regions[i], tc.want.Regions[i])
				}
			}
		})
	}
}
