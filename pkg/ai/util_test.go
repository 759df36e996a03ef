package ai

import (
	"testing"
)

type answerPayload struct {
	Answer    string `json:"answer"`
	Citations []int  `json:"citations,omitempty"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  answerPayload
	}{
		{
			name:  "valid json object",
			input: `{"answer":"唐三是史莱克学院的学生"}`,
			want:  answerPayload{Answer: "唐三是史莱克学院的学生"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{answer: '唐三是史莱克学院的学生'}`,
			want:  answerPayload{Answer: "唐三是史莱克学院的学生"},
		},
		{
			name:  "trailing comma",
			input: `{"answer":"好","citations":[1,2],}`,
			want:  answerPayload{Answer: "好", Citations: []int{1, 2}},
		},
		{
			name:  "missing end bracket",
			input: `{"answer":"好`,
			want:  answerPayload{Answer: "好"},
		},
		{
			name:  "double-encoded object",
			input: `"{\"answer\": \"好\", \"citations\": [3]}"`,
			want:  answerPayload{Answer: "好", Citations: []int{3}},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"answer\": \"好\"\n}\n",
			want:  answerPayload{Answer: "好"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got answerPayload
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Answer != tc.want.Answer {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
			if len(got.Citations) != len(tc.want.Citations) {
				t.Fatalf("citations = %v, want %v", got.Citations, tc.want.Citations)
			}
			for i := range got.Citations {
				if got.Citations[i] != tc.want.Citations[i] {
					t.Fatalf("citations[%d] = %d, want %d", i, got.Citations[i], tc.want.Citations[i])
				}
			}
		})
	}
}

func TestUnmarshalFlexibleUnrecoverable(t *testing.T) {
	var got answerPayload
	if err := UnmarshalFlexible("完全不是JSON", &got); err == nil {
		t.Fatal("UnmarshalFlexible() expected error for unrecoverable input")
	}
}
