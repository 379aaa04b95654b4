package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The payload structs below are the expected shapes for the JSON prompts in
// this package. Each knows how to validate itself after decoding; the
// completion gateway runs Validate and treats a failure like a parse error.

type AnswerPayload struct {
	Answer        string `json:"answer"`
	Justification string `json:"justification"`
}

func (p *AnswerPayload) Validate() error {
	if strings.TrimSpace(p.Answer) == "" {
		return fmt.Errorf("missing answer field")
	}
	if strings.TrimSpace(p.Justification) == "" {
		return fmt.Errorf("missing justification field")
	}
	return nil
}

type QuizQuestion struct {
	Id         int    `json:"id"`
	Text       string `json:"text"`
	AnswerHint string `json:"answer_hint"`
}

type QuizPayload struct {
	Questions []QuizQuestion `json:"questions"`
}

// Validate checks structure only. Question count and distinctness are
// content rules owned by the challenge engine, not parse failures.
func (p *QuizPayload) Validate() error {
	if len(p.Questions) == 0 {
		return fmt.Errorf("missing questions field")
	}
	for i, q := range p.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has empty text", i+1)
		}
	}
	return nil
}

// FlexBool tolerates models replying "true"/"false" as JSON strings.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*b = FlexBool(val)
		return nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes":
			*b = true
			return nil
		case "false", "no":
			*b = false
			return nil
		}
	}
	return fmt.Errorf("cannot interpret %s as boolean", string(data))
}

type EvaluationPayload struct {
	IsCorrect     FlexBool `json:"is_correct"`
	Feedback      string   `json:"feedback"`
	Justification string   `json:"justification"`
}

func (p *EvaluationPayload) Validate() error {
	if strings.TrimSpace(p.Feedback) == "" {
		return fmt.Errorf("missing feedback field")
	}
	return nil
}
