package quiz

import "math"

// CalculateLeadScore rates a submission from 0 to 100.
//
// Choice questions contribute weight*option.score out of weight*10; every
// other question contributes weight out of weight when answered. A quiz
// with nothing to score yields 0.
func CalculateLeadScore(cfg Config, raw []RawResponse) int {
	return score(Bind(cfg.Questions, raw))
}

func score(responses []Response) int {
	var earned, possible int

	for _, r := range responses {
		weight := r.Question.Base().Weight

		if options, ok := ChoiceOptions(r.Question); ok {
			possible += weight * MaxOptionScore
			if opt, found := selectedOption(options, r); found {
				earned += weight * opt.Score
			}
			continue
		}

		possible += weight
		if Answered(r.Answer) {
			earned += weight
		}
	}

	if possible <= 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}

// selectedOption resolves the chosen option by id when the form sent one,
// otherwise by comparing the answer text with each option value.
func selectedOption(options []Option, r Response) (Option, bool) {
	if r.SelectedOptionID != nil {
		for _, opt := range options {
			if opt.ID == *r.SelectedOptionID {
				return opt, true
			}
		}
		return Option{}, false
	}

	if _, isNull := r.Answer.(NullAnswer); isNull || r.Answer == nil {
		return Option{}, false
	}
	value := r.Answer.String()
	for _, opt := range options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Result is what a submission yields for lead creation.
type Result struct {
	Contact ContactInfo `json:"contact"`
	Score   int         `json:"score"`
}

// Process binds the responses once and runs both extraction and scoring.
func Process(cfg Config, raw []RawResponse) Result {
	responses := Bind(cfg.Questions, raw)
	return Result{
		Contact: extractContact(responses),
		Score:   score(responses),
	}
}
