package models

import "encoding/json"

// AnswerPayload is the tagged union an answer submission decodes into. Which
// fields are meaningful depends on the question type:
//
//	single_choice, true_false, multi_select -> SelectedOptionIDs
//	subjective, essay                       -> Text
//	fill_blank                              -> Blanks
//	match                                   -> Matches
type AnswerPayload struct {
	SelectedOptionIDs []uint        `json:"selected_option_ids,omitempty"`
	Text              string        `json:"text,omitempty"`
	Blanks            []BlankAnswer `json:"blanks,omitempty"`
	Matches           []MatchAnswer `json:"matches,omitempty"`
}

// BlankAnswer fills one blank of a fill_blank question.
type BlankAnswer struct {
	BlankIndex int    `json:"blank_index"`
	Text       string `json:"text"`
}

// MatchAnswer pairs an option with the target the user chose for it.
type MatchAnswer struct {
	OptionID uint   `json:"option_id"`
	Target   string `json:"target"`
}

// DecodeAnswer parses a stored answer blob.
func DecodeAnswer(raw []byte) (*AnswerPayload, error) {
	var p AnswerPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
