package maccms

import (
	"bytes"
	"encoding/json"
)

// flexScalar decodes a JSON value that may arrive as a string or a bare
// number, which this dialect mixes freely across aggregators.
func flexScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// ID tolerates aggregators that emit numeric or string identifiers.
type ID string

// UnmarshalJSON accepts both `123` and `"123"`.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := flexScalar(data)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// Year tolerates aggregators that emit the release year as a bare number.
// One quirky item must not poison the whole envelope.
type Year string

// UnmarshalJSON accepts both `2021` and `"2021"`.
func (y *Year) UnmarshalJSON(data []byte) error {
	s, err := flexScalar(data)
	if err != nil {
		return err
	}
	*y = Year(s)
	return nil
}

func (y Year) String() string { return string(y) }

// Category is one entry of the aggregator's class list.
type Category struct {
	TypeID   ID     `json:"type_id"`
	TypeName string `json:"type_name"`
}

// Item is a single catalog entry as returned by list and detail queries.
// PlayURL and PlayFrom carry the compound play manifest (only populated
// by detail queries on most aggregators).
type Item struct {
	ID       ID     `json:"vod_id"`
	Name     string `json:"vod_name"`
	Pic      string `json:"vod_pic"`
	Year     Year   `json:"vod_year"`
	TypeName string `json:"type_name"`
	Remarks  string `json:"vod_remarks"`
	PlayURL  string `json:"vod_play_url"`
	PlayFrom string `json:"vod_play_from"`
}

// Response is the aggregator's standard envelope.
type Response struct {
	Code  int        `json:"code"`
	Msg   string     `json:"msg"`
	Total int        `json:"total"`
	Class []Category `json:"class"`
	List  []Item     `json:"list"`
}
