package maccms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_NumericScalarsDoNotPoisonEnvelope(t *testing.T) {
	// One aggregator in a pool emitting a bare-number vod_year must not
	// cost the caller the well-formed items in the same response.
	payload := `{"code":1,"list":[
		{"vod_id":1,"vod_name":"长津湖","vod_year":2021},
		{"vod_id":"2","vod_name":"庆余年 第二季","vod_year":"2024"}
	]}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.List, 2)
	assert.Equal(t, "2021", resp.List[0].Year.String())
	assert.Equal(t, "2024", resp.List[1].Year.String())
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `123`, "123"},
		{"string", `"123"`, "123"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &id))
			assert.Equal(t, tt.want, id.String())
		})
	}
}
