package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStoreRequestValid(t *testing.T) {
	tests := []struct {
		name string
		req  StoreRequest
		want bool
	}{
		{"both present", StoreRequest{Key: strPtr("a"), Value: strPtr("1")}, true},
		{"missing key", StoreRequest{Value: strPtr("1")}, false},
		{"missing value", StoreRequest{Key: strPtr("a")}, false},
		{"empty key", StoreRequest{Key: strPtr(""), Value: strPtr("1")}, false},
		{"empty value", StoreRequest{Key: strPtr("a"), Value: strPtr("")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Valid())
		})
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := New("a", "1", now)
	rec.ID = 7

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "a", fields["key_name"])
	assert.Equal(t, "1", fields["value"])
	assert.Equal(t, float64(7), fields["id"])
	assert.Equal(t, "2024-03-01T12:00:00Z", fields["created_at"])
	assert.Equal(t, "2024-03-01T12:00:00Z", fields["updated_at"])
}

func TestLessOrdersNewestFirst(t *testing.T) {
	t1 := time.Now()
	older := &Record{ID: 1, CreatedAt: t1}
	newer := &Record{ID: 2, CreatedAt: t1.Add(time.Second)}
	assert.True(t, Less(newer, older))
	assert.False(t, Less(older, newer))

	same := &Record{ID: 3, CreatedAt: t1}
	assert.True(t, Less(same, older), "equal timestamps fall back to the higher ID")
}
