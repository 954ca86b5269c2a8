package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderUnmarshal_ClothesCountCoalescing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "primary field",
			body: `{"id":1,"bagNo":"B-001","numberOfClothes":12,"status":"PENDING"}`,
			want: 12,
		},
		{
			name: "alias only",
			body: `{"id":2,"bagNo":"B-002","noOfClothes":7,"status":"PENDING"}`,
			want: 7,
		},
		{
			name: "primary wins over alias",
			body: `{"id":3,"bagNo":"B-003","numberOfClothes":5,"noOfClothes":9,"status":"PENDING"}`,
			want: 5,
		},
		{
			name: "both absent defaults to zero",
			body: `{"id":4,"bagNo":"B-004","status":"PENDING"}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Order
			require.NoError(t, json.Unmarshal([]byte(tt.body), &o))
			assert.Equal(t, tt.want, o.NumberOfClothes)
		})
	}
}

func TestOrderUnmarshal_StatusUppercased(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"status":"inprogress"}`), &o))
	assert.Equal(t, OrderStatusInProgress, o.Status)
}

func TestOrderUnmarshal_OptionalFields(t *testing.T) {
	body := `{"id":10,"bagNo":"B-010","studentName":"Amy Li","numberOfClothes":3,` +
		`"status":"COMPLETE","notes":"torn shirt","submissionDate":"2024-03-01",` +
		`"createdAt":"2024-03-01T10:00:00Z","updatedAt":"2024-03-02T10:00:00Z"}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))

	assert.Equal(t, int64(10), o.ID)
	assert.Equal(t, "Amy Li", o.StudentName)
	assert.Equal(t, "torn shirt", o.Notes)
	assert.Equal(t, OrderStatusComplete, o.Status)
}
