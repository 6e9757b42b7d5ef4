package storage

import (
	"testing"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
)

func TestAggregateCount(t *testing.T) {
	// The full trim needs a Firestore backend; the count unwrapping does not.
	tests := []struct {
		name     string
		value    interface{}
		want     int
		wantFail bool
	}{
		{
			name:  "int64 direct",
			value: int64(42),
			want:  42,
		},
		{
			name: "firestorepb.Value integer",
			value: &firestorepb.Value{
				ValueType: &firestorepb.Value_IntegerValue{IntegerValue: 100},
			},
			want: 100,
		},
		{
			name:     "unexpected type",
			value:    "not a number",
			wantFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aggregateCount(tt.value)
			if (err != nil) != tt.wantFail {
				t.Fatalf("aggregateCount() error = %v, wantFail %v", err, tt.wantFail)
			}
			if !tt.wantFail && got != tt.want {
				t.Errorf("aggregateCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
