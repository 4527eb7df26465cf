package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStricterVerdict(t *testing.T) {
	tests := []struct {
		name string
		a, b Verdict
		want Verdict
	}{
		{"approve vs request_changes", VerdictApprove, VerdictRequestChanges, VerdictRequestChanges},
		{"request_changes vs reject", VerdictRequestChanges, VerdictReject, VerdictReject},
		{"reject vs approve", VerdictReject, VerdictApprove, VerdictReject},
		{"equal", VerdictApprove, VerdictApprove, VerdictApprove},
		{"unknown b falls back to a", VerdictApprove, Verdict("bogus"), VerdictApprove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StricterVerdict(tt.a, tt.b))
		})
	}
}
