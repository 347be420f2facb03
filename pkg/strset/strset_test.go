// Copyright (c) 2026 Meridia Health. All rights reserved.

package strset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridia-health/meridia/pkg/strset"
)

/*
TestDedupe verifies duplicates are dropped while first-seen order is kept.
*/
func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil_input", nil, nil},
		{"empty", []string{}, []string{}},
		{"no_duplicates", []string{"mood", "energy"}, []string{"mood", "energy"}},
		{"duplicates_keep_first", []string{"mood", "symptoms", "mood", "remedies", "symptoms"}, []string{"mood", "symptoms", "remedies"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strset.Dedupe(tt.input))
		})
	}
}

/*
TestContains verifies membership checks.
*/
func TestContains(t *testing.T) {
	assert.True(t, strset.Contains([]string{"mood", "energy"}, "energy"))
	assert.False(t, strset.Contains([]string{"mood", "energy"}, "sleep"))
	assert.False(t, strset.Contains(nil, "mood"))
}

/*
TestRemove verifies removal preserves the remaining order.
*/
func TestRemove(t *testing.T) {
	assert.Equal(t, []string{"mood", "remedies"}, strset.Remove([]string{"mood", "symptoms", "remedies"}, "symptoms"))
	assert.Nil(t, strset.Remove(nil, "mood"))
}
