package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPredict(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := newPredictCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--grade", "10", "--subject", "Math", "--last-score", "40"}, `{"suggested_duration":75,"unit":"minutes"}`},
		{[]string{"--grade", "10", "--subject", "Math", "--last-score", "80"}, `{"suggested_duration":45,"unit":"minutes"}`},
		{[]string{"--grade", "0", "--subject", "", "--last-score", "50"}, `{"suggested_duration":27,"unit":"minutes"}`},
	}
	for _, tt := range tests {
		out, err := runPredict(t, tt.args...)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, out)
	}
}

func TestPredictCommand_MissingFlag(t *testing.T) {
	_, err := runPredict(t, "--grade", "10", "--subject", "Math")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last-score")
}

func TestPredictCommand_InvalidFlag(t *testing.T) {
	_, err := runPredict(t, "--grade", "ten", "--subject", "Math", "--last-score", "1")
	assert.Error(t, err)
}
