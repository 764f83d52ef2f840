package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2023Q3")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2023, Season: 3}, p)
	assert.Equal(t, "2023Q3", p.String())

	// lowercase and whitespace are tolerated
	p, err = ParsePeriod(" 2024q1 ")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2024, Season: 1}, p)

	for _, bad := range []string{"2023", "2023Q5", "2023Q0", "Q3", "abcQ1"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestPeriodOrdering(t *testing.T) {
	q4 := Period{Year: 2023, Season: 4}
	q1 := Period{Year: 2024, Season: 1}

	assert.True(t, q4.Before(q1))
	assert.False(t, q1.Before(q4))
	assert.Equal(t, q1, q4.Next())
	assert.Equal(t, 1, q4.QuartersTo(q1))
	assert.Equal(t, -4, q1.QuartersTo(Period{Year: 2023, Season: 1}))
}
