package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"Warning", LevelWarning, false},
		{"WARN", LevelWarning, false},
		{"ERROR", LevelError, false},
		{"CRITICAL", LevelCritical, false},
		{"fatal", LevelCritical, false},
		{"", LevelNotSet, false},
		{" NOTSET ", LevelNotSet, false},
		{"verbose", LevelNotSet, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevel_Ordering(t *testing.T) {
	ordered := []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1], ordered[i])
		// logrus counts the other way round
		assert.Greater(t, ordered[i-1].logrusLevel(), ordered[i].logrusLevel())
		assert.Equal(t, ordered[i], levelFromLogrus(ordered[i].logrusLevel()))
	}
	assert.Equal(t, logrus.TraceLevel, LevelNotSet.effectiveLogrusLevel())
}

func TestLevel_Text(t *testing.T) {
	text, err := LevelWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "WARNING", string(text))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("error")))
	assert.Equal(t, LevelError, l)
	assert.Error(t, l.UnmarshalText([]byte("loud")))

	assert.Equal(t, "Level(15)", Level(15).String())
}
