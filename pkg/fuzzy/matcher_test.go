package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMatcher(t *testing.T) {
	m := NewMatcher()
	require.NotNil(t, m)
}

func TestMatcher_Score_ExactWord(t *testing.T) {
	m := NewMatcher()

	score := m.Score("spanish", "en-es English - Spanish en es")
	require.Equal(t, 1.0, score)
}

func TestMatcher_Score_PrefixMatch(t *testing.T) {
	m := NewMatcher()

	score := m.Score("span", "en-es English - Spanish en es")
	require.Equal(t, 0.5, score)
}

func TestMatcher_Score_MultiWord(t *testing.T) {
	m := NewMatcher()

	// One of two query words matches exactly
	score := m.Score("english japanese", "en-es English - Spanish en es")
	require.Equal(t, 0.5, score)
}

func TestMatcher_Score_NoMatch(t *testing.T) {
	m := NewMatcher()

	require.Equal(t, 0.0, m.Score("japanese", "en-es English - Spanish en es"))
	require.Equal(t, 0.0, m.Score("", "anything"))
	require.Equal(t, 0.0, m.Score("   ", "anything"))
}

func TestMatcher_Score_CaseInsensitive(t *testing.T) {
	m := NewMatcher()

	require.Equal(t, 1.0, m.Score("SPANISH", "english - spanish"))
	require.Equal(t, 1.0, m.Score("spanish", "English - SPANISH"))
}
