package metadata

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderIsStable(t *testing.T) {
	Reset()
	p := GetProvider()

	first := p.GetBootID()
	_, err := uuid.Parse(first)
	require.NoError(t, err)

	assert.Equal(t, first, p.GetBootID())
	assert.Equal(t, first, p.GetMetadata()[BootIDKey])
	assert.Equal(t, p.GetLaunchTimestamp(), GetProvider().GetLaunchTimestamp())
}

func TestResetIssuesNewBootID(t *testing.T) {
	Reset()
	before := GetProvider().GetBootID()
	Reset()
	assert.NotEqual(t, before, GetProvider().GetBootID())
}

func TestProviderHostname(t *testing.T) {
	Reset()
	want, err := os.Hostname()
	if err != nil {
		t.Skip("hostname unavailable")
	}
	assert.Equal(t, want, GetProvider().GetHostname())
}

func TestLogArgsArePairs(t *testing.T) {
	Reset()
	args := GetProvider().LogArgs()
	require.Len(t, args, 4)
	assert.Equal(t, BootIDKey, args[0])
}
