package voteplan

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/privote"
	"go.dedis.ch/privote/tally"
)

func TestMetrics(t *testing.T) {
	accepted := testutil.ToFloat64(promBallots.WithLabelValues(statusAccepted))
	rejected := testutil.ToFloat64(promBallots.WithLabelValues(statusRejected))
	shares := testutil.ToFloat64(promShares.WithLabelValues(statusAccepted))
	badShares := testutil.ToFloat64(promShares.WithLabelValues(statusRejected))
	decrypted := testutil.ToFloat64(promDecrypted)

	m, secrets := makeManager(t, 2, 2)

	require.NoError(t, m.Vote(makeCast(m, "alice", 0, 1, 1)))
	require.NoError(t, m.Vote(makeCast(m, "alice", 1, 0, 1)))
	require.Error(t, m.Vote(makeCast(m, "alice", 0, 2, 1)))

	require.Equal(t, accepted+2, testutil.ToFloat64(promBallots.WithLabelValues(statusAccepted)))
	require.Equal(t, rejected+1, testutil.ToFloat64(promBallots.WithLabelValues(statusRejected)))

	require.NoError(t, m.Close())

	decrypt(t, m, secrets[0])
	decrypt(t, m, secrets[1])

	et, err := m.EncryptedTally(0)
	require.NoError(t, err)
	require.Error(t, m.AddDecryptionShare(0, tally.PartialDecrypt(nil, et, secrets[0])))

	require.Equal(t, shares+4, testutil.ToFloat64(promShares.WithLabelValues(statusAccepted)))
	require.Equal(t, badShares+1, testutil.ToFloat64(promShares.WithLabelValues(statusRejected)))
	require.Equal(t, decrypted+2, testutil.ToFloat64(promDecrypted))
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()

	for _, c := range privote.PromCollectors {
		require.NoError(t, reg.Register(c))
	}
}
