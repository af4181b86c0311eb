package voteplan

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/privote"
)

var (
	promBallots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "privote_voteplan_ballots_total",
		Help: "number of ballots received by status",
	}, []string{"status"})

	promVerify = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "privote_voteplan_ballot_verification_seconds",
		Help:    "time to verify the proof of a ballot",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	promShares = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "privote_voteplan_shares_total",
		Help: "number of decryption shares received by status",
	}, []string{"status"})

	promDecrypted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "privote_voteplan_decrypted_total",
		Help: "number of proposals decrypted",
	})

	promDecryption = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "privote_voteplan_decryption_seconds",
		Help:    "time to combine the shares and decrypt a proposal",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
)

const (
	statusAccepted = "accepted"
	statusRejected = "rejected"
)

func init() {
	privote.PromCollectors = append(privote.PromCollectors, promBallots,
		promVerify, promShares, promDecrypted, promDecryption)
}
