package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseKeyword(t *testing.T) {
	l := New()

	assert.False(t, l.KeywordUsed("acme", "kubernetes"))

	l.UseKeyword("acme", "kubernetes")
	assert.True(t, l.KeywordUsed("acme", "kubernetes"))
	assert.False(t, l.KeywordUsed("globex", "kubernetes"))

	l.UseKeyword("acme", "") // empty keywords are ignored
	assert.Equal(t, []string{"kubernetes"}, l.KeywordsUsed())
}

func TestUseMetricFirstClaimWins(t *testing.T) {
	l := New()

	assert.True(t, l.UseMetric("500K users", "bullets:acme"))
	assert.True(t, l.UseMetric("500K users", "bullets:acme")) // idempotent re-claim
	assert.False(t, l.UseMetric("500K users", "profile"))     // contested claim loses

	owner, ok := l.MetricOwner("500K users")
	assert.True(t, ok)
	assert.Equal(t, "bullets:acme", owner)
}

func TestMetricsUsedSorted(t *testing.T) {
	l := New()
	l.UseMetric("99.9% uptime", "profile")
	l.UseMetric("40% cost reduction", "bullets:acme")

	assert.Equal(t, []string{"40% cost reduction", "99.9% uptime"}, l.MetricsUsed())
}

func TestKeywordsUsedAcrossRecords(t *testing.T) {
	l := New()
	l.UseKeyword("acme", "terraform")
	l.UseKeyword("globex", "grpc")
	l.UseKeyword("globex", "terraform")

	assert.Equal(t, []string{"grpc", "terraform"}, l.KeywordsUsed())
}
