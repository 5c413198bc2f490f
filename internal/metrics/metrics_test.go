package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/recipes/", "200"))
	RecordAPIRequest("GET", "/api/recipes/", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/recipes/", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordRelationAndAuth(t *testing.T) {
	fav := RelationOperations.WithLabelValues("favorite", "add")
	before := testutil.ToFloat64(fav)
	RecordRelation("favorite", "add")
	assert.Equal(t, before+1, testutil.ToFloat64(fav))

	failed := AuthEvents.WithLabelValues("login", "failure")
	before = testutil.ToFloat64(failed)
	RecordAuthEvent("login", errors.New("bad credentials"))
	assert.Equal(t, before+1, testutil.ToFloat64(failed))

	created := RecipeOperations.WithLabelValues("create")
	before = testutil.ToFloat64(created)
	RecordRecipeOperation("create")
	assert.Equal(t, before+1, testutil.ToFloat64(created))
}
