package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := uuid.New()
	before := time.Now().UTC()

	e := New(TypeSignedUp, id, "a@b.com")

	assert.Equal(t, TypeSignedUp, e.Type)
	assert.Equal(t, id, e.UserID)
	assert.Equal(t, "a@b.com", e.Email)
	assert.WithinDuration(t, before, e.OccurredAt, time.Second)
}

func TestEvent_JSONHasNoPassword(t *testing.T) {
	body, err := json.Marshal(New(TypeDeleted, uuid.New(), ""))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))

	assert.ElementsMatch(t, []string{"type", "user_id", "occurred_at"}, keys(got))
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), New(TypeUpdated, uuid.New(), "a@b.com")))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
