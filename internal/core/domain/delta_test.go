package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEntityDelta_Reverse(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	d := NewEntityDelta([]uuid.UUID{a}, []uuid.UUID{b}, []uuid.UUID{c})

	r := d.Reverse()
	assert.Equal(t, []uuid.UUID{c}, r.Added)
	assert.Equal(t, []uuid.UUID{b}, r.Modified)
	assert.Equal(t, []uuid.UUID{a}, r.Removed)
	assert.Equal(t, d, r.Reverse())
}

func TestEntityDelta_Sorted(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	d := NewEntityDelta(ids, nil, nil)

	for i := 1; i < len(d.Added); i++ {
		assert.Less(t, d.Added[i-1].String(), d.Added[i].String())
	}
	assert.NotNil(t, d.Modified)
	assert.True(t, NewEntityDelta(nil, nil, nil).IsEmpty())
	assert.False(t, d.IsEmpty())
}
