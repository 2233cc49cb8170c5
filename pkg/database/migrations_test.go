package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations := getMigrations()
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Description)
		assert.NotNil(t, m.Up)
		assert.NotNil(t, m.Down)
	}
}

func TestRateCardUniqueIndexIsPartial(t *testing.T) {
	idx := RateCardUniqueIndex()

	assert.Equal(t, bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	assert.Equal(t, bson.M{"is_deleted": false}, idx.Options.PartialFilterExpression)
	assert.Equal(t, "uniq_name_per_company", *idx.Options.Name)
}
