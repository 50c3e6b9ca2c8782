package helper

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Tim Pemasaran Éksternal": "tim-pemasaran-eksternal",
		"  Q1 -- OKR!!  ":         "q1-okr",
		"***":                     "org",
		"":                        "org",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in, 0, "org"), in)
	}
	assert.Equal(t, "abc", Slugify("abc-def", 4, "org"))
}

type slugRow struct {
	ID    string `gorm:"primaryKey"`
	Slug  string
	Scope string
}

func TestEnsureUniqueSlugCI(t *testing.T) {
	dsn := fmt.Sprintf("file:slug_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Table("slug_rows").AutoMigrate(&slugRow{}))

	ctx := context.Background()
	got, err := EnsureUniqueSlugCI(ctx, db, "slug_rows", "slug", "acme", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "acme", got)

	for _, s := range []string{"Acme", "acme-2"} {
		require.NoError(t, db.Table("slug_rows").Create(&slugRow{ID: uuid.NewString(), Slug: s, Scope: "a"}).Error)
	}
	got, err = EnsureUniqueSlugCI(ctx, db, "slug_rows", "slug", "acme", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "acme-3", got)

	scoped := func(q *gorm.DB) *gorm.DB { return q.Where("scope = ?", "b") }
	got, err = EnsureUniqueSlugCI(ctx, db, "slug_rows", "slug", "acme", scoped, 0)
	require.NoError(t, err)
	assert.Equal(t, "acme", got)
}
