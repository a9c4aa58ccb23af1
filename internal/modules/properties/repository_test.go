package properties

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/yieldwise/internal/database"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "catalog.db"),
		Profile: database.ProfileStandard,
		Name:    database.NameCatalog,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db.Conn(), zerolog.Nop())
	repo.now = func() time.Time { return time.Unix(1700000000, 0) }
	return repo
}

func seedRegion(t *testing.T, repo *Repository, name string, avgPrice, avgRent *decimal.Decimal) *Region {
	t.Helper()

	region := &Region{Name: name, Code: name[:3], AvgPricePerSqm: avgPrice, AvgRent: avgRent}
	require.NoError(t, repo.CreateRegion(context.Background(), region))
	return region
}

func seedProperty(t *testing.T, repo *Repository, price, size string, region *Region) *Property {
	t.Helper()

	p := &Property{Address: "1 Test Street", Price: dec(price), SizeSqm: dec(size), Region: region}
	require.NoError(t, repo.CreateProperty(context.Background(), p))
	return p
}

func TestRepository_GetByID_WithRegion(t *testing.T) {
	repo := newTestRepository(t)
	region := seedRegion(t, repo, "Athens", decPtr("4500"), decPtr("1350.50"))
	created := seedProperty(t, repo, "300000", "75", region)

	p, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, p.ID)
	assert.True(t, p.Price.Equal(dec("300000")))
	assert.True(t, p.SizeSqm.Equal(dec("75")))
	assert.Equal(t, "apartment", p.PropertyType)
	assert.Equal(t, int64(1700000000), p.UpdatedAt.Unix())

	require.NotNil(t, p.Region)
	assert.Equal(t, "Athens", p.Region.Name)
	require.NotNil(t, p.Region.AvgPricePerSqm)
	assert.True(t, p.Region.AvgPricePerSqm.Equal(dec("4500")))

	rent, ok := p.RegionAverageRent()
	assert.True(t, ok)
	assert.Equal(t, "1350.5", rent.String())
}

func TestRepository_GetByID_WithoutRegion(t *testing.T) {
	repo := newTestRepository(t)
	created := seedProperty(t, repo, "150000", "50", nil)

	p, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, p.Region)

	_, ok := p.RegionAverageRent()
	assert.False(t, ok)
}

func TestRepository_GetByID_RegionWithoutAverages(t *testing.T) {
	repo := newTestRepository(t)
	region := seedRegion(t, repo, "Patras", nil, nil)
	created := seedProperty(t, repo, "150000", "50", region)

	p, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Region)
	assert.Nil(t, p.Region.AvgPricePerSqm)
	assert.Nil(t, p.Region.AvgRent)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetByIDs_PreservesOrder(t *testing.T) {
	repo := newTestRepository(t)
	a := seedProperty(t, repo, "100000", "40", nil)
	b := seedProperty(t, repo, "200000", "60", nil)
	c := seedProperty(t, repo, "300000", "80", nil)

	got, err := repo.GetByIDs(context.Background(), []int64{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestRepository_GetByIDs_MissingID(t *testing.T) {
	repo := newTestRepository(t)
	a := seedProperty(t, repo, "100000", "40", nil)

	_, err := repo.GetByIDs(context.Background(), []int64{a.ID, 999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetByIDs_Empty(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepository_UpdatePrice(t *testing.T) {
	repo := newTestRepository(t)
	created := seedProperty(t, repo, "100000", "40", nil)

	repo.now = func() time.Time { return time.Unix(1800000000, 0) }
	require.NoError(t, repo.UpdatePrice(context.Background(), created.ID, dec("95000.50")))

	p, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "95000.5", p.Price.String())
	assert.Equal(t, int64(1800000000), p.UpdatedAt.Unix())
}

func TestRepository_UpdatePrice_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.UpdatePrice(context.Background(), 404, dec("1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Count(t *testing.T) {
	repo := newTestRepository(t)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	seedProperty(t, repo, "100000", "40", nil)
	seedProperty(t, repo, "200000", "60", nil)

	n, err = repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
