package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gustavo2020/GestUnifServ/models"
)

func TestDriverCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conductores.csv")

	t.Run("missing file starts empty", func(t *testing.T) {
		drivers, err := NewDriverCatalog(path)
		require.NoError(t, err)
		assert.Empty(t, drivers.All())
	})

	t.Run("upsert persists to CSV", func(t *testing.T) {
		drivers, err := NewDriverCatalog(path)
		require.NoError(t, err)

		require.NoError(t, drivers.Upsert(models.Driver{
			NationalID: "80223344",
			FirstName:  "Carlos",
			LastName:   "Ramírez",
			Phone:      "+573118765432",
		}))
		require.NoError(t, drivers.Upsert(models.Driver{
			NationalID: "10203040",
			FirstName:  "Ana",
			LastName:   "Pérez",
		}))

		// A fresh catalog over the same file sees both drivers.
		reloaded, err := NewDriverCatalog(path)
		require.NoError(t, err)
		all := reloaded.All()
		require.Len(t, all, 2)
		assert.Equal(t, "10203040", all[0].NationalID, "sorted by national id")

		driver, ok := reloaded.Get("80223344")
		require.True(t, ok)
		assert.Equal(t, "Carlos", driver.FirstName)
		assert.Equal(t, "+573118765432", driver.Phone)
	})

	t.Run("upsert overwrites existing entry", func(t *testing.T) {
		drivers, err := NewDriverCatalog(path)
		require.NoError(t, err)

		require.NoError(t, drivers.Upsert(models.Driver{NationalID: "80223344", FirstName: "Juan"}))
		driver, ok := drivers.Get("80223344")
		require.True(t, ok)
		assert.Equal(t, "Juan", driver.FirstName)
		assert.Len(t, drivers.All(), 2)
	})

	t.Run("upsert without national id fails", func(t *testing.T) {
		drivers, err := NewDriverCatalog(path)
		require.NoError(t, err)
		assert.Error(t, drivers.Upsert(models.Driver{FirstName: "Anon"}))
	})
}

func TestParseDriversCsvSkipsBlankIDs(t *testing.T) {
	csv := "national_id,first_name,last_name,phone\n123,Ana,Pérez,+5730\n,Nadie,,\n"
	drivers, err := ParseDriversCsv(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "123", drivers[0].NationalID)
}
