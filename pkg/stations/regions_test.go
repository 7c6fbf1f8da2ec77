package stations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trenovivo/trenovivo/pkg/ctdf"
)

func TestRegionNameCoversWholeEnumeration(t *testing.T) {
	for code := ctdf.RegionCodeNationwide; code <= ctdf.RegionCodeMax; code++ {
		name, ok := RegionName(code)
		assert.True(t, ok, "region %d", code)
		assert.NotEmpty(t, name, "region %d", code)
	}

	_, ok := RegionName(ctdf.RegionCode(23))
	assert.False(t, ok)
}

func TestRegionNameKnownEntries(t *testing.T) {
	name, ok := RegionName(ctdf.RegionCode(9))
	assert.True(t, ok)
	assert.Equal(t, "Trentino-Alto Adige", name)

	name, ok = RegionName(ctdf.RegionCodeNationwide)
	assert.True(t, ok)
	assert.Equal(t, "Italia", name)
}
