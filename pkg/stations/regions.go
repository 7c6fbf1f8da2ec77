package stations

import (
	_ "embed"

	"github.com/rs/zerolog/log"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYaml []byte

type regionDefinition struct {
	Code          ctdf.RegionCode `yaml:"code"`
	Name          string          `yaml:"name"`
	WeatherHazard bool            `yaml:"weatherHazard"`
}

type regionsFile struct {
	Regions []regionDefinition `yaml:"regions"`
}

var regionNames map[ctdf.RegionCode]regionDefinition

func init() {
	var parsed regionsFile
	if err := yaml.Unmarshal(regionsYaml, &parsed); err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded region definitions")
	}

	regionNames = map[ctdf.RegionCode]regionDefinition{}
	for _, region := range parsed.Regions {
		regionNames[region.Code] = region
	}
}

// RegionName resolves a region code against the fixed upstream enumeration.
func RegionName(code ctdf.RegionCode) (string, bool) {
	region, ok := regionNames[code]

	return region.Name, ok
}
