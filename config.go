package spatial

import (
	"math"

	"github.com/TheBitDrifter/table"
)

const (
	// DefaultSectorSize suits galaxy-scale deployments.
	DefaultSectorSize = 1e18

	// DefaultPrecisionTolerance is the largest acceptable spacing between
	// neighbouring ordinary precision positions before an advisory is raised.
	DefaultPrecisionTolerance = 1e-3

	// RecommendedWorldTransformDistance is the distance from the origin past
	// which callers should prefer WorldTransform over Transform. It is not
	// enforced.
	RecommendedWorldTransformDistance = 1e5
)

// Config holds global configuration for storage tables and coordinate handling
var Config config = config{
	sectorSize:         DefaultSectorSize,
	precisionTolerance: DefaultPrecisionTolerance,
}

type config struct {
	tableEvents        table.TableEvents
	sectorSize         float64
	precisionTolerance float64
	advisories         bool
}

// SetTableEvents configures the table event callbacks for columns created afterwards
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetSectorSize sets the size used by Factory.NewSectorMapper
func (c *config) SetSectorSize(size float64) error {
	if err := validatePositive("sector size", size); err != nil {
		return err
	}
	c.sectorSize = size
	return nil
}

func (c config) SectorSize() float64 {
	return c.sectorSize
}

// SetPrecisionTolerance sets the resolution past which advisories are raised
func (c *config) SetPrecisionTolerance(tolerance float64) error {
	if err := validatePositive("precision tolerance", tolerance); err != nil {
		return err
	}
	c.precisionTolerance = tolerance
	return nil
}

func (c config) PrecisionTolerance() float64 {
	return c.precisionTolerance
}

// EnablePrecisionAdvisories toggles the advisory scan at the end of each pass
func (c *config) EnablePrecisionAdvisories(enabled bool) {
	c.advisories = enabled
}

func (c config) PrecisionAdvisories() bool {
	return c.advisories
}

func validatePositive(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return ConfigurationError{Field: field, Value: v, Reason: "must be finite"}
	case v <= 0:
		return ConfigurationError{Field: field, Value: v, Reason: "must be strictly positive"}
	}
	return nil
}
