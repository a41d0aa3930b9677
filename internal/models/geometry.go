package models

// GeometryController is the single row of _geometryController
type GeometryController struct {
	ID             int     `db:"_id"`
	IsEqualArea    bool    `db:"IS_EQUAL_AREA"`
	IsPercent      bool    `db:"IS_PERCENT"`
	MaxCount       int     `db:"MAX_COUNT"`
	MaxPercent     float64 `db:"MAX_PERCENT"`
	HollowCoreSize float64 `db:"HOLLOW_CORE_SIZE"`
	SectorSize     float64 `db:"SECTOR_SIZE"`
	StartingAngle  float64 `db:"STARTING_ANGLE"`
	SectorCount    int     `db:"SECTOR_COUNT"`
	RelativeSize   float64 `db:"RELATIVE_SIZE"`
}

// RadiusResponse answers GET /geometry/radius
type RadiusResponse struct {
	Radius       float64 `json:"radius"`
	Unrestricted float64 `json:"unrestricted"`
	NoCore       float64 `json:"no_core"`
	Outer        float64 `json:"outer"`
	HollowCore   float64 `json:"hollow_core"`
}

// SpokeResponse answers GET /geometry/spoke
type SpokeResponse struct {
	Angle float64 `json:"angle"`
	Valid bool    `json:"valid"`
}

// RingsResponse answers GET /geometry/rings
type RingsResponse struct {
	Values []float64 `json:"values"`
	Radii  []float64 `json:"radii"`
}
