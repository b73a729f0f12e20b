package grid

import (
	"math"

	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/geo"
)

// OccupancyGrid is the wire model served by the map provider. Cell values are
// in [-1, 100], -1 meaning unknown.
type OccupancyGrid struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Resolution float64            `json:"resolution"`
	Origin     datastructure.Pose `json:"origin"`
	Data       []int8             `json:"data"`
}

const (
	defaultLowerThreshold = 50
	defaultUpperThreshold = 70
)

// CollisionGrid is the threshold-classified collision map the planner owns.
// Cells below the lower threshold are free, cells at or above the upper
// threshold are obstacles, the band in between is only an obstacle for the
// footprint sweep.
type CollisionGrid struct {
	width      int
	height     int
	resolution float64
	origin     datastructure.Pose
	data       []uint8

	lowerThreshold uint8
	upperThreshold uint8

	sizeForward  float64
	sizeBackward float64
	sizeWidth    float64
}

func NewCollisionGrid(occ *OccupancyGrid, sizeForward, sizeBackward, sizeWidth float64) *CollisionGrid {
	g := &CollisionGrid{
		width:          occ.Width,
		height:         occ.Height,
		data:           make([]uint8, occ.Width*occ.Height),
		lowerThreshold: defaultLowerThreshold,
		upperThreshold: defaultUpperThreshold,
		sizeForward:    sizeForward,
		sizeBackward:   sizeBackward,
		sizeWidth:      sizeWidth,
	}
	g.SetFromOccupancy(occ)
	return g
}

// SameDimensions reports whether the grid can be refreshed in place from the
// given occupancy map.
func (g *CollisionGrid) SameDimensions(occ *OccupancyGrid) bool {
	return g.width == occ.Width && g.height == occ.Height
}

// SetFromOccupancy refreshes cell data, origin and resolution.
// Unknown (-1) maps to 0, every other value is incremented and clipped to 100.
func (g *CollisionGrid) SetFromOccupancy(occ *OccupancyGrid) {
	g.resolution = occ.Resolution
	g.origin = occ.Origin
	for i, v := range occ.Data {
		if v < 0 {
			g.data[i] = 0
			continue
		}
		val := int(v) + 1
		if val > 100 {
			val = 100
		}
		g.data[i] = uint8(val)
	}
}

func (g *CollisionGrid) Width() int          { return g.width }
func (g *CollisionGrid) Height() int         { return g.height }
func (g *CollisionGrid) Resolution() float64 { return g.resolution }

func (g *CollisionGrid) InBounds(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < g.width && cy < g.height
}

func (g *CollisionGrid) ValueAt(cx, cy int) uint8 {
	return g.data[cy*g.width+cx]
}

// IsCellFree reports whether the cell is below the lower obstacle threshold.
func (g *CollisionGrid) IsCellFree(cx, cy int) bool {
	return g.InBounds(cx, cy) && g.ValueAt(cx, cy) < g.lowerThreshold
}

func (g *CollisionGrid) isCellBlockedHard(cx, cy int) bool {
	return !g.InBounds(cx, cy) || g.ValueAt(cx, cy) >= g.upperThreshold
}

// WorldToCell converts a world coordinate to its containing cell.
func (g *CollisionGrid) WorldToCell(x, y float64) (int, int, bool) {
	cx := int(math.Floor((x - g.origin.X) / g.resolution))
	cy := int(math.Floor((y - g.origin.Y) / g.resolution))
	return cx, cy, g.InBounds(cx, cy)
}

// CellToWorldSubPixel converts fractional cell coordinates to world
// coordinates at cell-center alignment.
func (g *CollisionGrid) CellToWorldSubPixel(cx, cy float64) (float64, float64) {
	return g.origin.X + (cx+0.5)*g.resolution, g.origin.Y + (cy+0.5)*g.resolution
}

// WorldPose converts a discretized grid pose to a world pose.
func (g *CollisionGrid) WorldPose(gp datastructure.GridPose) datastructure.Pose {
	x, y := g.CellToWorldSubPixel(float64(gp.X), float64(gp.Y))
	return datastructure.NewPose(x, y, gp.DirTheta())
}

// GridPose discretizes a world pose onto the grid.
func (g *CollisionGrid) GridPose(p datastructure.Pose) (datastructure.GridPose, bool) {
	cx, cy, ok := g.WorldToCell(p.X, p.Y)
	if !ok {
		return datastructure.GridPose{}, false
	}
	return datastructure.NewGridPose(cx, cy, datastructure.DirFromTheta(p.Theta)), true
}

// IsTraversable sweeps the vehicle footprint at the given world pose. The
// center cell must be free, footprint samples must clear the hard threshold.
func (g *CollisionGrid) IsTraversable(pose datastructure.Pose) bool {
	cx, cy, ok := g.WorldToCell(pose.X, pose.Y)
	if !ok || !g.IsCellFree(cx, cy) {
		return false
	}

	step := g.resolution
	if step <= 0 {
		return true
	}
	halfWidth := g.sizeWidth / 2
	for along := g.sizeBackward; along <= g.sizeForward+1e-9; along += step {
		for across := -halfWidth; across <= halfWidth+1e-9; across += step {
			offset := geo.RotateOffset(along, pose.Theta)
			lateral := geo.RotateOffset(across, pose.Theta+math.Pi/2)
			sx, sy, ok := g.WorldToCell(pose.X+offset.X+lateral.X, pose.Y+offset.Y+lateral.Y)
			if !ok || g.isCellBlockedHard(sx, sy) {
				return false
			}
		}
	}
	return true
}
