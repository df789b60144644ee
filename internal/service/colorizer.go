package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/deck"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// LabelFormat selects the text written into a boat shape.
type LabelFormat string

const (
	LabelName LabelFormat = "name" // "412 Svensson"
	LabelSize LabelFormat = "size" // "412 9.0x3.5"
	LabelFull LabelFormat = "full" // "412 Svensson\n9.0x3.5"
)

const memberShapePrefix = "Member:"

// placeholder shapes never claimed by a member keep this in their name
const placeholderName = "Rectangle"

var (
	outlineColor = deck.RGB{}
	outlineWidth = deck.Inches(0.01)
	// new shapes go to the top left corner, to be dragged into place by hand
	newShapeX = deck.Pt(1)
	newShapeY = deck.Pt(1)
)

// ShapeName is the name of the shape holding a member's boat.
func ShapeName(member int) string {
	return fmt.Sprintf("%s %d", memberShapePrefix, member)
}

// ColorizeResult counts what a colorization pass did.
type ColorizeResult struct {
	Accepted  int
	Declined  int
	Left      int
	OnLand    int
	Missing   int
	Unclaimed int
}

// Colorizer paints the yard map by member status.
type Colorizer struct {
	palette Palette
	scale   float64
	label   LabelFormat
	logger  *zap.Logger
}

// NewColorizer creates a Colorizer. scale converts boat metres to points.
func NewColorizer(palette Palette, scale float64, label LabelFormat, logger *zap.Logger) *Colorizer {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Colorizer{palette: palette, scale: scale, label: label, logger: logger}
}

// Label renders the text of a boat shape.
func (c *Colorizer) Label(b model.ReconciledBoat) string {
	size := fmt.Sprintf("%.1fx%.1f", b.Length, b.Width)
	switch c.label {
	case LabelName:
		return fmt.Sprintf("%d %s", b.Member, b.Name)
	case LabelSize:
		return fmt.Sprintf("%d %s", b.Member, size)
	default:
		return fmt.Sprintf("%d %s\n%s", b.Member, b.Name, size)
	}
}

// ResetUnhandled paints every member shape in the unknown color, so a template
// that was colored before can be colored again without stale colors.
func (c *Colorizer) ResetUnhandled(slide deck.Slide) int {
	n := 0
	for _, sh := range slide.Shapes() {
		if strings.HasPrefix(sh.Name(), memberShapePrefix) {
			sh.SetFill(c.palette[ColorUnknown])
			n++
		}
	}
	c.logger.Debug("reset member shapes", zap.Int("count", n))
	return n
}

// Apply places the boats on the map, marks ex-members and boats already on
// land, and blanks placeholders nobody claimed.
func (c *Colorizer) Apply(slide deck.Slide, boats []model.ReconciledBoat, exMembers, onLand []int) ColorizeResult {
	var res ColorizeResult
	res.Accepted, res.Declined = c.PlaceBoats(slide, boats)

	var missing int
	res.Left, missing = c.ColorMembers(slide, exMembers, c.palette[ColorMemberLeft], "has left the club", false)
	res.Missing += missing
	res.OnLand, missing = c.ColorMembers(slide, onLand, c.palette[ColorOnLand], "is already on land", false)
	res.Missing += missing

	for _, sh := range slide.Shapes() {
		if strings.Contains(sh.Name(), placeholderName) {
			c.logger.Info("spot not requested", zap.String("text", oneLine(sh.Text())))
			sh.SetFill(c.palette[ColorUnknown])
			res.Unclaimed++
		}
	}
	for _, b := range boats {
		if !b.Requested {
			c.logger.Info("member declined a spot", zap.Int("member", b.Member), zap.String("name", b.Name))
		}
	}
	return res
}

// PlaceBoats gives every boat a sized, colored and labelled shape, reusing the
// shape already on the map when there is one.
func (c *Colorizer) PlaceBoats(slide deck.Slide, boats []model.ReconciledBoat) (accepted, declined int) {
	c.logger.Info("adding boats to map", zap.Int("boats", len(boats)))
	for _, b := range boats {
		name := ShapeName(b.Member)
		width := deck.Pt(b.Length * c.scale)
		height := deck.Pt(b.Width * c.scale)

		sh, ok := c.memberShape(slide, b.Member)
		if ok {
			sh.SetSize(width, height)
		} else {
			c.logger.Debug("creating shape", zap.String("shape", name))
			sh = slide.AddRectangle(name, newShapeX, newShapeY, width, height)
		}
		sh.SetName(name)

		fill := c.palette[ColorReserved]
		if b.Requested {
			accepted++
		} else {
			fill = c.palette[ColorDeclined]
			declined++
		}
		sh.SetFill(fill)
		sh.SetOutline(outlineColor, outlineWidth)
		sh.SetLabel(c.Label(b))
	}
	c.logger.Info("spots counted", zap.Int("reserved", accepted), zap.Int("declined", declined))
	return accepted, declined
}

// memberShape finds the shape of a member by name, or else an unclaimed shape
// whose label holds the member id.
func (c *Colorizer) memberShape(slide deck.Slide, member int) (deck.Shape, bool) {
	return deck.Find(slide, ShapeName(member), memberShapePrefix, strconv.Itoa(member))
}

// ColorMembers fills the shape of each member. Members without a shape are
// logged and skipped.
func (c *Colorizer) ColorMembers(slide deck.Slide, members []int, color deck.RGB, what string, terse bool) (found, missing int) {
	for _, id := range members {
		sh, ok := c.memberShape(slide, id)
		if !ok {
			missing++
			if !terse {
				c.logger.Warn("member "+what+", but not found on map", zap.Int("member", id))
			}
			continue
		}
		sh.SetFill(color)
		sh.SetName(ShapeName(id))
		found++
		if !terse {
			c.logger.Info("member "+what, zap.Int("member", id), zap.String("text", oneLine(sh.Text())))
		}
	}
	return found, missing
}

// UpdateLegend fills the "Legend: <key>" shapes with the palette colors.
func (c *Colorizer) UpdateLegend(slide deck.Slide) {
	for _, key := range c.palette.Keys() {
		name := "Legend: " + key
		sh, ok := deck.Find(slide, name, memberShapePrefix, name)
		if !ok {
			c.logger.Warn("legend shape not found", zap.String("shape", name))
			continue
		}
		sh.SetFill(c.palette[key])
	}
}

// UpdateRevision writes revision, boat count and timestamp into the
// "Revision" shape.
func (c *Colorizer) UpdateRevision(slide deck.Slide, revision string, boats int, now time.Time) bool {
	sh, ok := deck.Find(slide, "Revision", memberShapePrefix, "Revision")
	if !ok {
		c.logger.Warn("revision shape not found")
		return false
	}
	sh.SetLabel(strings.Join([]string{
		"Revision " + revision,
		fmt.Sprintf("Båtar: %d", boats),
		now.Format("2006-01-02 15:04"),
	}, "\n"))
	return true
}

// RemoveShapes deletes the shapes whose name is listed, e.g. working notes in
// the template.
func RemoveShapes(slide deck.Slide, names []string, logger *zap.Logger) int {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	removed := 0
	for _, sh := range slide.Shapes() {
		if drop[sh.Name()] && slide.Remove(sh) {
			logger.Debug("removed shape", zap.String("shape", sh.Name()))
			removed++
		}
	}
	return removed
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", "--")
}
