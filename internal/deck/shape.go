package deck

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// fill elements of spPr, any of which a new solid fill replaces
var fillTags = map[string]bool{
	"noFill": true, "solidFill": true, "gradFill": true,
	"blipFill": true, "pattFill": true, "grpFill": true,
}

// spPr children that precede the fill in schema order
var beforeFill = map[string]bool{"xfrm": true, "custGeom": true, "prstGeom": true}

var autofitTags = map[string]bool{"noAutofit": true, "normAutofit": true, "spAutoFit": true}

const (
	labelFontSize = 800 // hundredths of a point
	labelMargin   = 36000
)

type pptxShape struct {
	el *etree.Element
}

func (s *pptxShape) cNvPr() *etree.Element {
	return s.el.FindElement("./p:nvSpPr/p:cNvPr")
}

func (s *pptxShape) Name() string {
	if c := s.cNvPr(); c != nil {
		return c.SelectAttrValue("name", "")
	}
	return ""
}

func (s *pptxShape) SetName(name string) {
	if c := s.cNvPr(); c != nil {
		c.CreateAttr("name", name)
	}
}

func (s *pptxShape) Text() string {
	body := s.el.SelectElement("p:txBody")
	if body == nil {
		return ""
	}
	var paras []string
	for _, p := range body.SelectElements("a:p") {
		var b strings.Builder
		for _, run := range p.ChildElements() {
			switch run.Tag {
			case "r", "fld":
				if t := run.SelectElement("a:t"); t != nil {
					b.WriteString(t.Text())
				}
			case "br":
				b.WriteString("\n")
			}
		}
		paras = append(paras, b.String())
	}
	return strings.Join(paras, "\n")
}

func (s *pptxShape) spPr() *etree.Element {
	spPr := s.el.SelectElement("p:spPr")
	if spPr == nil {
		spPr = etree.NewElement("p:spPr")
		idx := 0
		if nv := s.el.SelectElement("p:nvSpPr"); nv != nil {
			idx = nv.Index() + 1
		}
		s.el.InsertChildAt(idx, spPr)
	}
	return spPr
}

func (s *pptxShape) Fill() (RGB, bool) {
	clr := s.el.FindElement("./p:spPr/a:solidFill/a:srgbClr")
	if clr == nil {
		return RGB{}, false
	}
	c, err := ParseHex(clr.SelectAttrValue("val", ""))
	if err != nil {
		return RGB{}, false
	}
	return c, true
}

func (s *pptxShape) SetFill(c RGB) {
	spPr := s.spPr()
	insertAt := 0
	for _, child := range spPr.ChildElements() {
		if fillTags[child.Tag] {
			spPr.RemoveChild(child)
		}
	}
	for _, child := range spPr.ChildElements() {
		if beforeFill[child.Tag] {
			insertAt = child.Index() + 1
		}
	}
	spPr.InsertChildAt(insertAt, solidFill(c))
}

func solidFill(c RGB) *etree.Element {
	fill := etree.NewElement("a:solidFill")
	clr := fill.CreateElement("a:srgbClr")
	clr.CreateAttr("val", c.Hex())
	return fill
}

func (s *pptxShape) SetOutline(c RGB, width Length) {
	spPr := s.spPr()
	if old := spPr.SelectElement("a:ln"); old != nil {
		spPr.RemoveChild(old)
	}
	ln := etree.NewElement("a:ln")
	ln.CreateAttr("w", strconv.FormatInt(int64(width), 10))
	ln.AddChild(solidFill(c))

	// a:ln follows geometry and fill
	insertAt := 0
	for _, child := range spPr.ChildElements() {
		if beforeFill[child.Tag] || fillTags[child.Tag] {
			insertAt = child.Index() + 1
		}
	}
	spPr.InsertChildAt(insertAt, ln)
}

func (s *pptxShape) SetSize(width, height Length) {
	spPr := s.spPr()
	xfrm := spPr.SelectElement("a:xfrm")
	if xfrm == nil {
		xfrm = etree.NewElement("a:xfrm")
		off := xfrm.CreateElement("a:off")
		off.CreateAttr("x", "0")
		off.CreateAttr("y", "0")
		spPr.InsertChildAt(0, xfrm)
	}
	ext := xfrm.SelectElement("a:ext")
	if ext == nil {
		ext = xfrm.CreateElement("a:ext")
	}
	ext.CreateAttr("cx", strconv.FormatInt(int64(width), 10))
	ext.CreateAttr("cy", strconv.FormatInt(int64(height), 10))
}

// Size returns the extent of the shape, zero when it has none.
func (s *pptxShape) Size() (Length, Length) {
	ext := s.el.FindElement("./p:spPr/a:xfrm/a:ext")
	if ext == nil {
		return 0, 0
	}
	cx, _ := strconv.ParseInt(ext.SelectAttrValue("cx", "0"), 10, 64)
	cy, _ := strconv.ParseInt(ext.SelectAttrValue("cy", "0"), 10, 64)
	return Length(cx), Length(cy)
}

func (s *pptxShape) SetLabel(text string) {
	body := s.el.SelectElement("p:txBody")
	if body == nil {
		body = s.el.CreateElement("p:txBody")
	}
	bodyPr := body.SelectElement("a:bodyPr")
	if bodyPr == nil {
		bodyPr = etree.NewElement("a:bodyPr")
		body.InsertChildAt(0, bodyPr)
	}
	margin := strconv.Itoa(labelMargin)
	for _, attr := range []string{"lIns", "tIns", "rIns", "bIns"} {
		bodyPr.CreateAttr(attr, margin)
	}
	bodyPr.CreateAttr("anchor", "ctr")
	for _, child := range bodyPr.ChildElements() {
		if autofitTags[child.Tag] {
			bodyPr.RemoveChild(child)
		}
	}
	bodyPr.CreateElement("a:normAutofit")

	if body.SelectElement("a:lstStyle") == nil {
		body.InsertChildAt(bodyPr.Index()+1, etree.NewElement("a:lstStyle"))
	}
	for _, p := range body.SelectElements("a:p") {
		body.RemoveChild(p)
	}

	for _, line := range strings.Split(text, "\n") {
		p := body.CreateElement("a:p")
		p.CreateElement("a:pPr").CreateAttr("algn", "ctr")
		r := p.CreateElement("a:r")
		rPr := r.CreateElement("a:rPr")
		rPr.CreateAttr("lang", "sv-SE")
		rPr.CreateAttr("sz", strconv.Itoa(labelFontSize))
		rPr.CreateAttr("b", "0")
		rPr.AddChild(solidFill(RGB{}))
		r.CreateElement("a:t").SetText(line)
	}
}
