package deck

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
)

// ErrNoSlide is returned for a slide index outside the deck.
var ErrNoSlide = errors.New("slide not found")

type zipEntry struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
}

// Deck is a presentation loaded fully into memory.
type Deck struct {
	entries    []*zipEntry
	slideParts []string
	slides     map[string]*pptxSlide
}

// Open reads a .pptx file.
func Open(filename string) (*Deck, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filename, apperrors.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("open deck %s: %w", filename, err)
	}
	defer zr.Close()

	d := &Deck{slides: make(map[string]*pptxSlide)}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("read %s in %s: %w", f.Name, filename, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s in %s: %w", f.Name, filename, err)
		}
		d.entries = append(d.entries, &zipEntry{
			name:     f.Name,
			method:   f.Method,
			modified: f.Modified,
			data:     data,
		})
	}

	if err := d.loadSlideOrder(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return d, nil
}

func (d *Deck) entry(name string) *zipEntry {
	for _, e := range d.entries {
		if e.name == name {
			return e
		}
	}
	return nil
}

// loadSlideOrder follows presentation.xml sldIdLst through the relationships
// to the slide parts.
func (d *Deck) loadSlideOrder() error {
	pres := d.entry(presentationPart)
	rels := d.entry(presentationRels)
	if pres == nil || rels == nil {
		return fmt.Errorf("not a presentation: missing %s", presentationPart)
	}

	relDoc := etree.NewDocument()
	if err := relDoc.ReadFromBytes(rels.data); err != nil {
		return fmt.Errorf("parse %s: %w", presentationRels, err)
	}
	targets := make(map[string]string)
	for _, rel := range relDoc.FindElements("//Relationship") {
		targets[rel.SelectAttrValue("Id", "")] = rel.SelectAttrValue("Target", "")
	}

	presDoc := etree.NewDocument()
	if err := presDoc.ReadFromBytes(pres.data); err != nil {
		return fmt.Errorf("parse %s: %w", presentationPart, err)
	}
	for _, sld := range presDoc.FindElements("//p:sldIdLst/p:sldId") {
		rid := sld.SelectAttrValue("r:id", "")
		target, ok := targets[rid]
		if !ok {
			return fmt.Errorf("slide relationship %q missing", rid)
		}
		if path.IsAbs(target) {
			target = target[1:]
		} else {
			target = path.Join("ppt", target)
		}
		d.slideParts = append(d.slideParts, target)
	}
	return nil
}

// SlideCount returns the number of slides.
func (d *Deck) SlideCount() int { return len(d.slideParts) }

// Slide returns slide i (0-based).
func (d *Deck) Slide(i int) (Slide, error) {
	if i < 0 || i >= len(d.slideParts) {
		return nil, fmt.Errorf("slide %d: %w", i, ErrNoSlide)
	}
	part := d.slideParts[i]
	if s, ok := d.slides[part]; ok {
		return s, nil
	}
	e := d.entry(part)
	if e == nil {
		return nil, fmt.Errorf("slide part %s: %w", part, ErrNoSlide)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(e.data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", part, err)
	}
	tree := doc.FindElement("//p:cSld/p:spTree")
	if tree == nil {
		return nil, fmt.Errorf("%s has no shape tree", part)
	}
	s := &pptxSlide{doc: doc, tree: tree}
	d.slides[part] = s
	return s, nil
}

// Save writes the deck to filename, replacing the file. A permission error is
// reported as ErrFileLocked, the usual cause being the file open in PowerPoint.
func (d *Deck) Save(filename string) error {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%s: %w", filename, apperrors.ErrFileLocked)
		}
		return fmt.Errorf("save deck %s: %w", filename, err)
	}
	return nil
}

// Write serializes the deck as a .pptx archive.
func (d *Deck) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range d.entries {
		data := e.data
		if s, ok := d.slides[e.name]; ok {
			b, err := s.doc.WriteToBytes()
			if err != nil {
				return fmt.Errorf("serialize %s: %w", e.name, err)
			}
			data = b
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   e.method,
			Modified: e.modified,
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

// ── slide ──

type pptxSlide struct {
	doc  *etree.Document
	tree *etree.Element
}

func (s *pptxSlide) shapes() []*pptxShape {
	var out []*pptxShape
	for _, el := range s.tree.ChildElements() {
		if el.Space == "p" && el.Tag == "sp" {
			out = append(out, &pptxShape{el: el})
		}
	}
	return out
}

func (s *pptxSlide) Shapes() []Shape {
	list := s.shapes()
	out := make([]Shape, len(list))
	for i, sh := range list {
		out[i] = sh
	}
	return out
}

func (s *pptxSlide) FindByKey(key string) (Shape, bool) {
	for _, sh := range s.shapes() {
		if sh.Name() == key {
			return sh, true
		}
	}
	return nil, false
}

func (s *pptxSlide) FindByTextFallback(tokens []string, claimed string) (Shape, bool) {
	for _, sh := range s.shapes() {
		if claimed != "" && strings.HasPrefix(sh.Name(), claimed) {
			continue
		}
		if MatchesAny(sh.Text(), tokens) {
			return sh, true
		}
	}
	return nil, false
}

func (s *pptxSlide) nextShapeID() int {
	maxID := 1
	for _, el := range s.tree.FindElements(".//p:cNvPr") {
		if id, err := strconv.Atoi(el.SelectAttrValue("id", "")); err == nil && id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

func (s *pptxSlide) AddRectangle(name string, x, y, width, height Length) Shape {
	sp := s.tree.CreateElement("p:sp")

	nv := sp.CreateElement("p:nvSpPr")
	c := nv.CreateElement("p:cNvPr")
	c.CreateAttr("id", strconv.Itoa(s.nextShapeID()))
	c.CreateAttr("name", name)
	nv.CreateElement("p:cNvSpPr")
	nv.CreateElement("p:nvPr")

	spPr := sp.CreateElement("p:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", strconv.FormatInt(int64(x), 10))
	off.CreateAttr("y", strconv.FormatInt(int64(y), 10))
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", strconv.FormatInt(int64(width), 10))
	ext.CreateAttr("cy", strconv.FormatInt(int64(height), 10))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	body := sp.CreateElement("p:txBody")
	bodyPr := body.CreateElement("a:bodyPr")
	bodyPr.CreateAttr("rtlCol", "0")
	bodyPr.CreateAttr("anchor", "ctr")
	body.CreateElement("a:lstStyle")
	body.CreateElement("a:p")

	return &pptxShape{el: sp}
}

func (s *pptxSlide) Remove(sh Shape) bool {
	ps, ok := sh.(*pptxShape)
	if !ok {
		return false
	}
	return s.tree.RemoveChild(ps.el) != nil
}
