// Package web serves decoded sprite documents over HTTP: JSON
// metadata, flattened frame PNGs and animated GIFs assembled from
// frame durations and tag playback directions.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bradfitz/iter"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/nfnt/resize"
	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/compositor"
)

const maxScale = 16

type sprite struct {
	doc    *ase.Document
	layers []compositor.LayerView
}

// Handler serves a named collection of decoded documents.
type Handler struct {
	mu      sync.Mutex
	sprites map[string]*sprite
}

// NewHandler constructs a web handler with no documents; call Add for
// each document to serve.
func NewHandler() *Handler {
	return &Handler{sprites: map[string]*sprite{}}
}

// Add registers a decoded document under name, replacing any earlier
// document with the same name. Safe to call while serving.
func (h *Handler) Add(name string, doc *ase.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sprites[name] = &sprite{doc: doc, layers: compositor.Layers(doc)}
}

func (h *Handler) sprite(r *http.Request) (string, *sprite) {
	name := mux.Vars(r)["name"]
	h.mu.Lock()
	defer h.mu.Unlock()
	return name, h.sprites[name]
}

func (h *Handler) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var names []string
	for name := range h.sprites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// signature keys the ETag on document identity. The declared file
// size plus frame count is cheap and changes with any re-export.
func (s *sprite) signature() string {
	return fmt.Sprintf("%08x:%d", s.doc.Header.FileSize, len(s.doc.Frames))
}

func cacheHeaders(w http.ResponseWriter, etag string) {
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
}

func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") != etag {
		return false
	}
	cacheHeaders(w, etag)
	w.WriteHeader(http.StatusNotModified)
	return true
}

type layerInfo struct {
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	Type      string `json:"type"`
	BlendMode string `json:"blend_mode"`
	Opacity   uint8  `json:"opacity"`
	Visible   bool   `json:"visible"`
}

type tagInfo struct {
	Name      string `json:"name"`
	From      uint16 `json:"from"`
	To        uint16 `json:"to"`
	Direction string `json:"direction"`
	Repeat    uint16 `json:"repeat"`
}

type spriteInfo struct {
	Name       string      `json:"name"`
	Width      uint16      `json:"width"`
	Height     uint16      `json:"height"`
	ColorDepth uint16      `json:"color_depth"`
	Frames     int         `json:"frames"`
	DurationMS []int       `json:"duration_ms"`
	Layers     []layerInfo `json:"layers"`
	Tags       []tagInfo   `json:"tags"`
	Warnings   []string    `json:"warnings,omitempty"`
}

func (h *Handler) spriteHandler(w http.ResponseWriter, r *http.Request) {
	name, s := h.sprite(r)
	if s == nil {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}

	info := spriteInfo{
		Name:       name,
		Width:      s.doc.Header.Width,
		Height:     s.doc.Header.Height,
		ColorDepth: s.doc.Header.ColorDepth,
		Frames:     len(s.doc.Frames),
		Warnings:   s.doc.Warnings,
	}
	for i := range iter.N(len(s.doc.Frames)) {
		info.DurationMS = append(info.DurationMS, int(compositor.Duration(s.doc, i)/time.Millisecond))
	}
	for i, l := range s.layers {
		info.Layers = append(info.Layers, layerInfo{
			Name:      l.Name.String(),
			FullName:  l.FullName,
			Type:      l.Type.String(),
			BlendMode: l.BlendMode.String(),
			Opacity:   l.Opacity,
			Visible:   compositor.Visible(s.layers, i),
		})
	}
	for _, t := range compositor.Tags(s.doc) {
		info.Tags = append(info.Tags, tagInfo{
			Name:      t.Name.String(),
			From:      t.From,
			To:        t.To,
			Direction: t.Direction.String(),
			Repeat:    t.Repeat,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (h *Handler) frameHandler(w http.ResponseWriter, r *http.Request) {
	name, s := h.sprite(r)
	if s == nil {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return
	}

	scale := 1
	if sc := r.URL.Query().Get("scale"); sc != "" {
		scale, _ = strconv.Atoi(sc)
		// ignore invalid scale
		if scale < 1 {
			scale = 1
		}
		if scale > maxScale {
			scale = maxScale
		}
	}

	generation := 1 // bump if the way we generate it changes
	mime := "image/png"
	etag := fmt.Sprintf(`W/"frame:%d:%s:%s:%d:%d:%s"`, generation, name, s.signature(), idx, scale, mime)
	if notModified(w, r, etag) {
		return
	}

	img, err := compositor.FrameWithLayers(s.doc, idx, s.layers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if scale > 1 {
		img = resize.Resize(uint(img.Bounds().Dx()*scale), 0, img, resize.NearestNeighbor)
	}

	w.Header().Set("Content-Type", mime)
	cacheHeaders(w, etag)
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}

func (h *Handler) animGIFHandler(w http.ResponseWriter, r *http.Request) {
	name, s := h.sprite(r)
	if s == nil {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}

	var seq []int
	for i := range iter.N(len(s.doc.Frames)) {
		seq = append(seq, i)
	}

	etag := fmt.Sprintf(`W/"anim:1:%s:%s:image/gif"`, name, s.signature())
	h.writeGIF(w, r, s, seq, etag)
}

func (h *Handler) tagGIFHandler(w http.ResponseWriter, r *http.Request) {
	name, s := h.sprite(r)
	if s == nil {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}
	tagName := mux.Vars(r)["tag"]

	for _, t := range compositor.Tags(s.doc) {
		if t.Name.String() != tagName {
			continue
		}
		etag := fmt.Sprintf(`W/"tag:1:%s:%s:%s:image/gif"`, name, s.signature(), tagName)
		h.writeGIF(w, r, s, compositor.Sequence(t), etag)
		return
	}
	http.Error(w, "no such tag", http.StatusNotFound)
}

// writeGIF assembles the frame sequence into an animated GIF. Each
// frame is quantized to at most 255 colours; the palette's first slot
// is reserved for transparency so the background disposal keeps
// transparent regions clear between frames.
func (h *Handler) writeGIF(w http.ResponseWriter, r *http.Request, s *sprite, seq []int, etag string) {
	if notModified(w, r, etag) {
		return
	}

	g := gif.GIF{}
	q := quantize.MedianCutQuantizer{}
	for _, fi := range seq {
		img, err := compositor.FrameWithLayers(s.doc, fi, s.layers)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		pal := q.Quantize(make([]color.Color, 0, 255), img)
		framed := image.NewPaletted(img.Bounds(), append(color.Palette{color.Transparent}, pal...))
		draw.Draw(framed, img.Bounds(), img, image.Point{}, draw.Over)

		g.Image = append(g.Image, framed)
		g.Delay = append(g.Delay, int(compositor.Duration(s.doc, fi)/(10*time.Millisecond)))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0 // the reserved transparent slot

	w.Header().Set("Content-Type", "image/gif")
	cacheHeaders(w, etag)
	w.WriteHeader(http.StatusOK)
	gif.EncodeAll(w, &g)
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>sprites</title></head><body>\n")

	for _, name := range h.names() {
		h.mu.Lock()
		s := h.sprites[name]
		h.mu.Unlock()

		fmt.Fprintf(w, "<h2>%s</h2>\n", name)

		img, err := compositor.FrameWithLayers(s.doc, 0, s.layers)
		if err != nil {
			glog.Errorf("flattening %s frame 0 for the index: %v", name, err)
			continue
		}
		thumb := resize.Thumbnail(64, 64, img, resize.NearestNeighbor)
		var buf bytes.Buffer
		if err := png.Encode(&buf, thumb); err != nil {
			glog.Errorf("encoding %s thumbnail: %v", name, err)
			continue
		}
		fmt.Fprintf(w, `<a href="/sprite/%s"><img src="%s" alt="%s"></a>`,
			name, dataurl.EncodeBytes(buf.Bytes()), name)
		fmt.Fprintf(w, "\n<p>")
		for i := range iter.N(len(s.doc.Frames)) {
			fmt.Fprintf(w, `<a href="/sprite/%s/frame/%d?scale=4">frame %d</a> `, name, i, i)
		}
		fmt.Fprintf(w, `<a href="/sprite/%s/anim.gif">anim</a>`, name)
		for _, t := range compositor.Tags(s.doc) {
			fmt.Fprintf(w, ` <a href="/sprite/%s/tag/%s.gif">%s</a>`, name, t.Name.String(), t.Name.String())
		}
		fmt.Fprintf(w, "</p>\n")
	}

	fmt.Fprintf(w, "</body></html>\n")
}

// RegisterRoutes attaches the handler's routes to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler)
	r.HandleFunc("/sprite/{name}", h.spriteHandler)
	r.HandleFunc("/sprite/{name}/frame/{idx:[0-9]+}", h.frameHandler)
	r.HandleFunc("/sprite/{name}/anim.gif", h.animGIFHandler)
	r.HandleFunc("/sprite/{name}/tag/{tag}.gif", h.tagGIFHandler)
}
