package web

import (
	"encoding/json"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/ttesting"
)

func testDoc() *ase.Document {
	name := ase.String{Length: 4, Data: []byte("body")}
	layer := &ase.LayerChunk{
		Flags:   ase.LayerFlagVisible,
		Type:    ase.LayerTypeNormal,
		Opacity: 255,
		Name:    name,
	}
	cel := func(pix []byte) *ase.CelChunk {
		return &ase.CelChunk{
			LayerIndex: 0,
			Opacity:    255,
			Type:       ase.CelTypeRaw,
			Width:      2,
			Height:     1,
			Pixels:     pix,
		}
	}
	tags := &ase.TagsChunk{Count: 1, Tags: []ase.Tag{{
		From:      0,
		To:        1,
		Direction: ase.TagDirectionPingPong,
		Name:      ase.String{Length: 4, Data: []byte("walk")},
	}}}

	return &ase.Document{
		Header: ase.Header{
			Magic:      ase.MagicHeader,
			FileSize:   512,
			Frames:     2,
			Width:      2,
			Height:     1,
			ColorDepth: 32,
			Speed:      100,
		},
		Frames: []ase.Frame{
			{Duration: 250, Chunks: []ase.Chunk{
				layer,
				cel([]byte{0xFF, 0, 0, 0xFF, 0, 0xFF, 0, 0xFF}),
				tags,
			}},
			{Chunks: []ase.Chunk{
				cel([]byte{0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0xFF}),
			}},
		},
	}
}

func testRouter() *mux.Router {
	h := NewHandler()
	h.Add("hero", testDoc())
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func get(t *testing.T, r *mux.Router, url string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSpriteMetadata(t *testing.T) {
	r := testRouter()
	w := get(t, r, "/sprite/hero", nil)
	ttesting.AssertEqualInt(t, "status", w.Code, http.StatusOK)

	var info spriteInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decoding metadata: %v", err)
	}
	ttesting.AssertEqualStr(t, "name", info.Name, "hero")
	ttesting.AssertEqualInt(t, "frames", info.Frames, 2)
	ttesting.AssertEqualInt(t, "frame 0 duration", info.DurationMS[0], 250)
	ttesting.AssertEqualInt(t, "frame 1 falls back to speed", info.DurationMS[1], 100)
	ttesting.AssertEqualInt(t, "layer count", len(info.Layers), 1)
	ttesting.AssertEqualStr(t, "layer name", info.Layers[0].Name, "body")
	ttesting.AssertEqualInt(t, "tag count", len(info.Tags), 1)
	ttesting.AssertEqualStr(t, "tag direction", info.Tags[0].Direction, "PingPong")

	ttesting.AssertEqualInt(t, "unknown sprite",
		get(t, r, "/sprite/ghost", nil).Code, http.StatusNotFound)
}

func TestFramePNGAndScale(t *testing.T) {
	r := testRouter()
	w := get(t, r, "/sprite/hero/frame/0?scale=3", nil)
	ttesting.AssertEqualInt(t, "status", w.Code, http.StatusOK)
	ttesting.AssertEqualStr(t, "content type", w.Header().Get("Content-Type"), "image/png")

	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}
	ttesting.AssertEqualInt(t, "scaled width", img.Bounds().Dx(), 6)
	ttesting.AssertEqualInt(t, "scaled height", img.Bounds().Dy(), 3)

	etag := w.Header().Get("ETag")
	ttesting.AssertTrue(t, "etag set", etag != "")
	cached := get(t, r, "/sprite/hero/frame/0?scale=3", map[string]string{"If-None-Match": etag})
	ttesting.AssertEqualInt(t, "conditional status", cached.Code, http.StatusNotModified)

	ttesting.AssertEqualInt(t, "frame out of range",
		get(t, r, "/sprite/hero/frame/9", nil).Code, http.StatusNotFound)
}

func TestAnimGIFCarriesDurations(t *testing.T) {
	r := testRouter()
	w := get(t, r, "/sprite/hero/anim.gif", nil)
	ttesting.AssertEqualInt(t, "status", w.Code, http.StatusOK)
	ttesting.AssertEqualStr(t, "content type", w.Header().Get("Content-Type"), "image/gif")

	g, err := gif.DecodeAll(w.Body)
	if err != nil {
		t.Fatalf("decoding gif: %v", err)
	}
	ttesting.AssertEqualInt(t, "frame count", len(g.Image), 2)
	// Delays are in hundredths of a second.
	ttesting.AssertEqualInt(t, "frame 0 delay", g.Delay[0], 25)
	ttesting.AssertEqualInt(t, "frame 1 delay", g.Delay[1], 10)
}

func TestTagGIFUsesSequence(t *testing.T) {
	r := testRouter()
	w := get(t, r, "/sprite/hero/tag/walk.gif", nil)
	ttesting.AssertEqualInt(t, "status", w.Code, http.StatusOK)

	g, err := gif.DecodeAll(w.Body)
	if err != nil {
		t.Fatalf("decoding gif: %v", err)
	}
	// A two-frame ping-pong has no inner return leg.
	ttesting.AssertEqualInt(t, "frame count", len(g.Image), 2)

	ttesting.AssertEqualInt(t, "unknown tag",
		get(t, r, "/sprite/hero/tag/fly.gif", nil).Code, http.StatusNotFound)
}

func TestIndexListsSprites(t *testing.T) {
	r := testRouter()
	w := get(t, r, "/", nil)
	ttesting.AssertEqualInt(t, "status", w.Code, http.StatusOK)

	body := w.Body.String()
	ttesting.AssertTrue(t, "mentions sprite", strings.Contains(body, "hero"))
	ttesting.AssertTrue(t, "embeds a thumbnail", strings.Contains(body, "data:image/png"))
	ttesting.AssertTrue(t, "links the tag gif", strings.Contains(body, "/sprite/hero/tag/walk.gif"))
}
