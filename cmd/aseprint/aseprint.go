// Command aseprint renders Aseprite files on the terminal.
//
// By default it prints one flattened frame using 24-bit colour
// escapes; see the flags for other renderers, animation tags and
// layer or tag listings.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/bradfitz/iter"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/compositor"
)

var (
	frameIdx   = flag.Int("frame", 0, "frame to print")
	all        = flag.Bool("all", false, "print every frame in order")
	tagName    = flag.String("tag", "", "print the frames of this tag in playback order")
	listLayers = flag.Bool("layers", false, "list the layer tree instead of printing frames")
	listTags   = flag.Bool("tags", false, "list animation tags instead of printing frames")
	warnings   = flag.Bool("warnings", false, "print decode warnings after the output")
)

func printLayers(doc *ase.Document) {
	layers := compositor.Layers(doc)
	for i, l := range layers {
		visibility := "shown"
		if !compositor.Visible(layers, i) {
			visibility = "hidden"
		}
		fmt.Printf("%3d %s%s (%s, %s, opacity %d, %s)\n",
			i, strings.Repeat("  ", int(l.ChildLevel)), l.Name.String(),
			l.Type, l.BlendMode, l.Opacity, visibility)
	}
}

func printTags(doc *ase.Document) {
	for _, t := range compositor.Tags(doc) {
		fmt.Printf("%s: frames %d..%d, %s, repeat %d\n",
			t.Name.String(), t.From, t.To, t.Direction, t.Repeat)
	}
}

func printFrame(doc *ase.Document, layers []compositor.LayerView, idx int) {
	img, err := compositor.FrameWithLayers(doc, idx, layers)
	if err != nil {
		glog.Errorf("flattening frame %d: %v", idx, err)
		return
	}
	out(img)
}

func printDoc(doc *ase.Document) {
	if *listLayers {
		printLayers(doc)
		return
	}
	if *listTags {
		printTags(doc)
		return
	}

	layers := compositor.Layers(doc)
	switch {
	case *tagName != "":
		for _, t := range compositor.Tags(doc) {
			if t.Name.String() != *tagName {
				continue
			}
			for _, fi := range compositor.Sequence(t) {
				printFrame(doc, layers, fi)
			}
			return
		}
		glog.Errorf("no tag named %q", *tagName)
	case *all:
		for fi := range iter.N(len(doc.Frames)) {
			printFrame(doc, layers, fi)
		}
	default:
		printFrame(doc, layers, *frameIdx)
	}
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.aseprite...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			glog.Errorf("opening %s: %v", path, err)
			continue
		}
		doc, err := ase.Decode(f)
		f.Close()
		if err != nil {
			glog.Errorf("decoding %s: %v", path, err)
			continue
		}

		printDoc(doc)

		if *warnings {
			for _, w := range doc.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
		}
	}
}
