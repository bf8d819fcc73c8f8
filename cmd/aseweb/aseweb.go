// Command aseweb serves Aseprite files over HTTP.
//
// Files named on the command line are decoded at startup and exposed
// under /sprite/<name>; see the web package for the routes.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/web"
)

var (
	listenAddress      = flag.String("listen_address", ":8080", "http listen address for aseweb")
	debugListenAddress = flag.String("debug_listen_address", "", "where the debug server will listen")
)

func spriteName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".aseprite")
	return strings.TrimSuffix(base, ".ase")
}

func load(h *web.Handler, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := ase.Decode(f)
	if err != nil {
		return err
	}
	for _, w := range doc.Warnings {
		glog.Warningf("%s: %s", path, w)
	}
	h.Add(spriteName(path), doc)
	return nil
}

func main() {
	flagutil.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.aseprite...\n", os.Args[0])
		os.Exit(2)
	}

	figure.NewFigure("aseweb", "", true).Print()

	h := web.NewHandler()
	for _, path := range flag.Args() {
		if err := load(h, path); err != nil {
			glog.Fatalf("loading %s: %v", path, err)
		}
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    *listenAddress,
		Handler: handlers.CombinedLoggingHandler(os.Stderr, handlers.CompressHandler(r)),
	}

	if *debugListenAddress != "" {
		// DefaultServeMux carries /debug/requests via x/net/trace.
		go http.ListenAndServe(*debugListenAddress, nil)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		glog.Infof("aseweb now listening on %s", *listenAddress)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case s := <-sig:
			glog.Infof("received %v, shutting down", s)
		case <-ctx.Done():
		}
		return srv.Shutdown(context.Background())
	})
	if err := g.Wait(); err != nil {
		glog.Fatal(err)
	}
}
